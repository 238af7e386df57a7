package model

import "time"

// MessageCode maps a stable code to its user-facing text.
type MessageCode struct {
	ID      string `json:"id" gorm:"primaryKey;type:text;not null"`
	Code    string `json:"code" gorm:"uniqueIndex;not null;size:20"`
	Content string `json:"content" gorm:"not null;size:500"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}
