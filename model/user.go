package model

import "time"

type User struct {
	ID        string `json:"id" gorm:"primaryKey;type:text;not null"`
	LoginID   string `json:"login_id" gorm:"uniqueIndex;not null;size:50"`
	Password  string `json:"-" gorm:"not null"`
	Name      string `json:"name" gorm:"size:100"`
	Email     string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role      string `json:"role" gorm:"default:user;size:20"`
	Enabled   bool   `json:"enabled" gorm:"default:true;not null"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `json:"last_login_ip,omitempty" gorm:"size:45"`
	LoginCount  int        `json:"login_count" gorm:"default:0;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}
