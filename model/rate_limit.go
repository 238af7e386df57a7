package model

import "time"

// RateLimitEvent records one rejected request. The live counters stay in
// redis; only violations are persisted, for audit.
type RateLimitEvent struct {
	ID     string `json:"id" gorm:"primaryKey;type:text;not null"`
	IPAddr string `json:"ip_addr" gorm:"index;not null;size:45"`
	Tier   string `json:"tier" gorm:"not null;size:20"`
	Reason string `json:"reason" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at" gorm:"index;not null"`
}
