package model

import "time"

// LoginHistory is append-only: one row per login attempt, success or failure.
type LoginHistory struct {
	ID      string  `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID  *string `json:"user_id,omitempty" gorm:"index"`
	LoginID string  `json:"login_id" gorm:"size:50"`
	IPAddr  string  `json:"ip_addr" gorm:"index;not null;size:45"`

	Success      bool       `json:"success" gorm:"not null"`
	FailReason   string     `json:"fail_reason,omitempty" gorm:"size:255"`
	UserAgent    string     `json:"user_agent,omitempty" gorm:"size:512"`
	Location     string     `json:"location,omitempty" gorm:"size:255"`
	AttemptCount int        `json:"attempt_count" gorm:"default:0"`
	Blocked      bool       `json:"blocked" gorm:"default:false"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index;not null"`
}

// IPBlock is the live, queryable block status per client IP. It survives
// restarts, unlike the redis request counters.
type IPBlock struct {
	ID           string     `json:"id" gorm:"primaryKey;type:text;not null"`
	IPAddr       string     `json:"ip_addr" gorm:"uniqueIndex;not null;size:45"`
	AttemptCount int        `json:"attempt_count" gorm:"default:0;not null"`
	LastReason   string     `json:"last_reason,omitempty" gorm:"size:255"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// BlockedAt reports whether the block is in force at the given instant.
func (b *IPBlock) BlockedAt(now time.Time) bool {
	return b.BlockedUntil != nil && now.Before(*b.BlockedUntil)
}
