package model

import "time"

// UserSession binds an issued token pair to one account. At most one
// non-expired, non-logged-out row exists per user; logout keeps the row
// for audit instead of deleting it.
type UserSession struct {
	ID           string `json:"id" gorm:"primaryKey;type:text;not null"`
	UserID       string `json:"user_id" gorm:"index;not null"`
	AccessToken  string `json:"-" gorm:"not null;size:1024"`
	RefreshToken string `json:"-" gorm:"uniqueIndex;not null;size:1024"`
	IPAddr       string `json:"ip_addr" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"size:512"`

	IssuedAt    time.Time  `json:"issued_at" gorm:"not null"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"index;not null"`
	LoggedOutAt *time.Time `json:"logged_out_at,omitempty"`
	DurationSec int64      `json:"duration_sec" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

// Active reports whether the session still grants access at the given instant.
func (s *UserSession) Active(now time.Time) bool {
	return s.LoggedOutAt == nil && now.Before(s.ExpiresAt)
}
