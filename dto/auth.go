package dto

import "time"

// ==================== AUTHENTICATION REQUEST DTOs ====================

type SignupRequest struct {
	LoginID  string `json:"login_id" validate:"required,min=4,max=20,alphanum" example:"johndoe"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
	Name     string `json:"name" validate:"required,min=2,max=50" example:"John Doe"`
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
}

func (r SignupRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	LoginID  string `json:"login_id" validate:"required" example:"johndoe"`
	Password string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func (r RefreshTokenRequest) Validate() error {
	return GetValidator().Struct(r)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type SignupResponse struct {
	UserID  string `json:"user_id" example:"usr_0190c1a2"`
	LoginID string `json:"login_id" example:"johndoe"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string   `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string   `json:"token_type" example:"Bearer"`
	ExpiresIn    int64    `json:"expires_in" example:"1800"`
	User         UserInfo `json:"user"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int64  `json:"expires_in" example:"1800"`
}

type UserInfo struct {
	ID          string     `json:"id" example:"usr_0190c1a2"`
	LoginID     string     `json:"login_id" example:"johndoe"`
	Name        string     `json:"name" example:"John Doe"`
	Email       string     `json:"email" example:"user@example.com"`
	Role        string     `json:"role" example:"user"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" example:"2023-01-15T10:30:00Z"`
}

type CheckIDResponse struct {
	LoginID   string `json:"login_id" example:"johndoe"`
	Available bool   `json:"available" example:"true"`
}
