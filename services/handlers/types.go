package handlers

import (
	"context"
	"time"

	"github.com/lac-hong-legacy/authguard/dto"
)

type AuthServiceInterface interface {
	Login(req *dto.LoginRequest, clientIP, userAgent string) (*dto.LoginResponse, error)
	RefreshTokens(refreshToken, clientIP, userAgent string) (*dto.TokenPair, error)
	Logout(userID string) error
	Profile(userID string) (*dto.UserInfo, error)
}

type UserServiceInterface interface {
	Signup(req *dto.SignupRequest) (*dto.SignupResponse, error)
	CheckLoginID(loginID string) (*dto.CheckIDResponse, error)
}

type RateLimitAdminInterface interface {
	ClearLimits(ctx context.Context, identity string) error
	ClearAllLimits(ctx context.Context) error
	GetStats(ctx context.Context, identity string) (*dto.RateLimitStats, error)
}

type LoginGuardInterface interface {
	ClearBlock(ip string) error
}

type MessageAdminInterface interface {
	Upsert(ctx context.Context, code, content string) error
}

type ArchiveAdminInterface interface {
	Enabled() bool
	ListArchives(prefix string) ([]dto.ArchiveObject, error)
	ArchiveURL(objectName string, expiry time.Duration) (string, error)
}
