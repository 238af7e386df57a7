package services

import (
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

// SessionService owns the persisted session rows. A user holds at most one
// active session: establishing a new one retires whatever was active before.
// Unlike the rate limiter this service never fails open; if the store is
// down, logins fail.
type SessionService struct {
	appContext.DefaultService

	sqlSvc SqlService
	jwtSvc *JWTService
}

const SESSION_SVC = "session_svc"

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SessionService) Start() error {
	if sqlSvc, ok := svc.Service(POSTGRES_SVC).(SqlService); ok {
		svc.sqlSvc = sqlSvc
	} else {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(SqlService)
	}
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

// Establish retires any active session for the user and records the new one.
func (svc *SessionService) Establish(userID, accessToken, refreshToken, ip, userAgent string) (*model.UserSession, error) {
	if err := svc.sqlSvc.Sessions().DeleteActive(userID); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	now := time.Now()
	session := &model.UserSession{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IPAddr:       ip,
		UserAgent:    userAgent,
		IssuedAt:     now,
		ExpiresAt:    now.Add(svc.jwtSvc.RefreshTokenDuration),
	}

	if _, err := svc.sqlSvc.Sessions().Create(session); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return session, nil
}

// Refresh rotates the session named by a refresh token: both tokens are
// reissued and the old session row is replaced, so a refresh token works
// exactly once.
func (svc *SessionService) Refresh(refreshToken, ip, userAgent string) (*model.UserSession, *model.User, error) {
	if !svc.jwtSvc.ValidateToken(refreshToken) {
		return nil, nil, shared.NewRefreshTokenError("invalid or expired refresh token")
	}

	session, err := svc.sqlSvc.Sessions().GetByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, shared.NewRefreshTokenError("invalid or expired refresh token")
		}
		return nil, nil, svc.sqlSvc.HandleError(err)
	}

	user, err := svc.sqlSvc.Users().GetByID(session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, shared.NewRefreshTokenError("invalid or expired refresh token")
		}
		return nil, nil, svc.sqlSvc.HandleError(err)
	}
	if !user.Enabled {
		return nil, nil, shared.NewRefreshTokenError("invalid or expired refresh token")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.LoginID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, nil, shared.NewInternalError(err, "internal server error")
	}

	rotated, err := svc.Establish(user.ID, pair.AccessToken, pair.RefreshToken, ip, userAgent)
	if err != nil {
		return nil, nil, err
	}

	return rotated, user, nil
}

// Logout marks the user's active sessions as ended, stamping when and how
// long they lasted. The rows stay behind for audit. Calling it with nothing
// active is not an error.
func (svc *SessionService) Logout(userID string) error {
	if err := svc.sqlSvc.Sessions().MarkLoggedOut(userID, time.Now()); err != nil {
		return svc.sqlSvc.HandleError(err)
	}
	return nil
}

// ActiveSession returns the user's current session, or nil when none exists.
func (svc *SessionService) ActiveSession(userID string) (*model.UserSession, error) {
	session, err := svc.sqlSvc.Sessions().GetActiveByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, svc.sqlSvc.HandleError(err)
	}
	return session, nil
}

// CleanupExpired purges session rows past their expiry.
func (svc *SessionService) CleanupExpired() (int64, error) {
	removed, err := svc.sqlSvc.Sessions().DeleteExpired(time.Now())
	if err != nil {
		return 0, svc.sqlSvc.HandleError(err)
	}

	if removed > 0 {
		log.WithField("removed", removed).Info("expired sessions purged")
	}

	return removed, nil
}
