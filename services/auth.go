package services

import (
	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/shared"
)

// AuthService ties the credential check, attempt guard, token issuing and
// session bookkeeping into the login, refresh and logout flows.
type AuthService struct {
	appContext.DefaultService

	userSvc    *UserService
	jwtSvc     *JWTService
	sessionSvc *SessionService
	guardSvc   *LoginGuardService
	emailSvc   *EmailService
	geoSvc     *GeolocationService
	monSvc     *MonitoringService
}

const AUTH_SVC = "auth_svc"

const invalidCredentialsMsg = "invalid login ID or password"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.sessionSvc = svc.Service(SESSION_SVC).(*SessionService)
	svc.guardSvc = svc.Service(LOGIN_GUARD_SVC).(*LoginGuardService)
	if emailSvc, ok := svc.Service(EMAIL_SVC).(*EmailService); ok {
		svc.emailSvc = emailSvc
	}
	if geoSvc, ok := svc.Service(GEOLOCATION_SVC).(*GeolocationService); ok {
		svc.geoSvc = geoSvc
	}
	if monSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monSvc = monSvc
	}
	return nil
}

func (svc *AuthService) countAttempt(outcome string) {
	if svc.monSvc != nil {
		svc.monSvc.RecordLoginAttempt(outcome)
	}
}

// Login runs the full gate sequence: IP lockout, user lookup, account state,
// password check, then token issue and session establishment. Every rejection
// before the password stage uses the same message as a wrong password so the
// response never reveals whether the account exists.
func (svc *AuthService) Login(req *dto.LoginRequest, ip, userAgent string) (*dto.LoginResponse, error) {
	if svc.guardSvc.IsIPBlocked(ip) {
		svc.countAttempt("blocked")
		return nil, shared.NewInvalidCredentialsError(invalidCredentialsMsg)
	}

	user, err := svc.userSvc.FindByLoginID(req.LoginID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		svc.guardSvc.RecordFailure(ip, req.LoginID, "unknown login ID", userAgent)
		svc.countAttempt("invalid")
		return nil, shared.NewInvalidCredentialsError(invalidCredentialsMsg)
	}

	if !user.Enabled {
		svc.guardSvc.RecordFailure(ip, req.LoginID, "account disabled", userAgent)
		svc.countAttempt("disabled")
		return nil, shared.NewAccountDisabledError("account is disabled")
	}

	if !svc.userSvc.VerifyPassword(user, req.Password) {
		svc.guardSvc.RecordFailure(ip, req.LoginID, "wrong password", userAgent)
		svc.countAttempt("invalid")
		return nil, shared.NewInvalidCredentialsError(invalidCredentialsMsg)
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.LoginID, user.Name, user.Email, user.Role)
	if err != nil {
		return nil, shared.NewInternalError(err, "failed to issue tokens")
	}

	// A session row is part of the login contract; if it cannot be written
	// the login fails rather than running sessionless.
	if _, err := svc.sessionSvc.Establish(user.ID, pair.AccessToken, pair.RefreshToken, ip, userAgent); err != nil {
		return nil, err
	}

	svc.guardSvc.RecordSuccess(ip, user.ID, user.LoginID, userAgent)
	svc.userSvc.RecordLogin(user.ID, ip)
	svc.countAttempt("success")
	if svc.monSvc != nil {
		svc.monSvc.RecordTokenIssued("access")
		svc.monSvc.RecordTokenIssued("refresh")
	}

	// Alert on logins from an address this account has not used before.
	if svc.emailSvc != nil && user.LastLoginIP != "" && user.LastLoginIP != ip {
		location := ""
		if svc.geoSvc != nil {
			location = svc.geoSvc.LocationByIP(ip)
		}
		svc.emailSvc.SendLoginAlert(user.Email, user.LoginID, ip, location)
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"login_id": user.LoginID,
		"ip":       ip,
	}).Info("login succeeded")

	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User: dto.UserInfo{
			ID:          user.ID,
			LoginID:     user.LoginID,
			Name:        user.Name,
			Email:       user.Email,
			Role:        user.Role,
			LastLoginAt: user.LastLoginAt,
		},
	}, nil
}

// RefreshTokens exchanges a live refresh token for a fresh pair.
func (svc *AuthService) RefreshTokens(refreshToken, ip, userAgent string) (*dto.TokenPair, error) {
	session, _, err := svc.sessionSvc.Refresh(refreshToken, ip, userAgent)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    svc.jwtSvc.AccessTokenSeconds(),
	}, nil
}

// Logout ends the user's active sessions. Repeating it is harmless.
func (svc *AuthService) Logout(userID string) error {
	return svc.sessionSvc.Logout(userID)
}

// ValidateAndIdentify checks a bearer token and returns the claims carried
// inside it. Used by the auth middleware.
func (svc *AuthService) ValidateAndIdentify(token string) (*TokenClaims, bool) {
	return svc.jwtSvc.ExtractClaims(token)
}

// Profile resolves the authenticated user's public view.
func (svc *AuthService) Profile(userID string) (*dto.UserInfo, error) {
	user, err := svc.userSvc.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewNotFoundError(nil, "user not found")
	}

	return &dto.UserInfo{
		ID:          user.ID,
		LoginID:     user.LoginID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
	}, nil
}
