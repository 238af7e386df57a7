package services

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/authguard/dto"
)

type JWTService struct {
	context.DefaultService

	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	signingKey           []byte
}

type TokenClaims struct {
	UserID  string `json:"user_id"`
	LoginID string `json:"login_id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

const JWT_SVC = "jwt_svc"

func (svc JWTService) Id() string {
	return JWT_SVC
}

func (svc *JWTService) Configure(ctx *context.Context) error {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	svc.signingKey = normalizeSigningKey(secret)

	svc.AccessTokenDuration = durationFromEnv("JWT_ACCESS_TTL", 30*time.Minute)
	svc.RefreshTokenDuration = durationFromEnv("JWT_REFRESH_TTL", 168*time.Hour)

	return svc.DefaultService.Configure(ctx)
}

func (svc *JWTService) Start() error {
	return nil
}

// normalizeSigningKey derives the HMAC key deterministically from the
// configured secret so the same secret always yields the same key:
// base64 secrets are decoded, raw secrets are taken as UTF-8 bytes,
// short keys are zero-padded to 32 bytes and oversized keys (>64 bytes)
// are replaced by their SHA-256 digest.
func normalizeSigningKey(secret string) []byte {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key = []byte(secret)
	}

	if len(key) < 32 {
		padded := make([]byte, 32)
		copy(padded, key)
		key = padded
	}

	if len(key) > 64 {
		sum := sha256.Sum256(key)
		key = sum[:]
	}

	return key
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.WithField("var", name).WithField("value", raw).Warn("invalid duration, using default")
		return fallback
	}
	return d
}

// ==================== ISSUING ====================

func (svc *JWTService) GenerateTokenPair(userID, loginID, name, email, role string) (*dto.TokenPair, error) {
	accessToken, err := svc.GenerateAccessToken(userID, loginID, name, email, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := svc.GenerateRefreshToken(userID, loginID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(svc.AccessTokenDuration.Seconds()),
	}, nil
}

func (svc *JWTService) GenerateAccessToken(userID, loginID, name, email, role string) (string, error) {
	return svc.signToken(&TokenClaims{
		UserID:  userID,
		LoginID: loginID,
		Name:    name,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   loginID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(svc.AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "authguard",
		},
	})
}

func (svc *JWTService) GenerateRefreshToken(userID, loginID string) (string, error) {
	return svc.signToken(&TokenClaims{
		UserID:  userID,
		LoginID: loginID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   loginID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(svc.RefreshTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "authguard",
		},
	})
}

func (svc *JWTService) signToken(claims *TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(svc.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return tokenString, nil
}

// ==================== VALIDATION ====================

// ValidateToken reports whether the token is well formed, carries a valid
// signature and has not expired. It never returns an error: any failure,
// including a garbage token, simply means false. A token whose expiry equals
// the current instant is already expired.
func (svc *JWTService) ValidateToken(tokenString string) bool {
	_, ok := svc.ExtractClaims(tokenString)
	return ok
}

// ExtractClaims parses and verifies the token, returning its claims. The
// boolean mirrors ValidateToken: false means the token must not be trusted.
// Tokens without an exp claim are rejected outright.
func (svc *JWTService) ExtractClaims(tokenString string) (*TokenClaims, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, svc.getSigningKey, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims == nil {
		return nil, false
	}

	return claims, true
}

func (svc *JWTService) ExtractUserID(tokenString string) (string, bool) {
	claims, ok := svc.ExtractClaims(tokenString)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

func (svc *JWTService) ExtractLoginID(tokenString string) (string, bool) {
	claims, ok := svc.ExtractClaims(tokenString)
	if !ok {
		return "", false
	}
	return claims.LoginID, true
}

// ExtractIdentity pulls the caller identity out of a verified token. Used by
// the auth middleware.
func (svc *JWTService) ExtractIdentity(tokenString string) (userID, loginID, role string, ok bool) {
	claims, ok := svc.ExtractClaims(tokenString)
	if !ok {
		return "", "", "", false
	}
	return claims.UserID, claims.LoginID, claims.Role, true
}

func (svc *JWTService) getSigningKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return svc.signingKey, nil
}

func (svc *JWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}

func (svc *JWTService) AccessTokenSeconds() int64 {
	return int64(svc.AccessTokenDuration.Seconds())
}
