package services

import (
	"errors"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lac-hong-legacy/authguard/model"
)

// LoginGuardService tracks failed logins per source IP and blocks an IP once
// it crosses the failure threshold. State lives in the database so blocks
// survive restarts, unlike the redis rate limit counters.
type LoginGuardService struct {
	appContext.DefaultService

	maxAttempts     int
	lockoutDuration time.Duration
	trackingWindow  time.Duration

	sqlSvc SqlService
	geoSvc *GeolocationService
}

const LOGIN_GUARD_SVC = "login_guard_svc"

func (svc LoginGuardService) Id() string {
	return LOGIN_GUARD_SVC
}

func (svc *LoginGuardService) Configure(ctx *appContext.Context) error {
	svc.maxAttempts = intFromEnv("LOGIN_MAX_ATTEMPTS", 5)
	svc.lockoutDuration = durationFromEnv("LOGIN_LOCKOUT_DURATION", 30*time.Minute)
	svc.trackingWindow = durationFromEnv("LOGIN_TRACKING_WINDOW", 24*time.Hour)

	return svc.DefaultService.Configure(ctx)
}

func (svc *LoginGuardService) Start() error {
	if sqlSvc, ok := svc.Service(POSTGRES_SVC).(SqlService); ok {
		svc.sqlSvc = sqlSvc
	} else {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(SqlService)
	}
	if geoSvc, ok := svc.Service(GEOLOCATION_SVC).(*GeolocationService); ok {
		svc.geoSvc = geoSvc
	}
	return nil
}

func intFromEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.WithField("var", name).WithField("value", raw).Warn("invalid value, using default")
		return fallback
	}
	return n
}

// IsIPBlocked reports whether the IP is currently locked out. A store error
// allows the attempt: the credential check still stands between an attacker
// and the account.
func (svc *LoginGuardService) IsIPBlocked(ip string) bool {
	block, err := svc.sqlSvc.History().GetIPBlock(ip)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).WithField("ip", ip).Warn("failed to read ip block, allowing attempt")
		}
		return false
	}

	return block.BlockedAt(time.Now())
}

// RecordFailure writes the failed attempt to the login history and re-counts
// recent failures for the IP; crossing the threshold arms the lockout.
func (svc *LoginGuardService) RecordFailure(ip, loginID, reason, userAgent string) {
	now := time.Now()

	entry := &model.LoginHistory{
		LoginID:    loginID,
		IPAddr:     ip,
		Success:    false,
		FailReason: reason,
		UserAgent:  userAgent,
		Location:   svc.locate(ip),
		CreatedAt:  now,
	}

	failures, err := svc.sqlSvc.History().CountRecentFailures(ip, now.Add(-svc.trackingWindow))
	if err != nil {
		log.WithError(err).WithField("ip", ip).Warn("failed to count login failures")
		failures = 0
	}
	failures++ // include this one

	entry.AttemptCount = int(failures)

	block := &model.IPBlock{
		IPAddr:       ip,
		AttemptCount: int(failures),
		LastReason:   reason,
	}

	if failures >= int64(svc.maxAttempts) {
		until := now.Add(svc.lockoutDuration)
		block.BlockedUntil = &until
		entry.Blocked = true
		entry.BlockedUntil = &until

		log.WithFields(log.Fields{
			"ip":       ip,
			"failures": failures,
			"until":    until,
		}).Warn("ip blocked after repeated login failures")
	}

	if err := svc.sqlSvc.History().AppendLoginHistory(entry); err != nil {
		log.WithError(err).Warn("failed to append login history")
	}
	if err := svc.sqlSvc.History().SaveIPBlock(block); err != nil {
		log.WithError(err).WithField("ip", ip).Warn("failed to save ip block")
	}
}

// RecordSuccess logs the successful login and resets the failure state so a
// legitimate user who fumbled their password a few times starts clean.
func (svc *LoginGuardService) RecordSuccess(ip, userID, loginID, userAgent string) {
	entry := &model.LoginHistory{
		UserID:    &userID,
		LoginID:   loginID,
		IPAddr:    ip,
		Success:   true,
		UserAgent: userAgent,
		Location:  svc.locate(ip),
		CreatedAt: time.Now(),
	}

	if err := svc.sqlSvc.History().AppendLoginHistory(entry); err != nil {
		log.WithError(err).Warn("failed to append login history")
	}
	if err := svc.sqlSvc.History().ClearIPBlock(ip); err != nil {
		log.WithError(err).WithField("ip", ip).Warn("failed to clear ip block")
	}
}

func (svc *LoginGuardService) locate(ip string) string {
	if svc.geoSvc == nil {
		return ""
	}
	return svc.geoSvc.LocationByIP(ip)
}

// ClearBlock lifts a lockout immediately.
func (svc *LoginGuardService) ClearBlock(ip string) error {
	return svc.sqlSvc.History().ClearIPBlock(ip)
}
