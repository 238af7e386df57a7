package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

type RateLimitService struct {
	appContext.DefaultService

	generalTiers []limitTier
	loginTiers   []limitTier

	counters CounterStore
	sqlSvc   SqlService
	monSvc   *MonitoringService
}

// limitTier is one fixed window: a counter key suffix, the window length and
// the request ceiling inside that window.
type limitTier struct {
	Name    string
	Window  time.Duration
	Ceiling int64
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	generalKeyPrefix = "rate_limit"
	loginKeyPrefix   = "login_limit"
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	// Smallest window first so the cheapest check rejects earliest.
	svc.generalTiers = []limitTier{
		{Name: shared.TierMinute, Window: time.Minute, Ceiling: ceilingFromEnv("RATE_LIMIT_PER_MINUTE", 60)},
		{Name: shared.TierHour, Window: time.Hour, Ceiling: ceilingFromEnv("RATE_LIMIT_PER_HOUR", 1000)},
		{Name: shared.TierDay, Window: 24 * time.Hour, Ceiling: ceilingFromEnv("RATE_LIMIT_PER_DAY", 10000)},
	}
	svc.loginTiers = []limitTier{
		{Name: shared.TierMinute, Window: time.Minute, Ceiling: ceilingFromEnv("LOGIN_LIMIT_PER_MINUTE", 5)},
		{Name: shared.TierHour, Window: time.Hour, Ceiling: ceilingFromEnv("LOGIN_LIMIT_PER_HOUR", 20)},
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.counters = svc.Service(REDIS_SVC).(*RedisService)

	if sqlSvc, ok := svc.Service(POSTGRES_SVC).(SqlService); ok {
		svc.sqlSvc = sqlSvc
	} else {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(SqlService)
	}

	if monSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monSvc = monSvc
	}

	return nil
}

func ceilingFromEnv(name string, fallback int64) int64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		log.WithField("var", name).WithField("value", raw).Warn("invalid rate limit ceiling, using default")
		return fallback
	}
	return n
}

// ==================== CORE RATE LIMITING LOGIC ====================

// CheckRateLimit walks every applicable tier for the identity, counting the
// request against each. The first tier over its ceiling denies the request.
// Auth endpoints are additionally held to the stricter login tiers.
// Counter store errors never deny: an unreachable redis degrades the service
// to unlimited rather than unavailable.
func (svc *RateLimitService) CheckRateLimit(ctx context.Context, identity, path string) (bool, string) {
	if IsLoginPath(path) {
		if ok, tier := svc.checkTiers(ctx, loginKeyPrefix, identity, svc.loginTiers); !ok {
			return false, tier
		}
	}

	return svc.checkTiers(ctx, generalKeyPrefix, identity, svc.generalTiers)
}

func (svc *RateLimitService) checkTiers(ctx context.Context, prefix, identity string, tiers []limitTier) (bool, string) {
	for _, tier := range tiers {
		key := fmt.Sprintf("%s:%s:%s", prefix, identity, tier.Name)

		count, err := svc.counters.IncrementWithTTL(ctx, key, tier.Window)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("rate limit counter unavailable, allowing request")
			return true, ""
		}

		if count > tier.Ceiling {
			svc.recordViolation(identity, tier.Name, prefix)
			return false, tier.Name
		}
	}

	return true, ""
}

// IsLoginPath reports whether the path gets the stricter login tiers on top
// of the general ones.
func IsLoginPath(path string) bool {
	for _, p := range []string{"/login", "/signup", "/check-id"} {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func (svc *RateLimitService) recordViolation(identity, tier, prefix string) {
	reason := "general"
	if prefix == loginKeyPrefix {
		reason = "login"
	}

	if svc.monSvc != nil {
		svc.monSvc.RecordRateLimitRejection(tier)
	}

	// Fire and forget: a violation row is an audit nicety, never worth
	// delaying or failing the rejection itself.
	go func() {
		event := &model.RateLimitEvent{
			IPAddr:    identity,
			Tier:      tier,
			Reason:    reason,
			CreatedAt: time.Now(),
		}
		if err := svc.sqlSvc.History().AppendRateLimitEvent(event); err != nil {
			log.WithError(err).Warn("failed to record rate limit violation")
		}
	}()
}

// ==================== ADMIN FUNCTIONS ====================

// ClearLimits drops every counter for one identity across both tier sets.
func (svc *RateLimitService) ClearLimits(ctx context.Context, identity string) error {
	keys := make([]string, 0, len(svc.generalTiers)+len(svc.loginTiers))
	for _, tier := range svc.generalTiers {
		keys = append(keys, fmt.Sprintf("%s:%s:%s", generalKeyPrefix, identity, tier.Name))
	}
	for _, tier := range svc.loginTiers {
		keys = append(keys, fmt.Sprintf("%s:%s:%s", loginKeyPrefix, identity, tier.Name))
	}

	return svc.counters.DeleteKeys(ctx, keys...)
}

// ClearAllLimits drops every rate limit counter in the store.
func (svc *RateLimitService) ClearAllLimits(ctx context.Context) error {
	if err := svc.counters.DeleteByPattern(ctx, generalKeyPrefix+":*"); err != nil {
		return err
	}
	return svc.counters.DeleteByPattern(ctx, loginKeyPrefix+":*")
}

// GetStats reads the live counters for an identity without incrementing them.
func (svc *RateLimitService) GetStats(ctx context.Context, identity string) (*dto.RateLimitStats, error) {
	stats := &dto.RateLimitStats{Identity: identity}

	for _, tier := range svc.generalTiers {
		key := fmt.Sprintf("%s:%s:%s", generalKeyPrefix, identity, tier.Name)
		count, err := svc.counters.GetCount(ctx, key)
		if err != nil {
			return nil, err
		}
		stats.General = append(stats.General, dto.TierStats{Tier: tier.Name, Count: count, Ceiling: tier.Ceiling})
	}

	for _, tier := range svc.loginTiers {
		key := fmt.Sprintf("%s:%s:%s", loginKeyPrefix, identity, tier.Name)
		count, err := svc.counters.GetCount(ctx, key)
		if err != nil {
			return nil, err
		}
		stats.Login = append(stats.Login, dto.TierStats{Tier: tier.Name, Count: count, Ceiling: tier.Ceiling})
	}

	return stats, nil
}
