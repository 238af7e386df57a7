package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lac-hong-legacy/authguard/model"
)

// MessageService resolves stable reason codes to their display text. Rows
// live in the database and are cached in redis so the hot path rarely hits
// SQL.
type MessageService struct {
	appContext.DefaultService

	cacheTTL time.Duration

	redisSvc *RedisService
	sqlSvc   SqlService
}

const MESSAGE_SVC = "message_svc"

const messageCachePrefix = "msg_code:"

func (svc MessageService) Id() string {
	return MESSAGE_SVC
}

func (svc *MessageService) Configure(ctx *appContext.Context) error {
	svc.cacheTTL = durationFromEnv("MESSAGE_CACHE_TTL", time.Hour)
	return svc.DefaultService.Configure(ctx)
}

func (svc *MessageService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)

	if sqlSvc, ok := svc.Service(POSTGRES_SVC).(SqlService); ok {
		svc.sqlSvc = sqlSvc
	} else {
		svc.sqlSvc = svc.Service(SQLITE_SVC).(SqlService)
	}

	return nil
}

// Resolve returns the display text for a reason code, falling back to the
// code itself when no row exists. Cache misses and cache errors both read
// through to the database.
func (svc *MessageService) Resolve(ctx context.Context, code string) string {
	cached, err := svc.redisSvc.Get(ctx, messageCachePrefix+code)
	if err == nil && cached != "" {
		return cached
	}

	var row model.MessageCode
	if err := svc.sqlSvc.Db().Where("code = ?", code).First(&row).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithError(err).WithField("code", code).Warn("failed to load message code")
		}
		return code
	}

	if err := svc.redisSvc.Set(ctx, messageCachePrefix+code, row.Content, svc.cacheTTL); err != nil {
		log.WithError(err).Warn("failed to cache message code")
	}

	return row.Content
}

// Upsert creates or updates a message code and invalidates its cache entry.
func (svc *MessageService) Upsert(ctx context.Context, code, content string) error {
	var row model.MessageCode
	err := svc.sqlSvc.Db().Where("code = ?", code).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return svc.sqlSvc.HandleError(err)
		}
		id, _ := uuid.NewV7()
		row = model.MessageCode{ID: id.String(), Code: code, Content: content}
		if createErr := svc.sqlSvc.Db().Create(&row).Error; createErr != nil {
			return svc.sqlSvc.HandleError(createErr)
		}
	} else {
		row.Content = content
		if saveErr := svc.sqlSvc.Db().Save(&row).Error; saveErr != nil {
			return svc.sqlSvc.HandleError(saveErr)
		}
	}

	return svc.redisSvc.Delete(ctx, messageCachePrefix+code)
}
