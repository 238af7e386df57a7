package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

func newTestStore(t *testing.T) *SqliteService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(storeModels()...))

	svc := &SqliteService{db: db, database: ":memory:"}
	svc.initRepositories(db)
	return svc
}

func newTestRedis(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	svc := &RedisService{
		redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	return svc, mr
}

func newTestJWT() *JWTService {
	return &JWTService{
		signingKey:           normalizeSigningKey("test-secret"),
		AccessTokenDuration:  30 * time.Minute,
		RefreshTokenDuration: 168 * time.Hour,
	}
}

func newTestGuard(store *SqliteService) *LoginGuardService {
	return &LoginGuardService{
		maxAttempts:     5,
		lockoutDuration: 30 * time.Minute,
		trackingWindow:  24 * time.Hour,
		sqlSvc:          store,
	}
}

func createTestUser(t *testing.T, store *SqliteService, loginID, password string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		LoginID:  loginID,
		Password: string(hash),
		Name:     "Test User",
		Email:    loginID + "@example.com",
		Role:     shared.RoleUser,
		Enabled:  true,
	}
	_, err = store.Users().Create(user)
	require.NoError(t, err)
	return user
}
