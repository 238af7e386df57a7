package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

func newTestSessions(t *testing.T) (*SessionService, *SqliteService) {
	t.Helper()
	store := newTestStore(t)
	return &SessionService{sqlSvc: store, jwtSvc: newTestJWT()}, store
}

func TestEstablishKeepsSingleActiveSession(t *testing.T) {
	svc, store := newTestSessions(t)

	first, err := svc.Establish("u-1", "at-1", "rt-1", "10.0.0.1", "agent")
	require.NoError(t, err)

	second, err := svc.Establish("u-1", "at-2", "rt-2", "10.0.0.1", "agent")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := store.Sessions().CountActiveByUser("u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "a second login must displace the first session")

	active, err := svc.ActiveSession("u-1")
	require.NoError(t, err)
	assert.Equal(t, "rt-2", active.RefreshToken)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, store := newTestSessions(t)
	user := createTestUser(t, store, "alice", "password1!A")

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.LoginID, user.Name, user.Email, user.Role)
	require.NoError(t, err)

	_, err = svc.Establish(user.ID, pair.AccessToken, pair.RefreshToken, "10.0.0.1", "agent")
	require.NoError(t, err)

	rotated, refreshedUser, err := svc.Refresh(pair.RefreshToken, "10.0.0.2", "agent")
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshedUser.ID)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)
}

func TestRefreshTokenSingleUse(t *testing.T) {
	svc, store := newTestSessions(t)
	user := createTestUser(t, store, "alice", "password1!A")

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.LoginID, user.Name, user.Email, user.Role)
	require.NoError(t, err)

	_, err = svc.Establish(user.ID, pair.AccessToken, pair.RefreshToken, "10.0.0.1", "agent")
	require.NoError(t, err)

	_, _, err = svc.Refresh(pair.RefreshToken, "10.0.0.1", "agent")
	require.NoError(t, err)

	// The rotated-out token no longer names an active session.
	_, _, err = svc.Refresh(pair.RefreshToken, "10.0.0.1", "agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeRefreshTokenInvalid, appErr.Code)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	svc, _ := newTestSessions(t)

	// Well signed but never stored.
	stray, err := svc.jwtSvc.GenerateRefreshToken("u-ghost", "ghost")
	require.NoError(t, err)

	_, _, err = svc.Refresh(stray, "10.0.0.1", "agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeRefreshTokenInvalid, appErr.Code)
}

func TestRefreshRejectsMalformedToken(t *testing.T) {
	svc, _ := newTestSessions(t)

	_, _, err := svc.Refresh("not-a-token", "10.0.0.1", "agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeRefreshTokenInvalid, appErr.Code)
}

func TestRefreshRejectsDisabledUser(t *testing.T) {
	svc, store := newTestSessions(t)
	user := createTestUser(t, store, "alice", "password1!A")

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID, user.LoginID, user.Name, user.Email, user.Role)
	require.NoError(t, err)
	_, err = svc.Establish(user.ID, pair.AccessToken, pair.RefreshToken, "10.0.0.1", "agent")
	require.NoError(t, err)

	require.NoError(t, store.Db().Model(&model.User{}).Where("id = ?", user.ID).Update("enabled", false).Error)

	_, _, err = svc.Refresh(pair.RefreshToken, "10.0.0.1", "agent")
	require.Error(t, err)
}

func TestLogoutMarksSessionAndKeepsRow(t *testing.T) {
	svc, store := newTestSessions(t)

	session, err := svc.Establish("u-1", "at-1", "rt-1", "10.0.0.1", "agent")
	require.NoError(t, err)

	require.NoError(t, svc.Logout("u-1"))

	var row model.UserSession
	require.NoError(t, store.Db().Where("id = ?", session.ID).First(&row).Error)
	require.NotNil(t, row.LoggedOutAt, "logout marks the row instead of deleting it")
	assert.GreaterOrEqual(t, row.DurationSec, int64(0))

	active, err := svc.ActiveSession("u-1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _ := newTestSessions(t)

	_, err := svc.Establish("u-1", "at-1", "rt-1", "10.0.0.1", "agent")
	require.NoError(t, err)

	require.NoError(t, svc.Logout("u-1"))
	require.NoError(t, svc.Logout("u-1"), "a second logout is a no-op, not an error")
	require.NoError(t, svc.Logout("u-never-logged-in"))
}

func TestCleanupExpiredPurgesOnlyExpired(t *testing.T) {
	svc, store := newTestSessions(t)

	_, err := svc.Establish("u-live", "at-1", "rt-1", "10.0.0.1", "agent")
	require.NoError(t, err)

	stale := &model.UserSession{
		ID:           "sess-stale",
		UserID:       "u-stale",
		AccessToken:  "at-old",
		RefreshToken: "rt-old",
		IssuedAt:     time.Now().Add(-48 * time.Hour),
		ExpiresAt:    time.Now().Add(-24 * time.Hour),
	}
	_, err = store.Sessions().Create(stale)
	require.NoError(t, err)

	removed, err := svc.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err := store.Sessions().CountActiveByUser("u-live")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
