package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lac-hong-legacy/authguard/dto"
	"github.com/lac-hong-legacy/authguard/model"
	"github.com/lac-hong-legacy/authguard/shared"
)

func newTestAuth(t *testing.T) (*AuthService, *SqliteService) {
	t.Helper()

	store := newTestStore(t)
	jwtSvc := newTestJWT()
	svc := &AuthService{
		userSvc:    &UserService{sqlSvc: store},
		jwtSvc:     jwtSvc,
		sessionSvc: &SessionService{sqlSvc: store, jwtSvc: jwtSvc},
		guardSvc:   newTestGuard(store),
	}
	return svc, store
}

func loginReq(loginID, password string) *dto.LoginRequest {
	return &dto.LoginRequest{LoginID: loginID, Password: password}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	svc, store := newTestAuth(t)
	user := createTestUser(t, store, "alice", "Sup3rSecret!")

	resp, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, "alice", resp.User.LoginID)

	// The login left an active session behind.
	session, err := svc.sessionSvc.ActiveSession(user.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, resp.RefreshToken, session.RefreshToken)

	// And stamped the login metadata on the account.
	refreshed, err := svc.userSvc.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", refreshed.LastLoginIP)
	assert.NotNil(t, refreshed.LastLoginAt)
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc, store := newTestAuth(t)
	createTestUser(t, store, "alice", "Sup3rSecret!")

	_, errWrong := svc.Login(loginReq("alice", "nope"), "10.0.0.1", "agent")
	require.Error(t, errWrong)
	_, errUnknown := svc.Login(loginReq("who", "nope"), "10.0.0.1", "agent")
	require.Error(t, errUnknown)

	appWrong, ok := shared.GetAppError(errWrong)
	require.True(t, ok)
	appUnknown, ok := shared.GetAppError(errUnknown)
	require.True(t, ok)

	// Same code, same message: the response must not reveal whether the
	// account exists.
	assert.Equal(t, shared.CodeInvalidCredentials, appWrong.Code)
	assert.Equal(t, appWrong.Code, appUnknown.Code)
	assert.Equal(t, appWrong.Message, appUnknown.Message)
	assert.Equal(t, appWrong.StatusCode, appUnknown.StatusCode)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, store := newTestAuth(t)
	user := createTestUser(t, store, "alice", "Sup3rSecret!")
	require.NoError(t, store.Db().Model(&model.User{}).Where("id = ?", user.ID).Update("enabled", false).Error)

	_, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeAccountDisabled, appErr.Code)
}

func TestLoginLocksIPAfterRepeatedFailures(t *testing.T) {
	svc, store := newTestAuth(t)
	createTestUser(t, store, "alice", "Sup3rSecret!")

	for i := 0; i < 5; i++ {
		_, err := svc.Login(loginReq("alice", "wrong"), "10.0.0.9", "agent")
		require.Error(t, err)
	}

	// Even the right password is refused while the block is armed, with the
	// same message a wrong password gets.
	_, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.9", "agent")
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, shared.CodeInvalidCredentials, appErr.Code)

	// A different address is unaffected.
	_, err = svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.10", "agent")
	require.NoError(t, err)
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	svc, store := newTestAuth(t)
	createTestUser(t, store, "alice", "Sup3rSecret!")

	for i := 0; i < 4; i++ {
		_, err := svc.Login(loginReq("alice", "wrong"), "10.0.0.9", "agent")
		require.Error(t, err)
	}

	_, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.9", "agent")
	require.NoError(t, err)

	// Counter cleared: four more misses do not trip the lock again.
	for i := 0; i < 4; i++ {
		_, err := svc.Login(loginReq("alice", "wrong"), "10.0.0.9", "agent")
		require.Error(t, err)
	}
	_, err = svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.9", "agent")
	require.NoError(t, err)
}

func TestLoginReplacesPriorSession(t *testing.T) {
	svc, store := newTestAuth(t)
	user := createTestUser(t, store, "alice", "Sup3rSecret!")

	first, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.NoError(t, err)
	second, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.2", "agent")
	require.NoError(t, err)

	count, err := store.Sessions().CountActiveByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The first refresh token died with its session.
	_, rotateErr := svc.RefreshTokens(first.RefreshToken, "10.0.0.1", "agent")
	require.Error(t, rotateErr)
	_, rotateErr = svc.RefreshTokens(second.RefreshToken, "10.0.0.2", "agent")
	require.NoError(t, rotateErr)
}

func TestLoginFailsWhenSessionCannotBeStored(t *testing.T) {
	svc, store := newTestAuth(t)
	createTestUser(t, store, "alice", "Sup3rSecret!")

	require.NoError(t, store.Db().Migrator().DropTable(&model.UserSession{}))

	_, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.Error(t, err, "a login that cannot persist its session must fail")
}

func TestRefreshTokensReturnsFreshPair(t *testing.T) {
	svc, store := newTestAuth(t)
	createTestUser(t, store, "alice", "Sup3rSecret!")

	resp, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.NoError(t, err)

	pair, err := svc.RefreshTokens(resp.RefreshToken, "10.0.0.1", "agent")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, resp.RefreshToken, pair.RefreshToken)
	assert.True(t, svc.jwtSvc.ValidateToken(pair.AccessToken))
}

func TestLogoutEndsSession(t *testing.T) {
	svc, store := newTestAuth(t)
	user := createTestUser(t, store, "alice", "Sup3rSecret!")

	resp, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(user.ID))

	active, err := svc.sessionSvc.ActiveSession(user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// The logged-out refresh token cannot be replayed.
	_, err = svc.RefreshTokens(resp.RefreshToken, "10.0.0.1", "agent")
	require.Error(t, err)
}

func TestValidateAndIdentify(t *testing.T) {
	svc, store := newTestAuth(t)
	user := createTestUser(t, store, "alice", "Sup3rSecret!")

	resp, err := svc.Login(loginReq("alice", "Sup3rSecret!"), "10.0.0.1", "agent")
	require.NoError(t, err)

	claims, ok := svc.ValidateAndIdentify(resp.AccessToken)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.LoginID)

	_, ok = svc.ValidateAndIdentify("garbage")
	assert.False(t, ok)
}

func TestProfile(t *testing.T) {
	svc, store := newTestAuth(t)
	user := createTestUser(t, store, "alice", "Sup3rSecret!")

	info, err := svc.Profile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.LoginID)
	assert.Equal(t, shared.RoleUser, info.Role)

	_, err = svc.Profile("no-such-user")
	require.Error(t, err)
}
