package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lac-hong-legacy/authguard/shared"
)

type stubVerifier struct {
	userID  string
	loginID string
	role    string
}

func (v *stubVerifier) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is required")
	}
	return authHeader, nil
}

func (v *stubVerifier) ExtractIdentity(token string) (string, string, string, bool) {
	if token != "good-token" {
		return "", "", "", false
	}
	return v.userID, v.loginID, v.role, true
}

func newAuthedApp(verifier TokenVerifier, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{RequiredAuth(verifier)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(shared.UserID).(string))
	})
	app.Get("/protected", handlers...)
	return app
}

func TestRequiredAuthRejectsMissingHeader(t *testing.T) {
	app := newAuthedApp(&stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredAuthRejectsBadToken(t *testing.T) {
	app := newAuthedApp(&stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bad-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequiredAuthStashesIdentity(t *testing.T) {
	app := newAuthedApp(&stubVerifier{userID: "u-1", loginID: "alice", role: shared.RoleUser})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	verifier := &stubVerifier{userID: "u-1", loginID: "alice", role: shared.RoleUser}
	app := newAuthedApp(verifier, RequireRole(shared.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "good-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	verifier.role = shared.RoleAdmin
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(GetClientIP(c))
	})

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "forwarded for takes first hop",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "real ip when no forwarded for",
			headers: map[string]string{"X-Real-IP": "198.51.100.4"},
			want:    "198.51.100.4",
		},
		{
			name:    "ipv6 loopback folded",
			headers: map[string]string{"X-Forwarded-For": "::1"},
			want:    "127.0.0.1",
		},
		{
			name:    "long form ipv6 loopback folded",
			headers: map[string]string{"X-Real-IP": "0:0:0:0:0:0:0:1"},
			want:    "127.0.0.1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			body := make([]byte, 64)
			n, _ := resp.Body.Read(body)
			assert.Equal(t, tc.want, string(body[:n]))
		})
	}
}
