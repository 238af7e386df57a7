package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lac-hong-legacy/authguard/shared"
)

// TokenVerifier is the slice of the auth service the middleware needs.
type TokenVerifier interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	ExtractIdentity(token string) (userID, loginID, role string, ok bool)
}

// RequiredAuth rejects requests without a valid bearer token and stashes the
// caller's identity in the request locals.
func RequiredAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := verifier.ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, loginID, role, ok := verifier.ExtractIdentity(token)
		if !ok || userID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.LoginID, loginID)
		c.Locals(shared.UserRole, role)
		return c.Next()
	}
}

// RequireRole gates a route to callers holding the given role. Must run
// after RequiredAuth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals(shared.UserRole).(string)
		if current != role {
			return shared.ResponseJSON(c, http.StatusForbidden, "Forbidden", "insufficient privileges")
		}
		return c.Next()
	}
}

// GetClientIP resolves the caller's address, honoring proxy headers in the
// order they are trusted: X-Forwarded-For first hop, then X-Real-IP, then
// the socket peer. IPv6 loopback is folded to its IPv4 form so lockout
// records stay consistent across local stacks.
func GetClientIP(c *fiber.Ctx) string {
	ip := ""

	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		ip = strings.TrimSpace(parts[0])
	}

	if ip == "" {
		ip = c.Get("X-Real-IP")
	}

	if ip == "" {
		ip = c.IP()
	}

	if ip == "::1" || ip == "0:0:0:0:0:0:0:1" {
		ip = "127.0.0.1"
	}

	return ip
}
