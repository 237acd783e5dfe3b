package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"civicdocs/internal/auth"
)

const (
	// UserIDLocalKey is the context-locals key holding the authenticated user id.
	UserIDLocalKey = "user_id"
	// RoleLocalKey is the context-locals key holding the authenticated role.
	RoleLocalKey = "role"
)

// RequireAuth validates the Bearer token on each request and stores the
// authenticated user id and role in context locals. Requests without a valid
// token are rejected with 401.
func RequireAuth(svc *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := svc.VerifyToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDLocalKey, claims.UserID)
		c.Locals(RoleLocalKey, claims.Role)

		return c.Next()
	}
}

// RequireRole rejects with 403 unless the authenticated role, set by
// RequireAuth, is one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(RoleLocalKey).(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}
