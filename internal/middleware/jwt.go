package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kultura-go/internal/authn"
	"github.com/noah-isme/kultura-go/internal/utils"
)

const (
	localUserID   = "user_id"
	localUserRole = "user_role"
	localToken    = "auth_token"
)

// JWTProtected returns a middleware that validates bearer tokens signed by issuer.
func JWTProtected(issuer *authn.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get(fiber.HeaderAuthorization)
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localToken, tokenString)
		if role := strings.ToLower(strings.TrimSpace(claims.Role)); role != "" {
			c.Locals(localUserRole, role)
		}

		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(localUserID).(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}

// UserRole returns the authenticated user's role.
func UserRole(c *fiber.Ctx) string {
	if role, ok := c.Locals(localUserRole).(string); ok {
		return role
	}
	return ""
}

// BearerToken returns the token the request was authenticated with.
func BearerToken(c *fiber.Ctx) string {
	if token, ok := c.Locals(localToken).(string); ok {
		return token
	}
	return ""
}
