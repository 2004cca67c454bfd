package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"video-service/internal/auth"
	utils "video-service/internal/utis"
)

const identityKey = "identity"

// JWTAuth verifies the bearer token and stashes the identity in Locals and
// in the request context (the claim-based group resolver reads it there).
func JWTAuth(verifier *auth.JWTVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, "missing auth")
		}
		token := header
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
		id, err := verifier.VerifyToken(token)
		if err != nil {
			return utils.JSONError(c, fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(identityKey, id)
		ctx := auth.WithIdentity(c.UserContext(), id)
		c.SetUserContext(auth.WithClientIP(ctx, c.IP()))
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by JWTAuth.
func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(identityKey).(auth.Identity)
	return id, ok
}
