package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/borntodev-academy/go-auth-api/internal/db/models"
)

// claimsKey is the locals key under which RequireAuth stores verified claims.
const claimsKey = "auth_claims"

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token. Verified claims are stored in the request locals for
// downstream handlers.
func RequireAuth(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated",
			})
		}

		claims, err := issuer.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated",
			})
		}

		c.Locals(claimsKey, claims)

		return c.Next()
	}
}

// RequireRoles returns a middleware that only lets requests through when the
// authenticated user's role is one of the given roles. Must be registered
// after RequireAuth.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromContext(c)
		if claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthenticated",
			})
		}

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireAuth, or nil when the
// request never passed through it.
func ClaimsFromContext(c *fiber.Ctx) *Claims {
	claims, ok := c.Locals(claimsKey).(*Claims)
	if !ok {
		return nil
	}

	return claims
}
