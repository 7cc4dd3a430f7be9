package middleware

import (
	"context"
	"strings"

	"academy_go/services"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// Authorizer checks a raw session token against a capability.
type Authorizer interface {
	Authorize(ctx context.Context, raw string, cap services.Capability) (*services.Principal, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) string {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" {
		return ""
	}
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	// A header that is not a bearer token is treated as malformed, not absent.
	return authHeader
}

// RequireCapability gates a route on one capability of the role policy.
// A missing or invalid session answers 401, an insufficient role 403.
func RequireCapability(auth Authorizer, cap services.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := auth.Authorize(c.UserContext(), BearerToken(c), cap)
		if err != nil {
			return RespondError(c, err)
		}
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}
}

// GetCurrentPrincipal returns the authenticated principal, or nil on public routes.
func GetCurrentPrincipal(c *fiber.Ctx) *services.Principal {
	p, _ := c.Locals(principalKey).(*services.Principal)
	return p
}
