// Package middleware provides authentication and request-scoped middleware for the application.
package middleware

import (
	"context"
	"log/slog"
	"strings"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals keys set by AuthRequired.
const (
	UserIDLocal   = "userID"
	IdentityLocal = "identity"
)

// Guard failure messages.
const (
	MsgTokenAbsent  = "token absent"
	MsgTokenInvalid = "token invalid"
	MsgUserMissing  = "user does not exist"
)

// VerifyAccessFunc decodes an access token into the identity it claims.
type VerifyAccessFunc func(token string) (models.AuthenticatedIdentity, error)

// ActiveUserFunc reports whether the user exists and is not soft-deleted.
type ActiveUserFunc func(ctx context.Context, userID string) (bool, error)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// The user row is re-checked on every request so revoked accounts lose access immediately.
func AuthRequired(verify VerifyAccessFunc, isActive ActiveUserFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := BearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(MsgTokenAbsent))
		}

		identity, err := verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(MsgTokenInvalid))
		}

		active, err := isActive(c.UserContext(), identity.UserID)
		if err != nil {
			Logger.ErrorContext(c.UserContext(), "auth guard user lookup failed", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(nil))
		}
		if !active {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(MsgUserMissing))
		}

		c.Locals(UserIDLocal, identity.UserID)
		c.Locals(IdentityLocal, identity)
		c.SetUserContext(WithUserID(c.UserContext(), identity.UserID))

		return c.Next()
	}
}

// IdentityFrom returns the identity attached by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (models.AuthenticatedIdentity, bool) {
	identity, ok := c.Locals(IdentityLocal).(models.AuthenticatedIdentity)
	return identity, ok
}
