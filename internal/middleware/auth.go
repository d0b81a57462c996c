package middleware

import (
	"errors"
	"strings"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/logging"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthRequired verifies the bearer token and stores the caller as a
// *auth.Principal under httpx.LocalPrincipal. Websocket upgrades may pass the
// token as ?token= since browsers cannot set headers on them.
func AuthRequired(verifier auth.Verifier, policy *auth.Policy, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		var tokenString string
		if authHeader != "" {
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return httpx.Unauthorized(c, "invalid_authorization", "Invalid authorization format")
			}
			tokenString = parts[1]
		} else if isWebSocketUpgrade(c) {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return httpx.Unauthorized(c, "missing_access_token", "No token provided")
		}

		identity, err := verifier.Verify(c.UserContext(), tokenString)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindUpstream {
				logger.Warn("token verification unavailable", zap.Error(err))
				return httpx.FromError(c, err)
			}
			code := "invalid_access_token"
			var e *apperr.Error
			if errors.As(err, &e) && e.Code != "" {
				code = e.Code
			}
			return httpx.Unauthorized(c, code, "Invalid or expired token")
		}

		principal := auth.NewPrincipal(*identity, policy.RoleOf(identity.ID), tokenString)
		c.Locals(httpx.LocalPrincipal, principal)
		c.Locals("userID", identity.ID)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), httpx.RequestID(c)))

		return c.Next()
	}
}

func isWebSocketUpgrade(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket")
}
