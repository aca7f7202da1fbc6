package middleware

import (
	"commandlayer/internal/dto"
	"commandlayer/internal/models"
	"commandlayer/internal/repository"
	"commandlayer/pkg/apikey"
	"commandlayer/pkg/config"
	"commandlayer/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const authContextKey = "auth"

// AuthContext carries the caller identity resolved by the auth middleware.
type AuthContext struct {
	Mode         string
	APIKeyID     string
	Name         string
	Role         models.APIKeyRole
	RateLimitKey string
}

// GetAuthContext reads the context stored by APIKeyAuth. Handlers behind
// the middleware can rely on it being present.
func GetAuthContext(c *fiber.Ctx) AuthContext {
	if ctx, ok := c.Locals(authContextKey).(AuthContext); ok {
		return ctx
	}
	return AuthContext{Mode: "off", RateLimitKey: "anonymous"}
}

// APIKeyAuth authenticates the caller and admits it through the rate
// limiter. One limiter slot is consumed per request, keyed by caller
// identity.
func APIKeyAuth(cfg *config.AuthConfig, keys *repository.APIKeyRepository, limiter *ratelimit.FixedWindow, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx := AuthContext{Mode: "off", RateLimitKey: "anonymous"}

		if cfg.Mode == "api_key" {
			headerValue := c.Get(cfg.HeaderName)
			if headerValue == "" {
				logger.Warn("Missing API key header")
				return unauthorized(c)
			}

			keyHash := apikey.Hash(headerValue)
			key, err := keys.GetByHash(c.Context(), keyHash)
			if err != nil {
				logger.Error("API key lookup failed", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
					ErrorCode: "internal_error",
					Message:   "Failed to authenticate request.",
				})
			}
			if key == nil || !key.Active {
				logger.Warn("Unknown or inactive API key")
				return unauthorized(c)
			}

			authCtx = AuthContext{
				Mode:         "api_key",
				APIKeyID:     key.ID.String(),
				Name:         key.Name,
				Role:         key.Role,
				RateLimitKey: key.ID.String(),
			}
		}

		if !limiter.Allow(authCtx.RateLimitKey) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				ErrorCode: "rate_limited",
				Message:   "Too many requests. Try again later.",
			})
		}

		c.Locals(authContextKey, authCtx)
		return c.Next()
	}
}

// RequireRole gates a route to the given roles. With auth off every caller
// passes.
func RequireRole(roles ...models.APIKeyRole) fiber.Handler {
	allowed := make(map[models.APIKeyRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *fiber.Ctx) error {
		authCtx := GetAuthContext(c)
		if authCtx.Mode != "api_key" {
			return c.Next()
		}
		if !allowed[authCtx.Role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				ErrorCode: "forbidden",
				Message:   "API key does not have permission for this resource.",
			})
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		ErrorCode: "unauthorized",
		Message:   "Missing or invalid API key.",
	})
}
