package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// AdminKeyHeader carries the admin key on protected routes.
const AdminKeyHeader = "X-API-Key"

// AuthConfig configures key checking on a route group.
type AuthConfig struct {
	// Header holds the key. "Bearer " prefixes are accepted. Default
	// AdminKeyHeader.
	Header string

	// Validator decides whether key grants access. Required.
	Validator func(key string) (bool, error)

	// Unauthorized answers rejected requests. Default 401 with the error
	// envelope.
	Unauthorized fiber.ErrorHandler
}

var (
	errMissingKey    = errors.New("missing API key")
	errInvalidKey    = errors.New("invalid API key")
	errAdminKeyUnset = errors.New("admin API key not configured")
)

func unauthorized(c *fiber.Ctx, err error) error {
	logger.Get().Warn().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("ip", c.IP()).
		Msg("Rejected admin request")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"error":  "Invalid or missing API key",
	})
}

// NewAuth rejects requests whose key does not pass cfg.Validator. The
// accepted key is stored in Locals under "apiKey".
func NewAuth(cfg AuthConfig) fiber.Handler {
	if cfg.Header == "" {
		cfg.Header = AdminKeyHeader
	}
	if cfg.Unauthorized == nil {
		cfg.Unauthorized = unauthorized
	}

	return func(c *fiber.Ctx) error {
		key := strings.TrimPrefix(c.Get(cfg.Header), "Bearer ")
		if key == "" {
			return cfg.Unauthorized(c, errMissingKey)
		}

		ok, err := cfg.Validator(key)
		if err != nil {
			return cfg.Unauthorized(c, err)
		}
		if !ok {
			return cfg.Unauthorized(c, errInvalidKey)
		}

		c.Locals("apiKey", key)
		return c.Next()
	}
}

// AdminOnly guards processing and deletion routes with a constant-time
// comparison against adminKey. An empty adminKey rejects every request.
func AdminOnly(adminKey string) fiber.Handler {
	return NewAuth(AuthConfig{
		Validator: func(key string) (bool, error) {
			if adminKey == "" {
				return false, errAdminKeyUnset
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) == 1, nil
		},
	})
}
