package middleware

import (
	"time"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger

	// Fields to include in the logs
	Fields []string
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
	Next:   nil,
	Fields: []string{"request_id", "latency", "status", "method", "path", "ip", "user_agent"},
}

// NewLogger creates a new middleware handler
func NewLogger(config ...LoggerConfig) fiber.Handler {
	cfg := DefaultLoggerConfig

	if len(config) > 0 {
		cfg = config[0]

		if cfg.Next == nil {
			cfg.Next = DefaultLoggerConfig.Next
		}
		if len(cfg.Fields) == 0 {
			cfg.Fields = DefaultLoggerConfig.Fields
		}
	}

	fields := make(map[string]bool)
	for _, f := range cfg.Fields {
		fields[f] = true
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals("requestid", requestID)

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		log := cfg.Logger
		if log == nil {
			log = logger.Get()
		}

		event := log.Info()
		status := c.Response().StatusCode()
		if err != nil || status >= fiber.StatusInternalServerError {
			event = log.Error()
		}

		if fields["request_id"] {
			event = event.Str("request_id", requestID)
		}
		if fields["method"] {
			event = event.Str("method", c.Method())
		}
		if fields["path"] {
			event = event.Str("path", c.Path())
		}
		if fields["status"] {
			event = event.Int("status", status)
		}
		if fields["ip"] {
			event = event.Str("ip", c.IP())
		}
		if fields["user_agent"] {
			event = event.Str("user_agent", c.Get("User-Agent"))
		}
		if fields["latency"] {
			event = event.Dur("latency", latency)
		}
		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")
		return err
	}
}

// RequestLogger is a simpler version of the logger middleware
func RequestLogger() fiber.Handler {
	return NewLogger(LoggerConfig{
		Fields: []string{"request_id", "latency", "status", "method", "path", "ip"},
	})
}
