package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

const RequestIDHeader = "X-Request-ID"

// Middleware logs one line per request once the handler chain returns.
func Middleware(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(RequestIDHeader, reqID)

		chainErr := c.Next()
		if chainErr != nil {
			// let fiber's error handler write the response before we read the status
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if id, err := auth.FromCtx(c); err == nil {
			ev = ev.Int("user_id", id.UserID)
		}
		if cause, ok := c.Locals("error").(error); ok {
			ev = ev.Err(cause)
		} else if chainErr != nil {
			ev = ev.Err(chainErr)
		}
		ev.Msg("request completed")
		return nil
	}
}
