package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger.
var Logger = NewLogger(os.Getenv("APP_ENV"), os.Stdout)

type logField int

const (
	requestIDField logField = iota
	userIDField
	traceIDField
)

var logFieldNames = [...]string{
	requestIDField: "request_id",
	userIDField:    "user_id",
	traceIDField:   "trace_id",
}

// contextHandler copies request-scoped identifiers from the context onto each record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for field, name := range logFieldNames {
		if v, ok := ctx.Value(logField(field)).(string); ok && v != "" {
			r.AddAttrs(slog.String(name, v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// NewLogger writes JSON in production and text elsewhere. Tests only see warnings.
func NewLogger(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "test" {
		opts.Level = slog.LevelWarn
	}
	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(contextHandler{h})
}

// WithUserID returns ctx carrying the authenticated user ID for log records.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDField, userID)
}

func withLocal(ctx context.Context, c *fiber.Ctx, local string, field logField) context.Context {
	if v, ok := c.Locals(local).(string); ok && v != "" {
		return context.WithValue(ctx, field, v)
	}
	return ctx
}

// ContextMiddleware moves the request ID from Fiber locals into the request
// context. TracingMiddleware and AuthRequired add the trace and user IDs.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(withLocal(c.UserContext(), c, "requestid", requestIDField))
		return c.Next()
	}
}

// StructuredLogger logs one line per request. Server errors log at error
// level and client errors at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		level := slog.LevelInfo
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		Logger.LogAttrs(c.UserContext(), level, "request", attrs...)
		return err
	}
}
