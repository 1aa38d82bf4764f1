// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"gym-studio-pos/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Simple sampling: keep first 100, then 1 every 100 thereafter.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxTraceID    ctxKey = "trace_id"
	ctxOrgID      ctxKey = "org_id"
	ctxEmployeeID ctxKey = "employee_id"
	ctxCustomerID ctxKey = "customer_id"
)

// With attaches common context fields such as trace_id, org_id, employee_id.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v := ctx.Value(ctxTraceID); v != nil {
		l = l.Str("trace_id", v.(string))
	}
	if v := ctx.Value(ctxOrgID); v != nil {
		l = l.Str("org_id", v.(string))
	}
	if v := ctx.Value(ctxEmployeeID); v != nil {
		l = l.Str("employee_id", v.(string))
	}
	if v := ctx.Value(ctxCustomerID); v != nil {
		l = l.Str("customer_id", v.(string))
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "CheckoutUC.Capture")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		elapsed := time.Since(start)
		logger.Trace().Str("method", name).Dur("duration", elapsed).Msg("finish")
	}
}

// Helpers to put IDs into context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}
func WithOrgID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxOrgID, id)
}
func WithEmployeeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxEmployeeID, id)
}
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxCustomerID, id)
}

// Expose global (optional). Prefer injection where possible.
var Global = log.Logger
