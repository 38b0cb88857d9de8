package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	loggerKey  contextKey = "logger"
	traceIDKey contextKey = "trace_id"
)

// GenerateTraceID generates a new trace ID
func GenerateTraceID() string {
	return uuid.New().String()
}

// FromContext retrieves the logger from context
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return Component("app")
}

// NewContext creates a new context carrying the logger
func NewContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// TraceIDFromContext returns the trace ID stored in the context, if any.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceContext adds a fresh trace ID to the context and returns a
// copy of base carrying it. The logger is also stored in the context for
// FromContext callers further down the pipeline.
func WithTraceContext(ctx context.Context, base zerolog.Logger) (context.Context, zerolog.Logger) {
	traceID := GenerateTraceID()
	l := WithTraceID(base, traceID)
	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, loggerKey, l)
	return newCtx, l
}

// SignalContext creates a logger for one signal's lifecycle
func SignalContext(symbol, signalType string, confidence float64) zerolog.Logger {
	return Component("signal").With().
		Str("symbol", symbol).
		Str("signal_type", signalType).
		Float64("confidence", confidence).
		Logger()
}

// RiskContext creates a logger for risk gate decisions
func RiskContext(symbol string, confidence, volatility float64) zerolog.Logger {
	return Component("risk").With().
		Str("symbol", symbol).
		Float64("confidence", confidence).
		Float64("volatility", volatility).
		Logger()
}
