// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ActorKey is the context key for the acting workflow role
	ActorKey contextKey = "actor"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and actor from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if actor, ok := ctx.Value(ActorKey).(string); ok && actor != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("actor", actor)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// Transition logs an applied workflow transition.
func (l *Logger) Transition(applicationID string, actor string, fromStage int, fromStatus string, toStage int, toStatus string) {
	l.Info("workflow_transition",
		slog.String("application_id", applicationID),
		slog.String("actor", actor),
		slog.Int("from_stage", fromStage),
		slog.String("from_status", fromStatus),
		slog.Int("to_stage", toStage),
		slog.String("to_status", toStatus),
	)
}

// TransitionDenied logs a denied transition attempt.
func (l *Logger) TransitionDenied(applicationID string, actor string, target string, reason string) {
	l.Warn("workflow_transition_denied",
		slog.String("application_id", applicationID),
		slog.String("actor", actor),
		slog.String("target_status", target),
		slog.String("reason", reason),
	)
}

// ConfigurationError logs registry/configuration problems. These are system
// bugs, not user errors, and are logged distinctly from validation failures.
func (l *Logger) ConfigurationError(component string, err error) {
	l.Error("configuration_error",
		slog.String("component", component),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
