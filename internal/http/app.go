// Package http provides the server shell: the Module contract domain
// modules implement and the App container the composition root fills.
package http

import (
	"context"

	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/platform/config"
	"admissions_portal_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router needs.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is what the readiness endpoint probes, usually the
// database pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the initialized dependencies main.go hands to the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Modules are the HTTP-facing domain modules, mounted in order.
	Modules []Module
}
