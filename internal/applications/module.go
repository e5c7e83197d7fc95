// Package applications provides the student application workflow module.
package applications

import (
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/handler"
	"admissions_portal_backend/internal/applications/repository"
	"admissions_portal_backend/internal/applications/service"
	"admissions_portal_backend/internal/events"
	apphttp "admissions_portal_backend/internal/http"
	"admissions_portal_backend/platform/logger"
	"admissions_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the applications domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new applications module with all dependencies wired.
// The registry must already be verified; MustNewRegistry at the composition
// root is the expected source.
func NewModule(
	pool *pgxpool.Pool,
	reg *domain.Registry,
	slaIdleThreshold time.Duration,
	docs service.DocumentGenerator,
	commissions service.CommissionCalculator,
	presign handler.UploadPresigner,
	bus events.Bus,
	log *logger.Logger,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	pipeline := domain.NewPipeline(reg, domain.WithSLAIdleThreshold(slaIdleThreshold))
	automation := domain.NewAutomationEngine(reg, slaIdleThreshold)
	svc := service.New(repo, reg, pipeline, automation, docs, commissions, bus, log)
	h := handler.New(svc, val, presign)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "applications"
}

// RegisterRoutes registers the module's routes under /api/v1/applications
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	applications := ctx.Protected.Group("/applications")
	m.handler.RegisterRoutes(applications)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
