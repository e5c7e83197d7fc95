package commission

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/events"
	apphttp "admissions_portal_backend/internal/http"
	"admissions_portal_backend/platform/httpkit"
	"admissions_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayoutLookup reads recorded payouts. Implemented by Repository; a missing
// record comes back as (nil, nil).
type PayoutLookup interface {
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*Commission, error)
}

// Module exposes commission records over HTTP and announces confirmed
// payouts on the bus.
type Module struct {
	repo PayoutLookup
	bus  events.Bus
	log  *logger.Logger
}

// NewModule creates the commission module and subscribes it to status
// changes, so a transition into commission_paid publishes CommissionPaid
// with the recorded amount.
func NewModule(repo PayoutLookup, bus events.Bus, log *logger.Logger) *Module {
	m := &Module{repo: repo, bus: bus, log: log}

	bus.Subscribe(events.StatusChanged{}.EventName(), events.HandlerFunc(m.handleStatusChanged))

	return m
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "commissions"
}

// RegisterRoutes mounts the commission lookup under the application path.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/applications/:id/commission", m.getByApplication)
}

func (m *Module) handleStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(events.StatusChanged)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if e.NewStatus != domain.StatusCommissionPaid {
		return nil
	}

	commission, err := m.repo.GetByApplication(ctx, e.ApplicationID)
	if err != nil {
		m.log.Warn("payout lookup failed on paid transition",
			"application_id", e.ApplicationID, "error", err)
		return nil
	}
	if commission == nil {
		m.log.Warn("application marked paid without a recorded payout",
			"application_id", e.ApplicationID)
		return nil
	}

	m.bus.Publish(ctx, events.CommissionPaid{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: commission.ApplicationID,
		PartnerID:     commission.PartnerID,
		AmountCents:   commission.AmountCents,
	})
	return nil
}

// CommissionResponse is the HTTP view of one payout record.
type CommissionResponse struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"applicationId"`
	PartnerID     uuid.UUID `json:"partnerId"`
	AmountCents   int64     `json:"amountCents"`
	Rate          string    `json:"rate"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (m *Module) getByApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid application id", nil)
		return
	}

	commission, err := m.repo.GetByApplication(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	if commission == nil {
		httpkit.Error(c, http.StatusNotFound, "no commission calculated for this application", nil)
		return
	}

	httpkit.OK(c, CommissionResponse{
		ID:            commission.ID,
		ApplicationID: commission.ApplicationID,
		PartnerID:     commission.PartnerID,
		AmountCents:   commission.AmountCents,
		Rate:          commission.Rate,
		Currency:      commission.Currency,
		CreatedAt:     commission.CreatedAt,
	})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
