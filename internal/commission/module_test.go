package commission

import (
	"context"
	"errors"
	"testing"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakePayoutLookup struct {
	commission *Commission
	err        error
}

func (l *fakePayoutLookup) GetByApplication(context.Context, uuid.UUID) (*Commission, error) {
	return l.commission, l.err
}

func statusChanged(appID uuid.UUID, status string) events.StatusChanged {
	return events.StatusChanged{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: appID,
		Actor:         string(domain.ActorAdmin),
		NewStage:      5,
		NewStatus:     status,
	}
}

func TestModulePublishesCommissionPaid(t *testing.T) {
	appID := uuid.New()
	partnerID := uuid.New()
	bus := &recordingBus{}
	lookup := &fakePayoutLookup{commission: &Commission{
		ID:            uuid.New(),
		ApplicationID: appID,
		PartnerID:     partnerID,
		AmountCents:   180_000,
		Currency:      "EUR",
	}}
	NewModule(lookup, bus, logger.New("test"))

	bus.Publish(context.Background(), statusChanged(appID, domain.StatusCommissionPaid))

	paid := bus.byName("commissions.paid")
	if len(paid) != 1 {
		t.Fatalf("commissions.paid events = %d, want 1", len(paid))
	}
	e, ok := paid[0].(events.CommissionPaid)
	if !ok {
		t.Fatalf("unexpected event type %T", paid[0])
	}
	if e.ApplicationID != appID || e.PartnerID != partnerID || e.AmountCents != 180_000 {
		t.Errorf("CommissionPaid = %+v", e)
	}
}

func TestModuleIgnoresOtherStatusChanges(t *testing.T) {
	bus := &recordingBus{}
	lookup := &fakePayoutLookup{commission: &Commission{AmountCents: 100}}
	NewModule(lookup, bus, logger.New("test"))

	bus.Publish(context.Background(), statusChanged(uuid.New(), domain.StatusInvoiceSubmitted))

	if got := bus.byName("commissions.paid"); len(got) != 0 {
		t.Errorf("commissions.paid events = %d, want 0", len(got))
	}
}

func TestModuleSkipsPaidWithoutRecordedPayout(t *testing.T) {
	tests := []struct {
		name   string
		lookup *fakePayoutLookup
	}{
		{name: "no payout on record", lookup: &fakePayoutLookup{}},
		{name: "lookup error", lookup: &fakePayoutLookup{err: errors.New("connection refused")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bus := &recordingBus{}
			NewModule(tc.lookup, bus, logger.New("test"))

			bus.Publish(context.Background(), statusChanged(uuid.New(), domain.StatusCommissionPaid))

			if got := bus.byName("commissions.paid"); len(got) != 0 {
				t.Errorf("commissions.paid events = %d, want 0", len(got))
			}
		})
	}
}
