package commission

import (
	"context"
	"sync"
	"testing"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/internal/partners"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakePayoutStore struct {
	mu       sync.Mutex
	inserted []Commission
	byApp    map[uuid.UUID]bool
}

func newFakePayoutStore() *fakePayoutStore {
	return &fakePayoutStore{byApp: make(map[uuid.UUID]bool)}
}

func (s *fakePayoutStore) Insert(_ context.Context, c *Commission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byApp[c.ApplicationID] {
		return false, nil
	}
	s.byApp[c.ApplicationID] = true
	s.inserted = append(s.inserted, *c)
	return true, nil
}

type fakeDirectory struct {
	partner *partners.Partner
}

func (d *fakeDirectory) GetByID(context.Context, uuid.UUID) (*partners.Partner, error) {
	return d.partner, nil
}

type fakeConfig struct {
	rate  string
	bonus string
}

func (c fakeConfig) GetCommissionRate() string      { return c.rate }
func (c fakeConfig) GetCommissionTierBonus() string { return c.bonus }

// recordingBus records every published event and dispatches to subscribed
// handlers inline. Handlers run outside the lock so they may publish too.
type recordingBus struct {
	mu       sync.Mutex
	events   []events.Event
	handlers map[string][]events.Handler
}

func (b *recordingBus) Publish(ctx context.Context, e events.Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	handlers := append([]events.Handler(nil), b.handlers[e.EventName()]...)
	b.mu.Unlock()

	for _, h := range handlers {
		_ = h.Handle(ctx, e)
	}
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(name string, h events.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[string][]events.Handler)
	}
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *recordingBus) byName(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			matched = append(matched, e)
		}
	}
	return matched
}

func testApp(tuitionCents int64) *domain.Application {
	return &domain.Application{
		ID:           uuid.New(),
		PartnerID:    uuid.New(),
		TuitionCents: tuitionCents,
	}
}

func TestCalculateBaseRate(t *testing.T) {
	store := newFakePayoutStore()
	bus := &recordingBus{}
	dir := &fakeDirectory{partner: &partners.Partner{Tier: partners.TierStandard}}

	calc, err := NewCalculator(store, dir, fakeConfig{rate: "0.15", bonus: "0.02"}, bus, logger.New("test"))
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	app := testApp(1_200_000)
	if err := calc.Calculate(context.Background(), app); err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(store.inserted))
	}
	c := store.inserted[0]
	if c.AmountCents != 180_000 {
		t.Errorf("amount = %d, want 180000 (15%% of 1200000)", c.AmountCents)
	}
	if c.Currency != "EUR" || c.Rate != "0.15" {
		t.Errorf("commission = %+v", c)
	}
	if len(bus.events) != 1 || bus.events[0].EventName() != "commissions.due" {
		t.Errorf("events = %v, want one commissions.due", bus.events)
	}
}

func TestCalculatePremiumTierBonus(t *testing.T) {
	store := newFakePayoutStore()
	dir := &fakeDirectory{partner: &partners.Partner{Tier: partners.TierPremium}}

	calc, err := NewCalculator(store, dir, fakeConfig{rate: "0.15", bonus: "0.02"}, &recordingBus{}, logger.New("test"))
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	if err := calc.Calculate(context.Background(), testApp(1_000_000)); err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	c := store.inserted[0]
	if c.AmountCents != 170_000 {
		t.Errorf("amount = %d, want 170000 (17%% of 1000000)", c.AmountCents)
	}
	if c.Rate != "0.17" {
		t.Errorf("rate = %q, want 0.17", c.Rate)
	}
}

func TestCalculateRoundsToWholeCents(t *testing.T) {
	store := newFakePayoutStore()
	dir := &fakeDirectory{partner: &partners.Partner{Tier: partners.TierStandard}}

	calc, err := NewCalculator(store, dir, fakeConfig{rate: "0.15", bonus: "0.02"}, &recordingBus{}, logger.New("test"))
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	// 333 * 0.15 = 49.95, rounds to 50 cents.
	if err := calc.Calculate(context.Background(), testApp(333)); err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if got := store.inserted[0].AmountCents; got != 50 {
		t.Errorf("amount = %d, want 50", got)
	}
}

func TestCalculateIsIdempotentPerApplication(t *testing.T) {
	store := newFakePayoutStore()
	bus := &recordingBus{}
	dir := &fakeDirectory{partner: &partners.Partner{Tier: partners.TierStandard}}

	calc, err := NewCalculator(store, dir, fakeConfig{rate: "0.15", bonus: "0.02"}, bus, logger.New("test"))
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	app := testApp(1_000_000)
	if err := calc.Calculate(context.Background(), app); err != nil {
		t.Fatalf("first Calculate failed: %v", err)
	}
	if err := calc.Calculate(context.Background(), app); err != nil {
		t.Fatalf("repeat Calculate failed: %v", err)
	}

	if len(store.inserted) != 1 {
		t.Errorf("inserted = %d, want exactly 1", len(store.inserted))
	}
	if len(bus.events) != 1 {
		t.Errorf("events = %d, want exactly 1 commissions.due", len(bus.events))
	}
}

func TestCalculateWithoutPartnerUsesBaseRate(t *testing.T) {
	store := newFakePayoutStore()

	calc, err := NewCalculator(store, nil, fakeConfig{rate: "0.15", bonus: "0.02"}, &recordingBus{}, logger.New("test"))
	if err != nil {
		t.Fatalf("NewCalculator failed: %v", err)
	}

	app := testApp(1_000_000)
	app.PartnerID = uuid.Nil
	if err := calc.Calculate(context.Background(), app); err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if got := store.inserted[0].AmountCents; got != 150_000 {
		t.Errorf("amount = %d, want 150000", got)
	}
}

func TestNewCalculatorRejectsBadRates(t *testing.T) {
	if _, err := NewCalculator(newFakePayoutStore(), nil, fakeConfig{rate: "fifteen", bonus: "0.02"}, &recordingBus{}, logger.New("test")); err == nil {
		t.Error("invalid rate accepted")
	}
	if _, err := NewCalculator(newFakePayoutStore(), nil, fakeConfig{rate: "0.15", bonus: ""}, &recordingBus{}, logger.New("test")); err == nil {
		t.Error("invalid bonus accepted")
	}
}
