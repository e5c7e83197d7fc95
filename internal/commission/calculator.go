package commission

import (
	"context"
	"fmt"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/events"
	"admissions_portal_backend/internal/partners"
	"admissions_portal_backend/platform/config"
	"admissions_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const currency = "EUR"

// PartnerDirectory resolves the partner's commission tier.
type PartnerDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*partners.Partner, error)
}

// PayoutStore records calculated payouts. Implemented by Repository; Insert
// reports false when the application already has one.
type PayoutStore interface {
	Insert(ctx context.Context, c *Commission) (bool, error)
}

// Calculator computes partner payouts: base rate times tuition, with a tier
// bonus for premium partners. Implements the applications service's
// CommissionCalculator.
type Calculator struct {
	repo      PayoutStore
	dir       PartnerDirectory
	rate      decimal.Decimal
	tierBonus decimal.Decimal
	bus       events.Bus
	log       *logger.Logger
}

// NewCalculator parses the configured rates and wires the calculator.
func NewCalculator(repo PayoutStore, dir PartnerDirectory, cfg config.CommissionConfig, bus events.Bus, log *logger.Logger) (*Calculator, error) {
	rate, err := decimal.NewFromString(cfg.GetCommissionRate())
	if err != nil {
		return nil, fmt.Errorf("invalid commission rate %q: %w", cfg.GetCommissionRate(), err)
	}
	bonus, err := decimal.NewFromString(cfg.GetCommissionTierBonus())
	if err != nil {
		return nil, fmt.Errorf("invalid commission tier bonus %q: %w", cfg.GetCommissionTierBonus(), err)
	}

	return &Calculator{
		repo:      repo,
		dir:       dir,
		rate:      rate,
		tierBonus: bonus,
		bus:       bus,
		log:       log,
	}, nil
}

// Calculate records the payout for an application entering the commission
// stage. A repeated call for the same application is a no-op; the unique
// constraint on application_id keeps the payout exactly-once.
func (c *Calculator) Calculate(ctx context.Context, app *domain.Application) error {
	rate := c.rate
	if c.dir != nil && app.PartnerID != uuid.Nil {
		partner, err := c.dir.GetByID(ctx, app.PartnerID)
		if err != nil {
			c.log.Warn("commission tier lookup failed, using base rate",
				"application_id", app.ID, "error", err)
		} else if partner.Tier == partners.TierPremium {
			rate = rate.Add(c.tierBonus)
		}
	}

	amountCents := decimal.NewFromInt(app.TuitionCents).Mul(rate).Round(0).IntPart()

	inserted, err := c.repo.Insert(ctx, &Commission{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		PartnerID:     app.PartnerID,
		AmountCents:   amountCents,
		Rate:          rate.String(),
		Currency:      currency,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		c.log.Info("commission already calculated", "application_id", app.ID)
		return nil
	}

	c.bus.Publish(ctx, events.CommissionDue{
		BaseEvent:     events.NewBaseEvent(),
		ApplicationID: app.ID,
		PartnerID:     app.PartnerID,
		AmountCents:   amountCents,
		Currency:      currency,
	})

	return nil
}
