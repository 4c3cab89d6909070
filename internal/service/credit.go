package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CreditAccounting books credit point changes. Both operations expect to run
// inside the caller's transaction.
type CreditAccounting struct {
	users    UserRepository
	policies *Policies
}

func NewCreditAccounting(users UserRepository, policies *Policies) *CreditAccounting {
	return &CreditAccounting{
		users:    users,
		policies: policies,
	}
}

// ChargeEventCreation debits the creator of an event that has no sponsoring organisation.
func (c *CreditAccounting) ChargeEventCreation(ctx context.Context, creatorID uint, sponsored bool) error {
	if sponsored {
		return nil
	}

	user, err := c.users.FindByIDForUpdate(ctx, creatorID)
	if err != nil {
		return fmt.Errorf("c.users.FindByIDForUpdate -> %w", err)
	}

	delta, err := c.policies.Load().Credit.EventCreationCharge(user.CreditPoints, false)
	if err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}

	updated, err := c.users.AddCredit(ctx, creatorID, delta)
	if err != nil {
		return fmt.Errorf("c.users.AddCredit -> %w", err)
	}

	zap.L().Info("charged event creation",
		zap.Uint("user_id", creatorID),
		zap.Int("delta", delta),
		zap.Int("balance", updated.CreditPoints),
	)

	return nil
}

// AwardParticipation credits a participant whose participation completed.
func (c *CreditAccounting) AwardParticipation(ctx context.Context, userID uint) error {
	delta := c.policies.Load().Credit.ParticipationAward()
	if delta == 0 {
		return nil
	}

	updated, err := c.users.AddCredit(ctx, userID, delta)
	if err != nil {
		return fmt.Errorf("c.users.AddCredit -> %w", err)
	}

	zap.L().Info("awarded participation credit",
		zap.Uint("user_id", userID),
		zap.Int("delta", delta),
		zap.Int("balance", updated.CreditPoints),
	)

	return nil
}
