package domain

import (
	"fmt"
	"strconv"
)

const (
	DefaultEventCreationCost   = 10
	DefaultParticipationReward = 5
)

// CreditPolicy governs credit point bookkeeping.
type CreditPolicy struct {
	EventCreationCost   int
	ParticipationReward int
	// AllowNegativeBalance lets event creation overdraw the creator's balance
	// instead of failing with InsufficientCredit.
	AllowNegativeBalance bool
}

func DefaultCreditPolicy() CreditPolicy {
	return CreditPolicy{
		EventCreationCost:   DefaultEventCreationCost,
		ParticipationReward: DefaultParticipationReward,
	}
}

// EventCreationCharge returns the balance change for creating an event.
// Events sponsored by an organisation are free.
func (p CreditPolicy) EventCreationCharge(balance int, sponsored bool) (int, error) {
	if sponsored || p.EventCreationCost == 0 {
		return 0, nil
	}
	if !p.AllowNegativeBalance && balance < p.EventCreationCost {
		return 0, WithMetadata(CodeInsufficientCredit,
			fmt.Sprintf("creating an event costs %d credit points, balance is %d", p.EventCreationCost, balance),
			map[string]string{"required": strconv.Itoa(p.EventCreationCost), "balance": strconv.Itoa(balance)},
		)
	}
	return -p.EventCreationCost, nil
}

// ParticipationAward returns the balance change for a completed participation.
func (p CreditPolicy) ParticipationAward() int {
	return p.ParticipationReward
}
