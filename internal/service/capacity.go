package service

import (
	"context"
	"fmt"

	"github.com/happy2help/h2h-api/internal/domain"
)

// CapacityLedger derives job occupancy from stored participations. It keeps
// no state of its own; callers that act on its answers must ask within the
// transaction that writes.
type CapacityLedger struct {
	participations ParticipationRepository
}

func NewCapacityLedger(participations ParticipationRepository) *CapacityLedger {
	return &CapacityLedger{
		participations: participations,
	}
}

// OccupiedCount counts the job's Accepted participations.
func (l *CapacityLedger) OccupiedCount(ctx context.Context, jobID uint) (int, error) {
	n, err := l.participations.Count(ctx, jobID, domain.StateAccepted)
	if err != nil {
		return 0, fmt.Errorf("l.participations.Count -> %w", err)
	}

	return n, nil
}

func (l *CapacityLedger) Capacity(ctx context.Context, job domain.Job) (domain.Capacity, error) {
	occupied, err := l.OccupiedCount(ctx, job.ID)
	if err != nil {
		return domain.Capacity{}, err
	}

	return domain.CapacityOf(job, occupied), nil
}

func (l *CapacityLedger) CanAccept(ctx context.Context, job domain.Job) (bool, error) {
	c, err := l.Capacity(ctx, job)
	if err != nil {
		return false, err
	}

	return c.CanAccept(), nil
}

func (l *CapacityLedger) CanShrinkCapacity(ctx context.Context, job domain.Job, newTotal int) (bool, error) {
	c, err := l.Capacity(ctx, job)
	if err != nil {
		return false, err
	}

	return c.CanShrinkTo(newTotal), nil
}
