package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/happy2help/h2h-api/internal/domain"
)

var holdingStates = []domain.ParticipationState{domain.StateApplied, domain.StateAccepted}

// CascadeManager applies the cross-entity effects of deleting events and
// jobs. Every cascade runs in one transaction; a failure leaves nothing behind.
// It does not authorize: callers do that before asking for a cascade.
type CascadeManager struct {
	tx             Transactor
	events         EventRepository
	jobs           JobRepository
	participations ParticipationRepository
	now            func() time.Time
}

func NewCascadeManager(tx Transactor, events EventRepository, jobs JobRepository, participations ParticipationRepository) *CascadeManager {
	return &CascadeManager{
		tx:             tx,
		events:         events,
		jobs:           jobs,
		participations: participations,
		now:            time.Now,
	}
}

// DeleteJob removes job from its event, refusing to remove the last live job.
// The event row is locked before counting so deletions of sibling jobs are
// counted one after the other.
func (m *CascadeManager) DeleteJob(ctx context.Context, job domain.Job) error {
	return m.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := m.events.FindByIDForUpdate(ctx, job.EventID); err != nil {
			return fmt.Errorf("m.events.FindByIDForUpdate -> %w", err)
		}

		active, err := m.jobs.CountActive(ctx, job.EventID)
		if err != nil {
			return fmt.Errorf("m.jobs.CountActive -> %w", err)
		}
		if active <= 1 {
			return domain.WithMetadata(domain.CodeLastJobViolation,
				fmt.Sprintf("job %d is the last job of event %d", job.ID, job.EventID),
				map[string]string{"event_id": strconv.FormatUint(uint64(job.EventID), 10)},
			)
		}

		return m.removeJob(ctx, job)
	})
}

// DeleteEvent removes the event, its location and every live job. The
// last-job rule does not apply since the event itself goes away.
func (m *CascadeManager) DeleteEvent(ctx context.Context, event domain.Event) error {
	return m.tx.WithinTx(ctx, func(ctx context.Context) error {
		jobs, err := m.jobs.FindByEventID(ctx, event.ID, false)
		if err != nil {
			return fmt.Errorf("m.jobs.FindByEventID -> %w", err)
		}

		for _, job := range jobs {
			if err = m.removeJob(ctx, job); err != nil {
				return err
			}
		}

		if err = m.events.Delete(ctx, event.ID); err != nil {
			return fmt.Errorf("m.events.Delete -> %w", err)
		}

		if event.LocationID != nil {
			if err = m.events.DeleteLocation(ctx, *event.LocationID); err != nil {
				return fmt.Errorf("m.events.DeleteLocation -> %w", err)
			}
		}

		zap.L().Info("event deleted",
			zap.Uint("event_id", event.ID),
			zap.Int("jobs", len(jobs)),
		)

		return nil
	})
}

// removeJob hard-deletes a job nobody applied to. Otherwise the job is
// soft-deleted and its pending and accepted participations are canceled.
// The job row stays locked until the cascade commits, so no application
// lands between the count and the delete.
func (m *CascadeManager) removeJob(ctx context.Context, job domain.Job) error {
	job, err := m.jobs.FindByIDForUpdate(ctx, job.ID)
	switch {
	case isNotFound(err):
		return nil
	case err != nil:
		return fmt.Errorf("m.jobs.FindByIDForUpdate -> %w", err)
	case job.IsDeleted():
		return nil
	}

	count, err := m.participations.Count(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("m.participations.Count -> %w", err)
	}

	if count == 0 {
		if err = m.jobs.Delete(ctx, job.ID); err != nil {
			return fmt.Errorf("m.jobs.Delete -> %w", err)
		}

		zap.L().Info("job deleted", zap.Uint("job_id", job.ID))
		return nil
	}

	now := m.now().UTC()
	if _, err = m.jobs.Update(ctx, job.SoftDelete(now)); err != nil {
		return fmt.Errorf("m.jobs.Update -> %w", err)
	}

	canceled, err := m.participations.TransitionAll(ctx, job.ID, holdingStates, domain.StateCanceled, now)
	if err != nil {
		return fmt.Errorf("m.participations.TransitionAll -> %w", err)
	}

	zap.L().Info("job soft-deleted",
		zap.Uint("job_id", job.ID),
		zap.Int("participations", count),
		zap.Int("canceled", canceled),
	)

	return nil
}
