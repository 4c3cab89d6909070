package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/lock"
)

type ParticipationService struct {
	tx             Transactor
	events         EventRepository
	jobs           JobRepository
	participations ParticipationRepository
	ledger         *CapacityLedger
	credit         *CreditAccounting
	locker         lock.Locker
	policies       *Policies
	now            func() time.Time
}

func NewParticipationService(
	tx Transactor,
	events EventRepository,
	jobs JobRepository,
	participations ParticipationRepository,
	ledger *CapacityLedger,
	credit *CreditAccounting,
	locker lock.Locker,
	policies *Policies,
) *ParticipationService {
	return &ParticipationService{
		tx:             tx,
		events:         events,
		jobs:           jobs,
		participations: participations,
		ledger:         ledger,
		credit:         credit,
		locker:         locker,
		policies:       policies,
		now:            time.Now,
	}
}

// CreateParticipation applies the actor to a job. A previous canceled or
// declined application for the same job is reopened instead of duplicated.
// The job row is share-locked so a concurrent deletion either sees the
// application or refuses it.
func (s *ParticipationService) CreateParticipation(ctx context.Context, actor domain.Actor, jobID uint) (domain.Participation, error) {
	var created domain.Participation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := s.jobs.FindByIDForShare(ctx, jobID)
		if err != nil {
			return fmt.Errorf("s.jobs.FindByIDForShare -> %w", err)
		}
		if job.IsDeleted() {
			return domain.ErrJobUnavailable
		}

		policy := s.policies.Load()
		err = policy.Authorization.Authorize(actor, domain.ActionApply, domain.Resource{Participant: actor.UserID})
		if err != nil {
			return err
		}

		now := s.now().UTC()
		existing, err := s.participations.FindByJobAndUser(ctx, job.ID, actor.UserID)
		switch {
		case isNotFound(err):
			created, err = s.participations.Create(ctx, domain.Participation{
				JobID:     job.ID,
				UserID:    actor.UserID,
				State:     domain.StateApplied,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("s.participations.Create -> %w", err)
			}
			return nil

		case err != nil:
			return fmt.Errorf("s.participations.FindByJobAndUser -> %w", err)
		}

		if existing.State != domain.StateCanceled && existing.State != domain.StateDeclined {
			return domain.ErrDuplicateApplication
		}

		reopened, _, err := policy.Transitions.Transition(existing, domain.StateApplied, now)
		if err != nil {
			return err
		}

		created, err = s.participations.UpdateState(ctx, reopened)
		if err != nil {
			return fmt.Errorf("s.participations.UpdateState -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Participation{}, err
	}

	zap.L().Info("participation applied",
		zap.Uint("participation_id", created.ID),
		zap.Uint("job_id", created.JobID),
		zap.Uint("user_id", created.UserID),
	)

	return created, nil
}

// UpdateParticipationState moves a participation to target. Inside the
// transaction the job row is locked first, then the participation row, so
// concurrent changes to one participation apply one after the other against
// its latest state. Accepting also holds the job lock so occupancy is counted
// against committed state only.
func (s *ParticipationService) UpdateParticipationState(
	ctx context.Context,
	actor domain.Actor,
	participationID uint,
	target domain.ParticipationState,
) (domain.Participation, error) {
	action, err := domain.ActionFor(target)
	if err != nil {
		return domain.Participation{}, err
	}

	current, err := s.participations.FindByID(ctx, participationID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.participations.FindByID -> %w", err)
	}

	accepting := target == domain.StateAccepted
	if accepting {
		unlock, err := s.locker.Lock(ctx, lock.JobKey(current.JobID))
		if err != nil {
			return domain.Participation{}, fmt.Errorf("s.locker.Lock -> %w", err)
		}
		defer unlock()
	}

	var (
		result  domain.Participation
		from    domain.ParticipationState
		changed bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := s.loadJob(ctx, current.JobID, accepting)
		if err != nil {
			return err
		}

		p, err := s.participations.FindByIDForUpdate(ctx, participationID)
		if err != nil {
			return fmt.Errorf("s.participations.FindByIDForUpdate -> %w", err)
		}
		from = p.State

		policy := s.policies.Load()
		res := domain.Resource{Participant: p.UserID}
		if action != domain.ActionApply && action != domain.ActionCancelParticipation {
			res.Event, err = s.events.FindByID(ctx, job.EventID)
			if err != nil {
				return fmt.Errorf("s.events.FindByID -> %w", err)
			}
		}
		if err = policy.Authorization.Authorize(actor, action, res); err != nil {
			return err
		}

		if job.IsDeleted() && target != domain.StateCanceled {
			return domain.ErrJobUnavailable
		}

		next, ok, err := policy.Transitions.Transition(p, target, s.now())
		if err != nil {
			return err
		}
		if !ok {
			result = p
			return nil
		}

		if accepting {
			c, err := s.ledger.Capacity(ctx, job)
			if err != nil {
				return fmt.Errorf("s.ledger.Capacity -> %w", err)
			}
			if !c.CanAccept() {
				return domain.CapacityExceeded(job.ID, c)
			}
		}

		result, err = s.participations.UpdateState(ctx, next)
		if err != nil {
			return fmt.Errorf("s.participations.UpdateState -> %w", err)
		}

		if target == domain.StateParticipated {
			if err = s.credit.AwardParticipation(ctx, p.UserID); err != nil {
				return fmt.Errorf("s.credit.AwardParticipation -> %w", err)
			}
		}

		changed = true
		return nil
	})
	if err != nil {
		return domain.Participation{}, err
	}

	if changed {
		zap.L().Info("participation state changed",
			zap.Uint("participation_id", result.ID),
			zap.Stringer("from", from),
			zap.Stringer("to", result.State),
			zap.Uint("actor_id", actor.UserID),
		)
	}

	return result, nil
}

// loadJob locks the job row: exclusively when forUpdate is set, shared
// otherwise.
func (s *ParticipationService) loadJob(ctx context.Context, jobID uint, forUpdate bool) (domain.Job, error) {
	if forUpdate {
		job, err := s.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return domain.Job{}, fmt.Errorf("s.jobs.FindByIDForUpdate -> %w", err)
		}
		return job, nil
	}

	job, err := s.jobs.FindByIDForShare(ctx, jobID)
	if err != nil {
		return domain.Job{}, fmt.Errorf("s.jobs.FindByIDForShare -> %w", err)
	}

	return job, nil
}

func (s *ParticipationService) GetParticipation(ctx context.Context, id uint) (domain.Participation, error) {
	p, err := s.participations.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.participations.FindByID -> %w", err)
	}

	return p, nil
}

func (s *ParticipationService) ListParticipations(ctx context.Context, jobID uint) ([]domain.Participation, error) {
	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		return nil, fmt.Errorf("s.jobs.FindByID -> %w", err)
	}

	ps, err := s.participations.FindByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("s.participations.FindByJobID -> %w", err)
	}

	return ps, nil
}
