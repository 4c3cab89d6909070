package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/lock"
)

type JobService struct {
	tx       Transactor
	events   EventRepository
	jobs     JobRepository
	ledger   *CapacityLedger
	cascade  *CascadeManager
	locker   lock.Locker
	policies *Policies
	now      func() time.Time
}

func NewJobService(
	tx Transactor,
	events EventRepository,
	jobs JobRepository,
	ledger *CapacityLedger,
	cascade *CascadeManager,
	locker lock.Locker,
	policies *Policies,
) *JobService {
	return &JobService{
		tx:       tx,
		events:   events,
		jobs:     jobs,
		ledger:   ledger,
		cascade:  cascade,
		locker:   locker,
		policies: policies,
		now:      time.Now,
	}
}

func (s *JobService) CreateJob(ctx context.Context, actor domain.Actor, eventID uint, spec domain.JobSpec) (domain.Job, error) {
	spec, err := domain.NormalizeJobSpec(spec)
	if err != nil {
		return domain.Job{}, err
	}

	var job domain.Job
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("s.events.FindByID -> %w", err)
		}

		err = s.policies.Load().Authorization.Authorize(actor, domain.ActionCreateJob, domain.Resource{Event: event})
		if err != nil {
			return err
		}

		job, err = createJob(ctx, s.jobs, event.ID, spec, s.now())
		return err
	})
	if err != nil {
		return domain.Job{}, err
	}

	return job, nil
}

func (s *JobService) UpdateJob(ctx context.Context, actor domain.Actor, jobID uint, patch domain.JobPatch) (domain.Job, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Job{}, domain.InvalidInputError("name", "must not be empty")
		}
		patch.Name = &name
	}
	if err := domain.ValidateTotalPositions(patch.TotalPositions); err != nil {
		return domain.Job{}, err
	}

	// A capacity change competes with concurrent accepts on the same job.
	if patch.TotalPositions != nil {
		unlock, err := s.locker.Lock(ctx, lock.JobKey(jobID))
		if err != nil {
			return domain.Job{}, fmt.Errorf("s.locker.Lock -> %w", err)
		}
		defer unlock()
	}

	var updated domain.Job
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := s.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return fmt.Errorf("s.jobs.FindByIDForUpdate -> %w", err)
		}

		event, err := s.events.FindByID(ctx, job.EventID)
		if err != nil {
			return fmt.Errorf("s.events.FindByID -> %w", err)
		}

		err = s.policies.Load().Authorization.Authorize(actor, domain.ActionUpdateJob, domain.Resource{Event: event})
		if err != nil {
			return err
		}

		if job.IsDeleted() {
			return domain.ErrJobUnavailable
		}

		if patch.Name != nil && *patch.Name != job.Name {
			if err = ensureNameFree(ctx, s.jobs, job.EventID, *patch.Name, job.ID); err != nil {
				return err
			}
			job.Name = *patch.Name
		}

		if patch.Description != nil {
			job.Description = *patch.Description
		}

		if patch.TotalPositions != nil {
			c, err := s.ledger.Capacity(ctx, job)
			if err != nil {
				return fmt.Errorf("s.ledger.Capacity -> %w", err)
			}
			if !c.CanShrinkTo(*patch.TotalPositions) {
				return domain.ShrinkBelowOccupancy(job.ID, c, *patch.TotalPositions)
			}
			total := *patch.TotalPositions
			job.TotalPositions = &total
		}

		job.UpdatedAt = s.now().UTC()
		if _, err = s.jobs.Update(ctx, job); err != nil {
			return fmt.Errorf("s.jobs.Update -> %w", err)
		}

		updated, err = s.jobs.FindByID(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("s.jobs.FindByID -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Job{}, err
	}

	zap.L().Info("job updated", zap.Uint("job_id", updated.ID), zap.Uint("actor_id", actor.UserID))

	return updated, nil
}

func (s *JobService) DeleteJob(ctx context.Context, actor domain.Actor, jobID uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		job, err := s.jobs.FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return fmt.Errorf("s.jobs.FindByIDForUpdate -> %w", err)
		}

		event, err := s.events.FindByID(ctx, job.EventID)
		if err != nil {
			return fmt.Errorf("s.events.FindByID -> %w", err)
		}

		err = s.policies.Load().Authorization.Authorize(actor, domain.ActionDeleteJob, domain.Resource{Event: event})
		if err != nil {
			return err
		}

		if job.IsDeleted() {
			return domain.ErrJobUnavailable
		}

		if err = s.cascade.DeleteJob(ctx, job); err != nil {
			return fmt.Errorf("s.cascade.DeleteJob -> %w", err)
		}

		return nil
	})
}

// GetJob hides soft-deleted jobs unless includeDeleted is set.
func (s *JobService) GetJob(ctx context.Context, id uint, includeDeleted bool) (domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("s.jobs.FindByID -> %w", err)
	}

	if job.IsDeleted() && !includeDeleted {
		return domain.Job{}, domain.NotFoundError("job", id)
	}

	return job, nil
}

func (s *JobService) ListJobs(ctx context.Context, eventID uint, includeDeleted bool) ([]domain.Job, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	jobs, err := s.jobs.FindByEventID(ctx, eventID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("s.jobs.FindByEventID -> %w", err)
	}

	return jobs, nil
}

// Capacity reports how many of the job's positions are taken.
func (s *JobService) Capacity(ctx context.Context, jobID uint) (domain.Capacity, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return domain.Capacity{}, fmt.Errorf("s.jobs.FindByID -> %w", err)
	}

	return s.ledger.Capacity(ctx, job)
}

// createJob stores a live job for the event and links its required skills.
func createJob(ctx context.Context, jobs JobRepository, eventID uint, spec domain.JobSpec, now time.Time) (domain.Job, error) {
	if err := ensureNameFree(ctx, jobs, eventID, spec.Name, 0); err != nil {
		return domain.Job{}, err
	}

	now = now.UTC()
	job, err := jobs.Create(ctx, domain.Job{
		EventID:        eventID,
		Name:           spec.Name,
		Description:    spec.Description,
		TotalPositions: spec.TotalPositions,
		Status:         domain.JobActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return domain.Job{}, fmt.Errorf("jobs.Create -> %w", err)
	}

	if len(spec.RequiredSkills) > 0 {
		skills, err := jobs.AttachSkills(ctx, job.ID, dedupe(spec.RequiredSkills))
		if err != nil {
			return domain.Job{}, fmt.Errorf("jobs.AttachSkills -> %w", err)
		}
		job.RequiredSkills = skills
	}

	return job, nil
}

func ensureNameFree(ctx context.Context, jobs JobRepository, eventID uint, name string, exceptID uint) error {
	taken, err := jobs.NameTaken(ctx, eventID, name, exceptID)
	if err != nil {
		return fmt.Errorf("jobs.NameTaken -> %w", err)
	}
	if taken {
		return domain.WithMetadata(domain.CodeJobNameTaken,
			fmt.Sprintf("event already has a job named %q", name),
			map[string]string{"name": name},
		)
	}

	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if _, ok := seen[n]; ok || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
