package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/happy2help/h2h-api/internal/domain"
)

type EventService struct {
	tx       Transactor
	events   EventRepository
	jobs     JobRepository
	orgs     OrganisationRepository
	cascade  *CascadeManager
	credit   *CreditAccounting
	policies *Policies
	now      func() time.Time
}

func NewEventService(
	tx Transactor,
	events EventRepository,
	jobs JobRepository,
	orgs OrganisationRepository,
	cascade *CascadeManager,
	credit *CreditAccounting,
	policies *Policies,
) *EventService {
	return &EventService{
		tx:       tx,
		events:   events,
		jobs:     jobs,
		orgs:     orgs,
		cascade:  cascade,
		credit:   credit,
		policies: policies,
		now:      time.Now,
	}
}

// CreateEvent stores the event with its location and jobs, charging the
// creator when no organisation sponsors it. Without an explicit job list the
// event gets one job named after itself.
func (s *EventService) CreateEvent(ctx context.Context, actor domain.Actor, in domain.CreateEventInput) (domain.EventDetails, error) {
	in, err := domain.NormalizeCreateEventInput(in)
	if err != nil {
		return domain.EventDetails{}, err
	}

	now := s.now().UTC()
	draft := domain.Event{
		Name:           in.Name,
		Description:    in.Description,
		Start:          in.Start,
		End:            in.End,
		OrganisationID: in.OrganisationID,
		CreatorID:      actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.policies.Load().Authorization.Authorize(actor, domain.ActionCreateEvent, domain.Resource{Event: draft})
	if err != nil {
		return domain.EventDetails{}, err
	}

	specs := in.Jobs
	if len(specs) == 0 {
		specs = []domain.JobSpec{domain.DefaultJob(in.Name, in.Description)}
	}

	var details domain.EventDetails
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if draft.HasOrganisation() {
			if _, err := s.orgs.FindByID(ctx, *draft.OrganisationID); err != nil {
				return fmt.Errorf("s.orgs.FindByID -> %w", err)
			}
		}

		if err := s.credit.ChargeEventCreation(ctx, actor.UserID, draft.HasOrganisation()); err != nil {
			return fmt.Errorf("s.credit.ChargeEventCreation -> %w", err)
		}

		location, err := s.resolveLocation(ctx, in)
		if err != nil {
			return err
		}
		if location != nil {
			draft.LocationID = &location.ID
		}

		event, err := s.events.Create(ctx, draft)
		if err != nil {
			return fmt.Errorf("s.events.Create -> %w", err)
		}

		jobs := make([]domain.Job, 0, len(specs))
		for _, spec := range specs {
			job, err := createJob(ctx, s.jobs, event.ID, spec, now)
			if err != nil {
				return err
			}
			jobs = append(jobs, job)
		}

		details = domain.EventDetails{Event: event, Location: location, Jobs: jobs}
		return nil
	})
	if err != nil {
		return domain.EventDetails{}, err
	}

	zap.L().Info("event created",
		zap.Uint("event_id", details.Event.ID),
		zap.Uint("creator_id", actor.UserID),
		zap.Int("jobs", len(details.Jobs)),
	)

	return details, nil
}

// resolveLocation returns the referenced location if no other event owns it,
// creates one from a spec, or returns nil when neither is given.
func (s *EventService) resolveLocation(ctx context.Context, in domain.CreateEventInput) (*domain.Location, error) {
	switch {
	case in.LocationID != nil:
		location, err := s.events.FindLocationByID(ctx, *in.LocationID)
		if err != nil {
			return nil, fmt.Errorf("s.events.FindLocationByID -> %w", err)
		}

		owned, err := s.events.LocationOwned(ctx, location.ID)
		if err != nil {
			return nil, fmt.Errorf("s.events.LocationOwned -> %w", err)
		}
		if owned {
			return nil, domain.ErrLocationInUse
		}

		return &location, nil

	case in.Location != nil:
		location, err := s.events.CreateLocation(ctx, *in.Location)
		if err != nil {
			return nil, fmt.Errorf("s.events.CreateLocation -> %w", err)
		}

		return &location, nil
	}

	return nil, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, actor domain.Actor, eventID uint, patch domain.EventPatch) (domain.Event, error) {
	var updated domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("s.events.FindByID -> %w", err)
		}

		err = s.policies.Load().Authorization.Authorize(actor, domain.ActionUpdateEvent, domain.Resource{Event: event})
		if err != nil {
			return err
		}

		patched, err := event.ApplyPatch(patch, s.now())
		if err != nil {
			return err
		}

		updated, err = s.events.Update(ctx, patched)
		if err != nil {
			return fmt.Errorf("s.events.Update -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, actor domain.Actor, eventID uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("s.events.FindByID -> %w", err)
		}

		err = s.policies.Load().Authorization.Authorize(actor, domain.ActionDeleteEvent, domain.Resource{Event: event})
		if err != nil {
			return err
		}

		if err = s.cascade.DeleteEvent(ctx, event); err != nil {
			return fmt.Errorf("s.cascade.DeleteEvent -> %w", err)
		}

		return nil
	})
}

func (s *EventService) GetEvent(ctx context.Context, eventID uint) (domain.EventDetails, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return domain.EventDetails{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	details := domain.EventDetails{Event: event}

	if event.LocationID != nil {
		location, err := s.events.FindLocationByID(ctx, *event.LocationID)
		if err != nil && !isNotFound(err) {
			return domain.EventDetails{}, fmt.Errorf("s.events.FindLocationByID -> %w", err)
		}
		if err == nil {
			details.Location = &location
		}
	}

	details.Jobs, err = s.jobs.FindByEventID(ctx, event.ID, false)
	if err != nil {
		return domain.EventDetails{}, fmt.Errorf("s.jobs.FindByEventID -> %w", err)
	}

	return details, nil
}
