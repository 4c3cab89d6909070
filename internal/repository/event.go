package repository

import (
	"context"
	"fmt"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindByIDForUpdate(ctx context.Context, id uint) (dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id uint) error
	CountByLocationID(ctx context.Context, locationID uint) (int64, error)
	InsertLocation(ctx context.Context, location dao.Location) (dao.Location, error)
	FindLocationByID(ctx context.Context, id uint) (dao.Location, error)
	DeleteLocation(ctx context.Context, id uint) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", translate(err, 0))
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByIDForUpdate -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", translate(err, event.ID))
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", translate(err, id))
	}

	return nil
}

// LocationOwned reports whether some event already references the location.
func (r *EventRepository) LocationOwned(ctx context.Context, locationID uint) (bool, error) {
	count, err := r.dao.CountByLocationID(ctx, locationID)
	if err != nil {
		return false, fmt.Errorf("r.dao.CountByLocationID -> %w", err)
	}

	return count > 0, nil
}

func (r *EventRepository) CreateLocation(ctx context.Context, spec domain.LocationSpec) (domain.Location, error) {
	created, err := r.dao.InsertLocation(ctx, dao.Location{
		Name:      spec.Name,
		Latitude:  spec.Latitude,
		Longitude: spec.Longitude,
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("r.dao.InsertLocation -> %w", err)
	}

	return locationDaoToDomain(created), nil
}

func (r *EventRepository) FindLocationByID(ctx context.Context, id uint) (domain.Location, error) {
	found, err := r.dao.FindLocationByID(ctx, id)
	if err != nil {
		return domain.Location{}, fmt.Errorf("r.dao.FindLocationByID -> %w", translate(err, id))
	}

	return locationDaoToDomain(found), nil
}

func (r *EventRepository) DeleteLocation(ctx context.Context, id uint) error {
	if err := r.dao.DeleteLocation(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteLocation -> %w", translate(err, id))
	}

	return nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		StartsAt:       e.Start,
		EndsAt:         e.End,
		OrganisationID: e.OrganisationID,
		CreatorID:      e.CreatorID,
		LocationID:     e.LocationID,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Start:          e.StartsAt,
		End:            e.EndsAt,
		OrganisationID: e.OrganisationID,
		CreatorID:      e.CreatorID,
		LocationID:     e.LocationID,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func locationDaoToDomain(l dao.Location) domain.Location {
	return domain.Location{
		ID:        l.ID,
		Name:      l.Name,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}
