package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationTaken    = errors.New("location already belongs to an event")
)

type Location struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Event struct {
	ID             uint      `gorm:"primaryKey"`
	Name           string    `gorm:"not null"`
	Description    string    `gorm:"not null;default:''"`
	StartsAt       time.Time `gorm:"not null"`
	EndsAt         time.Time `gorm:"not null"`
	OrganisationID *uint     `gorm:"index"`
	CreatorID      uint      `gorm:"not null;index"`
	// A location is owned by at most one event. Postgres unique indexes
	// ignore NULLs, so events without a location do not collide.
	LocationID *uint `gorm:"uniqueIndex:idx_events_location_id"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := conn(ctx, d.db).Create(&event)
	if result.Error != nil {
		if isUniqueViolation(result.Error, uniqueEventLocation) {
			return Event{}, ErrLocationTaken
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	return d.find(conn(ctx, d.db), id)
}

// FindByIDForUpdate locks the event row until the surrounding transaction ends.
func (d *EventDAO) FindByIDForUpdate(ctx context.Context, id uint) (Event, error) {
	return d.find(conn(ctx, d.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (d *EventDAO) find(db *gorm.DB, id uint) (Event, error) {
	var event Event

	result := db.First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

// Update writes the mutable columns. Creator and organisation never change.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := conn(ctx, d.db).
		Model(&Event{ID: event.ID}).
		Select("name", "description", "starts_at", "ends_at", "updated_at").
		Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Delete(&Event{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (d *EventDAO) CountByLocationID(ctx context.Context, locationID uint) (int64, error) {
	var count int64

	result := conn(ctx, d.db).Model(&Event{}).Where("location_id = ?", locationID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *EventDAO) InsertLocation(ctx context.Context, location Location) (Location, error) {
	result := conn(ctx, d.db).Create(&location)
	if result.Error != nil {
		return Location{}, result.Error
	}

	return location, nil
}

func (d *EventDAO) FindLocationByID(ctx context.Context, id uint) (Location, error) {
	var location Location

	result := conn(ctx, d.db).First(&location, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Location{}, ErrLocationNotFound
		}

		return Location{}, result.Error
	}

	return location, nil
}

func (d *EventDAO) DeleteLocation(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Delete(&Location{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLocationNotFound
	}

	return nil
}
