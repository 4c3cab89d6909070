package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrParticipationNotFound  = errors.New("participation not found")
	ErrParticipationDuplicate = errors.New("user already applied to this job")
)

type Participation struct {
	ID    uint `gorm:"primaryKey"`
	JobID uint `gorm:"not null;uniqueIndex:idx_participations_job_user;index:idx_participations_job_state"`

	// A job with participations can only be soft-deleted.
	Job *Job `gorm:"foreignKey:JobID;constraint:OnDelete:RESTRICT"`

	UserID    uint  `gorm:"not null;uniqueIndex:idx_participations_job_user;index"`
	State     int   `gorm:"not null;index:idx_participations_job_state"`
	RatingID  *uint `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ParticipationDAO struct {
	db *gorm.DB
}

func NewParticipationDAO(db *gorm.DB) *ParticipationDAO {
	return &ParticipationDAO{
		db: db,
	}
}

func (d *ParticipationDAO) Insert(ctx context.Context, p Participation) (Participation, error) {
	result := conn(ctx, d.db).Create(&p)
	if result.Error != nil {
		if isUniqueViolation(result.Error, uniqueParticipation) {
			return Participation{}, ErrParticipationDuplicate
		}

		return Participation{}, result.Error
	}

	return p, nil
}

func (d *ParticipationDAO) FindByID(ctx context.Context, id uint) (Participation, error) {
	return d.first(conn(ctx, d.db).Where("id = ?", id))
}

// FindByIDForUpdate locks the participation row until the surrounding
// transaction ends.
func (d *ParticipationDAO) FindByIDForUpdate(ctx context.Context, id uint) (Participation, error) {
	return d.first(conn(ctx, d.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (d *ParticipationDAO) FindByJobAndUser(ctx context.Context, jobID, userID uint) (Participation, error) {
	return d.first(conn(ctx, d.db).Where("job_id = ? AND user_id = ?", jobID, userID))
}

func (d *ParticipationDAO) first(query *gorm.DB) (Participation, error) {
	var p Participation

	result := query.First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participation{}, ErrParticipationNotFound
		}

		return Participation{}, result.Error
	}

	return p, nil
}

func (d *ParticipationDAO) FindByJobID(ctx context.Context, jobID uint) ([]Participation, error) {
	var ps []Participation

	result := conn(ctx, d.db).Where("job_id = ?", jobID).Order("id").Find(&ps)
	if result.Error != nil {
		return nil, result.Error
	}

	return ps, nil
}

func (d *ParticipationDAO) UpdateState(ctx context.Context, id uint, state int, at time.Time) (Participation, error) {
	result := conn(ctx, d.db).
		Model(&Participation{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"state": state, "updated_at": at})
	if result.Error != nil {
		return Participation{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Participation{}, ErrParticipationNotFound
	}

	return d.FindByID(ctx, id)
}

// CountByJobID counts participations of the job, optionally restricted to states.
func (d *ParticipationDAO) CountByJobID(ctx context.Context, jobID uint, states ...int) (int64, error) {
	var count int64

	query := conn(ctx, d.db).Model(&Participation{}).Where("job_id = ?", jobID)
	if len(states) > 0 {
		query = query.Where("state IN ?", states)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// TransitionByJobID moves every participation of the job sitting in one of
// from to state to, returning how many rows changed.
func (d *ParticipationDAO) TransitionByJobID(ctx context.Context, jobID uint, from []int, to int, at time.Time) (int64, error) {
	result := conn(ctx, d.db).
		Model(&Participation{}).
		Where("job_id = ? AND state IN ?", jobID, from).
		UpdateColumns(map[string]any{"state": to, "updated_at": at})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
