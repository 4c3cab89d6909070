package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrJobNameExists = errors.New("job name already used in this event")
)

const (
	JobStatusActive      = "active"
	JobStatusSoftDeleted = "soft_deleted"
)

// Job rows keep their event_id after the event is gone so that soft-deleted
// jobs stay reachable from their participations.
type Job struct {
	ID      uint `gorm:"primaryKey"`
	EventID uint `gorm:"not null;index;uniqueIndex:idx_jobs_event_name,where:deleted_at IS NULL"`
	// Names are unique among the live jobs of an event.
	Name           string `gorm:"not null;uniqueIndex:idx_jobs_event_name,where:deleted_at IS NULL"`
	Description    string `gorm:"not null;default:''"`
	TotalPositions *int
	Status         string `gorm:"not null;default:active;index"`
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Skill struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex:idx_skills_name;not null"`
}

type RequiresSkill struct {
	JobID   uint `gorm:"primaryKey"`
	SkillID uint `gorm:"primaryKey;index"`
}

func (RequiresSkill) TableName() string {
	return "requires_skill"
}

type JobDAO struct {
	db *gorm.DB
}

func NewJobDAO(db *gorm.DB) *JobDAO {
	return &JobDAO{
		db: db,
	}
}

func (d *JobDAO) Insert(ctx context.Context, job Job) (Job, error) {
	result := conn(ctx, d.db).Create(&job)
	if result.Error != nil {
		if isUniqueViolation(result.Error, uniqueJobEventName) {
			return Job{}, ErrJobNameExists
		}

		return Job{}, result.Error
	}

	return job, nil
}

// FindByID returns the job whatever its status.
func (d *JobDAO) FindByID(ctx context.Context, id uint) (Job, error) {
	return d.find(conn(ctx, d.db), id)
}

// FindByIDForUpdate locks the job row until the surrounding transaction ends.
func (d *JobDAO) FindByIDForUpdate(ctx context.Context, id uint) (Job, error) {
	return d.find(conn(ctx, d.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// FindByIDForShare blocks writers of the job row, but not other readers,
// until the surrounding transaction ends.
func (d *JobDAO) FindByIDForShare(ctx context.Context, id uint) (Job, error) {
	return d.find(conn(ctx, d.db).Clauses(clause.Locking{Strength: "SHARE"}), id)
}

func (d *JobDAO) find(db *gorm.DB, id uint) (Job, error) {
	var job Job

	result := db.First(&job, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Job{}, ErrJobNotFound
		}

		return Job{}, result.Error
	}

	return job, nil
}

func (d *JobDAO) FindByEventID(ctx context.Context, eventID uint, includeDeleted bool) ([]Job, error) {
	var jobs []Job

	query := conn(ctx, d.db).Where("event_id = ?", eventID)
	if !includeDeleted {
		query = query.Where("status = ?", JobStatusActive)
	}

	result := query.Order("id").Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}

	return jobs, nil
}

func (d *JobDAO) CountActiveByEventID(ctx context.Context, eventID uint) (int64, error) {
	var count int64

	result := conn(ctx, d.db).
		Model(&Job{}).
		Where("event_id = ? AND status = ?", eventID, JobStatusActive).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// NameTaken reports whether a live job of the event other than exceptID uses name.
func (d *JobDAO) NameTaken(ctx context.Context, eventID uint, name string, exceptID uint) (bool, error) {
	var count int64

	result := conn(ctx, d.db).
		Model(&Job{}).
		Where("event_id = ? AND name = ? AND status = ? AND id <> ?", eventID, name, JobStatusActive, exceptID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// Update writes every mutable column, including a nil TotalPositions.
func (d *JobDAO) Update(ctx context.Context, job Job) (Job, error) {
	result := conn(ctx, d.db).
		Model(&Job{ID: job.ID}).
		Select("name", "description", "total_positions", "status", "deleted_at", "updated_at").
		Updates(&job)
	if result.Error != nil {
		if isUniqueViolation(result.Error, uniqueJobEventName) {
			return Job{}, ErrJobNameExists
		}

		return Job{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Job{}, ErrJobNotFound
	}

	return d.FindByID(ctx, job.ID)
}

// Delete removes the job row and its skill links.
func (d *JobDAO) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, d.db)

	if err := db.Where("job_id = ?", id).Delete(&RequiresSkill{}).Error; err != nil {
		return err
	}

	result := db.Delete(&Job{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// GetOrCreateSkill returns the skill called name, creating it when missing.
func (d *JobDAO) GetOrCreateSkill(ctx context.Context, name string) (Skill, error) {
	db := conn(ctx, d.db)

	skill := Skill{Name: name}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&skill)
	if result.Error != nil {
		return Skill{}, result.Error
	}

	if skill.ID == 0 {
		if err := db.Where("name = ?", name).First(&skill).Error; err != nil {
			return Skill{}, err
		}
	}

	return skill, nil
}

func (d *JobDAO) AttachSkills(ctx context.Context, jobID uint, skillIDs []uint) error {
	if len(skillIDs) == 0 {
		return nil
	}

	links := make([]RequiresSkill, 0, len(skillIDs))
	for _, id := range skillIDs {
		links = append(links, RequiresSkill{JobID: jobID, SkillID: id})
	}

	return conn(ctx, d.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (d *JobDAO) FindSkills(ctx context.Context, jobID uint) ([]Skill, error) {
	var skills []Skill

	result := conn(ctx, d.db).
		Joins("JOIN requires_skill ON requires_skill.skill_id = skills.id").
		Where("requires_skill.job_id = ?", jobID).
		Order("skills.name").
		Find(&skills)
	if result.Error != nil {
		return nil, result.Error
	}

	return skills, nil
}
