package domain

import (
	"strings"
	"time"
)

// JobStatus is the lifecycle status of a job.
type JobStatus string

const (
	JobActive      JobStatus = "active"
	JobSoftDeleted JobStatus = "soft_deleted"
)

// Job is a role with optional capacity belonging to one event.
type Job struct {
	ID          uint   `json:"id"`
	EventID     uint   `json:"event_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// TotalPositions caps accepted participations; nil means unlimited.
	TotalPositions *int       `json:"total_positions,omitempty"`
	Status         JobStatus  `json:"status"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	RequiredSkills []Skill    `json:"required_skills,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsDeleted reports whether the job has been soft-deleted.
func (j Job) IsDeleted() bool {
	return j.Status == JobSoftDeleted
}

// SoftDelete marks the job deleted at now.
func (j Job) SoftDelete(now time.Time) Job {
	at := now.UTC()
	j.Status = JobSoftDeleted
	j.DeletedAt = &at
	j.UpdatedAt = at
	return j
}

// JobPatch lists the mutable job fields; nil leaves a field untouched.
type JobPatch struct {
	Name           *string
	Description    *string
	TotalPositions *int
}

// Skill is a tag a job can require.
type Skill struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RequiresSkill links a job to a required skill.
type RequiresSkill struct {
	JobID   uint
	SkillID uint
}

// ValidateTotalPositions rejects negative capacities.
func ValidateTotalPositions(total *int) error {
	if total != nil && *total < 0 {
		return InvalidInputError("total_positions", "must not be negative")
	}
	return nil
}

// NormalizeJobSpec trims and validates a job spec.
func NormalizeJobSpec(spec JobSpec) (JobSpec, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return JobSpec{}, InvalidInputError("name", "must not be empty")
	}
	if err := ValidateTotalPositions(spec.TotalPositions); err != nil {
		return JobSpec{}, err
	}
	return spec, nil
}
