package repository

import (
	"context"
	"fmt"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

type JobDAO interface {
	Insert(ctx context.Context, job dao.Job) (dao.Job, error)
	FindByID(ctx context.Context, id uint) (dao.Job, error)
	FindByIDForUpdate(ctx context.Context, id uint) (dao.Job, error)
	FindByIDForShare(ctx context.Context, id uint) (dao.Job, error)
	FindByEventID(ctx context.Context, eventID uint, includeDeleted bool) ([]dao.Job, error)
	CountActiveByEventID(ctx context.Context, eventID uint) (int64, error)
	NameTaken(ctx context.Context, eventID uint, name string, exceptID uint) (bool, error)
	Update(ctx context.Context, job dao.Job) (dao.Job, error)
	Delete(ctx context.Context, id uint) error
	GetOrCreateSkill(ctx context.Context, name string) (dao.Skill, error)
	AttachSkills(ctx context.Context, jobID uint, skillIDs []uint) error
	FindSkills(ctx context.Context, jobID uint) ([]dao.Skill, error)
}

type JobRepository struct {
	dao JobDAO
}

func NewJobRepository(dao JobDAO) *JobRepository {
	return &JobRepository{
		dao: dao,
	}
}

func (r *JobRepository) Create(ctx context.Context, job domain.Job) (domain.Job, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(job))
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.Insert -> %w", translate(err, 0))
	}

	return r.daoToDomain(created), nil
}

// FindByID returns the job with its required skills, deleted or not.
func (r *JobRepository) FindByID(ctx context.Context, id uint) (domain.Job, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.FindByID -> %w", translate(err, id))
	}

	skills, err := r.dao.FindSkills(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.FindSkills -> %w", err)
	}

	job := r.daoToDomain(found)
	for _, s := range skills {
		job.RequiredSkills = append(job.RequiredSkills, domain.Skill{ID: s.ID, Name: s.Name})
	}

	return job, nil
}

func (r *JobRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.Job, error) {
	found, err := r.dao.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.FindByIDForUpdate -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *JobRepository) FindByIDForShare(ctx context.Context, id uint) (domain.Job, error) {
	found, err := r.dao.FindByIDForShare(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.FindByIDForShare -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *JobRepository) FindByEventID(ctx context.Context, eventID uint, includeDeleted bool) ([]domain.Job, error) {
	found, err := r.dao.FindByEventID(ctx, eventID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEventID -> %w", err)
	}

	jobs := make([]domain.Job, 0, len(found))
	for _, j := range found {
		jobs = append(jobs, r.daoToDomain(j))
	}

	return jobs, nil
}

func (r *JobRepository) CountActive(ctx context.Context, eventID uint) (int, error) {
	count, err := r.dao.CountActiveByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountActiveByEventID -> %w", err)
	}

	return int(count), nil
}

func (r *JobRepository) NameTaken(ctx context.Context, eventID uint, name string, exceptID uint) (bool, error) {
	taken, err := r.dao.NameTaken(ctx, eventID, name, exceptID)
	if err != nil {
		return false, fmt.Errorf("r.dao.NameTaken -> %w", err)
	}

	return taken, nil
}

func (r *JobRepository) Update(ctx context.Context, job domain.Job) (domain.Job, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(job))
	if err != nil {
		return domain.Job{}, fmt.Errorf("r.dao.Update -> %w", translate(err, job.ID))
	}

	res := r.daoToDomain(updated)
	res.RequiredSkills = job.RequiredSkills

	return res, nil
}

func (r *JobRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", translate(err, id))
	}

	return nil
}

// AttachSkills links the named skills to the job, creating unknown ones.
func (r *JobRepository) AttachSkills(ctx context.Context, jobID uint, names []string) ([]domain.Skill, error) {
	skills := make([]domain.Skill, 0, len(names))
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		s, err := r.dao.GetOrCreateSkill(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("r.dao.GetOrCreateSkill -> %w", err)
		}
		skills = append(skills, domain.Skill{ID: s.ID, Name: s.Name})
		ids = append(ids, s.ID)
	}

	if err := r.dao.AttachSkills(ctx, jobID, ids); err != nil {
		return nil, fmt.Errorf("r.dao.AttachSkills -> %w", err)
	}

	return skills, nil
}

func (r *JobRepository) domainToDao(j domain.Job) dao.Job {
	status := dao.JobStatusActive
	if j.IsDeleted() {
		status = dao.JobStatusSoftDeleted
	}

	return dao.Job{
		ID:             j.ID,
		EventID:        j.EventID,
		Name:           j.Name,
		Description:    j.Description,
		TotalPositions: j.TotalPositions,
		Status:         status,
		DeletedAt:      j.DeletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func (r *JobRepository) daoToDomain(j dao.Job) domain.Job {
	status := domain.JobActive
	if j.Status == dao.JobStatusSoftDeleted {
		status = domain.JobSoftDeleted
	}

	return domain.Job{
		ID:             j.ID,
		EventID:        j.EventID,
		Name:           j.Name,
		Description:    j.Description,
		TotalPositions: j.TotalPositions,
		Status:         status,
		DeletedAt:      j.DeletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}
