package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

type ParticipationDAO interface {
	Insert(ctx context.Context, p dao.Participation) (dao.Participation, error)
	FindByID(ctx context.Context, id uint) (dao.Participation, error)
	FindByIDForUpdate(ctx context.Context, id uint) (dao.Participation, error)
	FindByJobAndUser(ctx context.Context, jobID, userID uint) (dao.Participation, error)
	FindByJobID(ctx context.Context, jobID uint) ([]dao.Participation, error)
	UpdateState(ctx context.Context, id uint, state int, at time.Time) (dao.Participation, error)
	CountByJobID(ctx context.Context, jobID uint, states ...int) (int64, error)
	TransitionByJobID(ctx context.Context, jobID uint, from []int, to int, at time.Time) (int64, error)
}

type ParticipationRepository struct {
	dao ParticipationDAO
}

func NewParticipationRepository(dao ParticipationDAO) *ParticipationRepository {
	return &ParticipationRepository{
		dao: dao,
	}
}

func (r *ParticipationRepository) Create(ctx context.Context, p domain.Participation) (domain.Participation, error) {
	created, err := r.dao.Insert(ctx, dao.Participation{
		JobID:    p.JobID,
		UserID:   p.UserID,
		State:    int(p.State),
		RatingID: p.RatingID,
	})
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.Insert -> %w", translate(err, 0))
	}

	return r.daoToDomain(created), nil
}

func (r *ParticipationRepository) FindByID(ctx context.Context, id uint) (domain.Participation, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.FindByID -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipationRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.Participation, error) {
	found, err := r.dao.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.FindByIDForUpdate -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipationRepository) FindByJobAndUser(ctx context.Context, jobID, userID uint) (domain.Participation, error) {
	found, err := r.dao.FindByJobAndUser(ctx, jobID, userID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.FindByJobAndUser -> %w", translate(err, jobID))
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipationRepository) FindByJobID(ctx context.Context, jobID uint) ([]domain.Participation, error) {
	found, err := r.dao.FindByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByJobID -> %w", err)
	}

	ps := make([]domain.Participation, 0, len(found))
	for _, p := range found {
		ps = append(ps, r.daoToDomain(p))
	}

	return ps, nil
}

func (r *ParticipationRepository) UpdateState(ctx context.Context, p domain.Participation) (domain.Participation, error) {
	updated, err := r.dao.UpdateState(ctx, p.ID, int(p.State), p.UpdatedAt)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.UpdateState -> %w", translate(err, p.ID))
	}

	return r.daoToDomain(updated), nil
}

// Count returns how many participations of the job are in one of states,
// or how many exist at all when states is empty.
func (r *ParticipationRepository) Count(ctx context.Context, jobID uint, states ...domain.ParticipationState) (int, error) {
	count, err := r.dao.CountByJobID(ctx, jobID, toInts(states)...)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountByJobID -> %w", err)
	}

	return int(count), nil
}

func (r *ParticipationRepository) TransitionAll(ctx context.Context, jobID uint, from []domain.ParticipationState, to domain.ParticipationState, at time.Time) (int, error) {
	n, err := r.dao.TransitionByJobID(ctx, jobID, toInts(from), int(to), at)
	if err != nil {
		return 0, fmt.Errorf("r.dao.TransitionByJobID -> %w", err)
	}

	return int(n), nil
}

func (r *ParticipationRepository) daoToDomain(p dao.Participation) domain.Participation {
	return domain.Participation{
		ID:        p.ID,
		JobID:     p.JobID,
		UserID:    p.UserID,
		State:     domain.ParticipationState(p.State),
		RatingID:  p.RatingID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toInts(states []domain.ParticipationState) []int {
	out := make([]int, 0, len(states))
	for _, s := range states {
		out = append(out, int(s))
	}

	return out
}
