package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{dao.ErrJobNotFound, domain.ErrNotFound},
		{fmt.Errorf("wrapped: %w", dao.ErrParticipationNotFound), domain.ErrNotFound},
		{dao.ErrJobNameExists, domain.ErrJobNameTaken},
		{dao.ErrLocationTaken, domain.ErrLocationInUse},
		{dao.ErrParticipationDuplicate, domain.ErrDuplicateApplication},
		{dao.ErrUserEmailExists, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, translate(tt.in, 3), tt.want, tt.in.Error())
	}

	var derr *domain.Error
	require.ErrorAs(t, translate(dao.ErrEventNotFound, 3), &derr)
	assert.Equal(t, "event", derr.Metadata["entity"])
	assert.Equal(t, "3", derr.Metadata["id"])

	plain := errors.New("connection reset")
	assert.Same(t, plain, translate(plain, 1))
}

type stubJobDAO struct {
	JobDAO
	job    dao.Job
	skills []dao.Skill
	err    error
}

func (s stubJobDAO) FindByID(_ context.Context, _ uint) (dao.Job, error) {
	return s.job, s.err
}

func (s stubJobDAO) FindSkills(_ context.Context, _ uint) ([]dao.Skill, error) {
	return s.skills, nil
}

func TestJobRepositoryFindByID(t *testing.T) {
	deletedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	total := 4
	repo := NewJobRepository(stubJobDAO{
		job: dao.Job{
			ID: 7, EventID: 2, Name: "Driver", TotalPositions: &total,
			Status: dao.JobStatusSoftDeleted, DeletedAt: &deletedAt,
		},
		skills: []dao.Skill{{ID: 1, Name: "Driving licence"}},
	})

	job, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, job.IsDeleted())
	assert.Equal(t, &deletedAt, job.DeletedAt)
	assert.Equal(t, []domain.Skill{{ID: 1, Name: "Driving licence"}}, job.RequiredSkills)

	_, err = NewJobRepository(stubJobDAO{err: dao.ErrJobNotFound}).FindByID(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRepositoryStatusRoundTrip(t *testing.T) {
	repo := NewJobRepository(nil)
	for _, status := range []domain.JobStatus{domain.JobActive, domain.JobSoftDeleted} {
		got := repo.daoToDomain(repo.domainToDao(domain.Job{ID: 1, Status: status}))
		assert.Equal(t, status, got.Status)
	}
}
