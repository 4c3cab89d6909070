package repository

import (
	"context"
	"fmt"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByIDForUpdate(ctx context.Context, id uint) (dao.User, error)
	AddCredit(ctx context.Context, id uint, delta int) (dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, dao.User{
		Email:        user.Email,
		Name:         user.Name,
		CreditPoints: user.CreditPoints,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", translate(err, 0))
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByIDForUpdate -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) AddCredit(ctx context.Context, id uint, delta int) (domain.User, error) {
	updated, err := r.dao.AddCredit(ctx, id, delta)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.AddCredit -> %w", translate(err, id))
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		CreditPoints: u.CreditPoints,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
