package service

import (
	"context"
	"fmt"

	"github.com/happy2help/h2h-api/internal/domain"
)

type UserService struct {
	repo UserRepository
	orgs OrganisationRepository
}

func NewUserService(repo UserRepository, orgs OrganisationRepository) *UserService {
	return &UserService{
		repo: repo,
		orgs: orgs,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// ResolveActor loads the user together with the organisations it belongs to.
func (s *UserService) ResolveActor(ctx context.Context, userID uint) (domain.Actor, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	orgIDs, err := s.orgs.MemberOrganisationIDs(ctx, user.ID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("s.orgs.MemberOrganisationIDs -> %w", err)
	}

	return domain.Actor{UserID: user.ID, OrganisationIDs: orgIDs}, nil
}
