package repository

import (
	"context"
	"fmt"

	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/repository/dao"
)

type OrganisationDAO interface {
	Insert(ctx context.Context, org dao.Organisation) (dao.Organisation, error)
	FindByID(ctx context.Context, id uint) (dao.Organisation, error)
	AddMember(ctx context.Context, orgID, userID uint) error
	FindIDsByMember(ctx context.Context, userID uint) ([]uint, error)
}

type OrganisationRepository struct {
	dao OrganisationDAO
}

func NewOrganisationRepository(dao OrganisationDAO) *OrganisationRepository {
	return &OrganisationRepository{
		dao: dao,
	}
}

func (r *OrganisationRepository) Create(ctx context.Context, org domain.Organisation) (domain.Organisation, error) {
	created, err := r.dao.Insert(ctx, dao.Organisation{
		Name:        org.Name,
		Description: org.Description,
		AdminID:     org.AdminID,
	})
	if err != nil {
		return domain.Organisation{}, fmt.Errorf("r.dao.Insert -> %w", translate(err, 0))
	}

	return r.daoToDomain(created), nil
}

func (r *OrganisationRepository) FindByID(ctx context.Context, id uint) (domain.Organisation, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Organisation{}, fmt.Errorf("r.dao.FindByID -> %w", translate(err, id))
	}

	return r.daoToDomain(found), nil
}

func (r *OrganisationRepository) AddMember(ctx context.Context, orgID, userID uint) error {
	if err := r.dao.AddMember(ctx, orgID, userID); err != nil {
		return fmt.Errorf("r.dao.AddMember -> %w", err)
	}

	return nil
}

func (r *OrganisationRepository) MemberOrganisationIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := r.dao.FindIDsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindIDsByMember -> %w", err)
	}

	return ids, nil
}

func (r *OrganisationRepository) daoToDomain(o dao.Organisation) domain.Organisation {
	return domain.Organisation{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		AdminID:     o.AdminID,
	}
}
