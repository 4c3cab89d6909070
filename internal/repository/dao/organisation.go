package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrganisationNotFound   = errors.New("organisation not found")
	ErrOrganisationNameExists = errors.New("organisation already exists")
)

type Organisation struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex:idx_organisations_name;not null"`
	Description string
	AdminID     uint   `gorm:"not null;index"`
	Admin       User   `gorm:"foreignKey:AdminID"`
	Members     []User `gorm:"many2many:organisation_members;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrganisationMember is the join row behind Organisation.Members.
type OrganisationMember struct {
	OrganisationID uint `gorm:"primaryKey"`
	UserID         uint `gorm:"primaryKey"`
}

type OrganisationDAO struct {
	db *gorm.DB
}

func NewOrganisationDAO(db *gorm.DB) *OrganisationDAO {
	return &OrganisationDAO{
		db: db,
	}
}

// Insert stores the organisation and enrols its admin as the first member.
func (d *OrganisationDAO) Insert(ctx context.Context, org Organisation) (Organisation, error) {
	db := conn(ctx, d.db)

	org.Members = nil
	if result := db.Omit("Admin", "Members").Create(&org); result.Error != nil {
		if isUniqueViolation(result.Error, uniqueOrganisationName) {
			return Organisation{}, ErrOrganisationNameExists
		}

		return Organisation{}, result.Error
	}

	if err := d.AddMember(ctx, org.ID, org.AdminID); err != nil {
		return Organisation{}, err
	}

	return org, nil
}

func (d *OrganisationDAO) FindByID(ctx context.Context, id uint) (Organisation, error) {
	var org Organisation

	result := conn(ctx, d.db).First(&org, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Organisation{}, ErrOrganisationNotFound
		}

		return Organisation{}, result.Error
	}

	return org, nil
}

func (d *OrganisationDAO) AddMember(ctx context.Context, orgID, userID uint) error {
	return conn(ctx, d.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&OrganisationMember{OrganisationID: orgID, UserID: userID}).Error
}

// FindIDsByMember lists the organisations userID belongs to.
func (d *OrganisationDAO) FindIDsByMember(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint

	result := conn(ctx, d.db).
		Model(&OrganisationMember{}).
		Where("user_id = ?", userID).
		Order("organisation_id").
		Pluck("organisation_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}
