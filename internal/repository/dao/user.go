package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email string `gorm:"uniqueIndex:idx_users_email;not null"`
	Name  string `gorm:"not null"`

	CreditPoints int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := conn(ctx, d.db).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error, uniqueUserEmail) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	return d.find(conn(ctx, d.db), id)
}

// FindByIDForUpdate locks the user row until the surrounding transaction ends.
func (d *UserDAO) FindByIDForUpdate(ctx context.Context, id uint) (User, error) {
	return d.find(conn(ctx, d.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (d *UserDAO) find(db *gorm.DB, id uint) (User, error) {
	var user User

	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// AddCredit adjusts the balance in place and returns the updated row.
func (d *UserDAO) AddCredit(ctx context.Context, id uint, delta int) (User, error) {
	db := conn(ctx, d.db)

	result := db.Model(&User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"credit_points": gorm.Expr("credit_points + ?", delta),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return User{}, ErrUserNotFound
	}

	return d.find(db, id)
}
