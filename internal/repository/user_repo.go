package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullreservas/reservas-api/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User, roles ...models.Role) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	FindRoleByCode(ctx context.Context, code models.RoleCode) (*models.Role, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	GetDB() *gorm.DB
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetDB() *gorm.DB {
	return r.db
}

// Create inserts the user and its role links in one transaction.
func (r *userRepository) Create(ctx context.Context, user *models.User, roles ...models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		for _, role := range roles {
			link := models.UserRole{UserID: user.ID, RoleID: role.ID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		user.Roles = roles
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) FindRoleByCode(ctx context.Context, code models.RoleCode) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// AssignRole links the role to the user; an existing link is left as is.
func (r *userRepository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: userID, RoleID: roleID}).Error
}
