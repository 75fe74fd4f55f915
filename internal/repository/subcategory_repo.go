package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/models"
)

type SubcategoryRepository interface {
	Create(ctx context.Context, sub *models.Subcategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
	FindByName(ctx context.Context, name string) (*models.Subcategory, error)
	List(ctx context.Context) ([]models.Subcategory, error)
}

type subcategoryRepository struct {
	db *gorm.DB
}

func NewSubcategoryRepository(db *gorm.DB) SubcategoryRepository {
	return &subcategoryRepository{db: db}
}

func (r *subcategoryRepository) Create(ctx context.Context, sub *models.Subcategory) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subcategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subcategoryRepository) FindByName(ctx context.Context, name string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subcategoryRepository) List(ctx context.Context) ([]models.Subcategory, error) {
	var subs []models.Subcategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&subs).Error
	return subs, err
}
