package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/models"
)

type ShopFilter struct {
	SubcategoryID *uuid.UUID
	OwnerID       *uuid.UUID
	ShiftType     *models.ShiftType
	Limit         int
	Offset        int
}

type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Shop, error)
	List(ctx context.Context, filter ShopFilter) ([]models.Shop, int64, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	GetDB() *gorm.DB
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *shopRepository) Create(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepository) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := tx.WithContext(ctx).Preload("Subcategory").First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) List(ctx context.Context, filter ShopFilter) ([]models.Shop, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Shop{})
	if filter.SubcategoryID != nil {
		q = q.Where("subcategory_id = ?", *filter.SubcategoryID)
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.ShiftType != nil {
		q = q.Where("shift_type = ?", *filter.ShiftType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shops []models.Shop
	q = q.Preload("Subcategory").Order("name ASC, id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

func (r *shopRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Shop{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *shopRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Shop{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the shop and everything hanging off it.
func (r *shopRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := tx.Model(&models.Booking{}).Select("id").Where("shop_id = ?", id)
		if err := tx.Where("booking_id IN (?)", bookings).Delete(&models.BookedTable{}).Error; err != nil {
			return err
		}
		if err := tx.Where("shop_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		for _, child := range []any{&models.Booking{}, &models.Schedule{}, &models.ClosedDay{}, &models.Table{}, &models.AvailableSlot{}} {
			if err := tx.Where("shop_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Shop{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
