package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/models"
)

// TableFilter narrows a shop's table configurations; nil fields match anything.
type TableFilter struct {
	LocationType *models.LocationType
	Floor        *int
	RoofType     *models.RoofType
	MinCapacity  int
}

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
	ListByShop(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, filter TableFilter) ([]models.Table, error)
	HasBookings(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) ListByShop(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, filter TableFilter) ([]models.Table, error) {
	q := tx.WithContext(ctx).Where("shop_id = ?", shopID)
	if filter.LocationType != nil {
		q = q.Where("location_type = ?", *filter.LocationType)
	}
	if filter.Floor != nil {
		q = q.Where("floor = ?", *filter.Floor)
	}
	if filter.RoofType != nil {
		q = q.Where("roof_type = ?", *filter.RoofType)
	}
	if filter.MinCapacity > 0 {
		q = q.Where("capacity >= ?", filter.MinCapacity)
	}

	var tables []models.Table
	err := q.Order("capacity ASC, floor ASC, id ASC").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) HasBookings(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BookedTable{}).Where("table_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *tableRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Table{})
	return res.RowsAffected, res.Error
}
