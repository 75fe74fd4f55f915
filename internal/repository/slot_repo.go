package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullreservas/reservas-api/internal/models"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *models.AvailableSlot) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AvailableSlot, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AvailableSlot, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, minCapacity int) ([]models.AvailableSlot, error)
	UpdateCapacity(ctx context.Context, id uuid.UUID, capacity int) error
	HasBookings(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Create(ctx context.Context, slot *models.AvailableSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *slotRepository) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AvailableSlot, error) {
	var slot models.AvailableSlot
	if err := tx.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByIDForUpdate locks the slot row until tx ends, serialising every
// capacity check made against it.
func (r *slotRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AvailableSlot, error) {
	var slot models.AvailableSlot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) ListByShop(ctx context.Context, shopID uuid.UUID, minCapacity int) ([]models.AvailableSlot, error) {
	var slots []models.AvailableSlot
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if minCapacity > 0 {
		q = q.Where("capacity >= ?", minCapacity)
	}
	err := q.Order("start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *slotRepository) UpdateCapacity(ctx context.Context, id uuid.UUID, capacity int) error {
	return r.db.WithContext(ctx).Model(&models.AvailableSlot{}).Where("id = ?", id).Update("capacity", capacity).Error
}

func (r *slotRepository) HasBookings(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).Where("booked_slot_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *slotRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AvailableSlot{})
	return res.RowsAffected, res.Error
}
