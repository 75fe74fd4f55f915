package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/models"
)

type ScheduleRepository interface {
	Replace(ctx context.Context, shopID uuid.UUID, schedules []models.Schedule) error
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Schedule, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Replace swaps the shop's whole weekly schedule atomically.
func (r *scheduleRepository) Replace(ctx context.Context, shopID uuid.UUID, schedules []models.Schedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", shopID).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		if len(schedules) == 0 {
			return nil
		}
		for i := range schedules {
			schedules[i].ShopID = shopID
		}
		return tx.Create(&schedules).Error
	})
}

func (r *scheduleRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("day_of_week ASC, opens_at ASC").
		Find(&schedules).Error
	return schedules, err
}
