package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullreservas/reservas-api/internal/models"
)

type ClosedDayRepository interface {
	InsertMissing(ctx context.Context, shopID uuid.UUID, days []int) ([]models.ClosedDay, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.ClosedDay, error)
	IsClosed(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, dayOfWeek int) (bool, error)
	Delete(ctx context.Context, shopID uuid.UUID, dayOfWeek int) (int64, error)
}

type closedDayRepository struct {
	db *gorm.DB
}

func NewClosedDayRepository(db *gorm.DB) ClosedDayRepository {
	return &closedDayRepository{db: db}
}

// InsertMissing writes one row per day in a single conflict-ignoring insert
// and returns only the rows that were actually new, or nil when none were.
func (r *closedDayRepository) InsertMissing(ctx context.Context, shopID uuid.UUID, days []int) ([]models.ClosedDay, error) {
	if len(days) == 0 {
		return nil, nil
	}

	rows := make([]models.ClosedDay, 0, len(days))
	ids := make([]uuid.UUID, 0, len(days))
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		id := uuid.New()
		ids = append(ids, id)
		rows = append(rows, models.ClosedDay{Base: models.Base{ID: id}, ShopID: shopID, DayOfWeek: d})
	}

	var inserted []models.ClosedDay
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_id"}, {Name: "day_of_week"}},
			DoNothing: true,
		}).Create(&rows)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		// Rows skipped by the conflict clause never got our ids.
		return tx.Where("id IN ?", ids).Order("day_of_week ASC").Find(&inserted).Error
	})
	if err != nil {
		return nil, err
	}
	if len(inserted) == 0 {
		return nil, nil
	}
	return inserted, nil
}

func (r *closedDayRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.ClosedDay, error) {
	var days []models.ClosedDay
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Order("day_of_week ASC").Find(&days).Error
	return days, err
}

func (r *closedDayRepository) IsClosed(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, dayOfWeek int) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.ClosedDay{}).
		Where("shop_id = ? AND day_of_week = ?", shopID, dayOfWeek).
		Count(&count).Error
	return count > 0, err
}

func (r *closedDayRepository) Delete(ctx context.Context, shopID uuid.UUID, dayOfWeek int) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("shop_id = ? AND day_of_week = ?", shopID, dayOfWeek).
		Delete(&models.ClosedDay{})
	return res.RowsAffected, res.Error
}
