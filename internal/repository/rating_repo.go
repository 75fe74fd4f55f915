package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullreservas/reservas-api/internal/models"
)

type RatingFilter struct {
	BookingID *uuid.UUID
	ShopID    *uuid.UUID
	UserID    *uuid.UUID
	Status    *models.RatingStatus
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RatingRepository interface {
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, rating *models.Rating) (bool, error)
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Rating, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Rating, error)
	List(ctx context.Context, filter RatingFilter) ([]models.Rating, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	DeletePending(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (int64, error)
	Summary(ctx context.Context, shopID uuid.UUID) (RatingSummary, error)
	GetDB() *gorm.DB
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetDB() *gorm.DB {
	return r.db
}

// CreateIfAbsent inserts the rating unless its booking already has one.
// It reports whether a row was written.
func (r *ratingRepository) CreateIfAbsent(ctx context.Context, tx *gorm.DB, rating *models.Rating) (bool, error) {
	res := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "booking_id"}},
		DoNothing: true,
	}).Create(rating)
	return res.RowsAffected > 0, res.Error
}

func (r *ratingRepository) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := tx.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rating, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) List(ctx context.Context, filter RatingFilter) ([]models.Rating, error) {
	q := r.db.WithContext(ctx)
	if filter.BookingID != nil {
		q = q.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.ShopID != nil {
		q = q.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var ratings []models.Rating
	err := q.Order("created_at ASC").Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	return tx.WithContext(ctx).Model(&models.Rating{}).Where("id = ?", id).Updates(fields).Error
}

// DeletePending removes the booking's rating if it was never submitted.
func (r *ratingRepository) DeletePending(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (int64, error) {
	res := tx.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, models.RatingPending).
		Delete(&models.Rating{})
	return res.RowsAffected, res.Error
}

// Summary averages the completed ratings of a shop.
func (r *ratingRepository) Summary(ctx context.Context, shopID uuid.UUID) (RatingSummary, error) {
	var s RatingSummary
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("shop_id = ? AND status = ?", shopID, models.RatingCompleted).
		Scan(&s).Error
	return s, err
}
