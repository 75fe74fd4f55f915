package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

type RatingService interface {
	GetRating(ctx context.Context, id uuid.UUID) (*models.Rating, error)
	ListRatings(ctx context.Context, filter repository.RatingFilter) ([]models.Rating, error)
	SubmitRating(ctx context.Context, id uuid.UUID, value float64, comment string) (*models.Rating, error)
	ShopSummary(ctx context.Context, shopID uuid.UUID) (repository.RatingSummary, error)
}

type ratingService struct {
	ratings repository.RatingRepository
}

func NewRatingService(ratings repository.RatingRepository) RatingService {
	return &ratingService{ratings: ratings}
}

func (s *ratingService) GetRating(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	r, err := s.ratings.FindByID(ctx, s.ratings.GetDB(), id)
	if err != nil {
		return nil, notFound(err, ErrRatingNotFound)
	}
	return r, nil
}

func (s *ratingService) ListRatings(ctx context.Context, filter repository.RatingFilter) ([]models.Rating, error) {
	ratings, err := s.ratings.List(ctx, filter)
	return ratings, errors.Trace(err)
}

// SubmitRating completes a pending rating. Each rating is submitted once.
func (s *ratingService) SubmitRating(ctx context.Context, id uuid.UUID, value float64, comment string) (*models.Rating, error) {
	if value < 1 || value > 5 {
		return nil, errors.NotValidf("rating %.1f", value)
	}

	err := s.ratings.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.ratings.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrRatingNotFound)
		}
		if r.Status == models.RatingCompleted {
			return errors.Trace(ErrRatingCompleted)
		}
		return errors.Trace(s.ratings.Update(ctx, tx, id, map[string]any{
			"rating":  value,
			"comment": comment,
			"status":  models.RatingCompleted,
		}))
	})
	if err != nil {
		return nil, err
	}
	return s.GetRating(ctx, id)
}

func (s *ratingService) ShopSummary(ctx context.Context, shopID uuid.UUID) (repository.RatingSummary, error) {
	summary, err := s.ratings.Summary(ctx, shopID)
	return summary, errors.Trace(err)
}
