package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

func (f *fixture) confirmedRating(t *testing.T, guests int) *models.Rating {
	t.Helper()
	b := f.book(t, guests, saturday7pm)
	_, err := f.bookings.EditBooking(f.ctx, b.ID, BookingPatch{Status: statusPtr(models.StatusConfirmed)})
	require.NoError(t, err)
	ratings, err := f.ratings.ListRatings(f.ctx, repository.RatingFilter{BookingID: &b.ID})
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	return &ratings[0]
}

func TestSubmitRating(t *testing.T) {
	f := newFixture(t)
	pending := f.confirmedRating(t, 2)

	done, err := f.ratings.SubmitRating(f.ctx, pending.ID, 4, "Muy rico")
	require.NoError(t, err)
	assert.Equal(t, models.RatingCompleted, done.Status)
	assert.Equal(t, 4.0, done.Rating)
	assert.Equal(t, "Muy rico", done.Comment)

	_, err = f.ratings.SubmitRating(f.ctx, pending.ID, 5, "again")
	assert.True(t, errors.Is(err, ErrRatingCompleted))

	_, err = f.ratings.SubmitRating(f.ctx, uuid.New(), 5, "")
	assert.True(t, errors.Is(err, ErrRatingNotFound))
}

func TestSubmitRating_OutOfRange(t *testing.T) {
	f := newFixture(t)
	pending := f.confirmedRating(t, 2)

	for _, v := range []float64{0, 5.5} {
		_, err := f.ratings.SubmitRating(f.ctx, pending.ID, v, "")
		assert.True(t, errors.Is(err, errors.NotValid), "value %v", v)
	}
	got, err := f.ratings.GetRating(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingPending, got.Status)
}

func TestShopSummary(t *testing.T) {
	f := newFixture(t)
	first := f.confirmedRating(t, 2)
	second := f.confirmedRating(t, 2)
	f.confirmedRating(t, 2)

	_, err := f.ratings.SubmitRating(f.ctx, first.ID, 5, "")
	require.NoError(t, err)
	_, err = f.ratings.SubmitRating(f.ctx, second.ID, 2, "")
	require.NoError(t, err)

	summary, err := f.ratings.ShopSummary(f.ctx, f.shop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Count)
	assert.InDelta(t, 3.5, summary.Average, 0.001)

	completed := models.RatingCompleted
	list, err := f.ratings.ListRatings(f.ctx, repository.RatingFilter{ShopID: &f.shop.ID, Status: &completed})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCancelBooking_RemovesPendingRating(t *testing.T) {
	f := newFixture(t)
	pending := f.confirmedRating(t, 2)

	_, err := f.bookings.EditBooking(f.ctx, pending.BookingID, BookingPatch{Status: statusPtr(models.StatusCancelled)})
	require.NoError(t, err)

	assert.Zero(t, f.count(t, &models.Rating{}, "booking_id = ?", pending.BookingID))
	_, err = f.ratings.SubmitRating(f.ctx, pending.ID, 4, "")
	assert.True(t, errors.Is(err, ErrRatingNotFound))
}

func TestCancelBooking_KeepsSubmittedRating(t *testing.T) {
	f := newFixture(t)
	pending := f.confirmedRating(t, 2)
	_, err := f.ratings.SubmitRating(f.ctx, pending.ID, 5, "Excelente")
	require.NoError(t, err)

	_, err = f.bookings.EditBooking(f.ctx, pending.BookingID, BookingPatch{Status: statusPtr(models.StatusCancelled)})
	require.NoError(t, err)

	got, err := f.ratings.GetRating(f.ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingCompleted, got.Status)
}
