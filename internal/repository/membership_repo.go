package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullreservas/reservas-api/internal/models"
)

type MembershipRepository interface {
	Upsert(ctx context.Context, m *models.Membership) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, status models.MembershipStatus) (int64, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Upsert keeps one membership row per user, overwriting the plan on conflict.
func (r *membershipRepository) Upsert(ctx context.Context, m *models.Membership) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "status", "started_at", "expires_at", "updated_at"}),
	}).Create(m).Error
}

func (r *membershipRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	var m models.Membership
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status models.MembershipStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Update("status", status)
	return res.RowsAffected, res.Error
}
