package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

const membershipPeriodDays = 30

type MembershipService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, tier models.MembershipTier, periods int) (*models.Membership, error)
	GetMembership(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
	CancelMembership(ctx context.Context, userID uuid.UUID) (*models.Membership, error)
}

type membershipService struct {
	memberships repository.MembershipRepository
	users       repository.UserRepository
	clock       clock.Clock
}

func NewMembershipService(memberships repository.MembershipRepository, users repository.UserRepository, clk clock.Clock) MembershipService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &membershipService{memberships: memberships, users: users, clock: clk}
}

// Subscribe starts (or restarts) the merchant's membership at tier for
// periods of thirty days from now.
func (s *membershipService) Subscribe(ctx context.Context, userID uuid.UUID, tier models.MembershipTier, periods int) (*models.Membership, error) {
	if !tier.Valid() {
		return nil, errors.NotValidf("tier %q", tier)
	}
	if periods < 1 {
		periods = 1
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if !user.HasRole(models.RoleMerchant) {
		return nil, errors.Trace(ErrNotMerchant)
	}

	now := s.clock.Now().UTC()
	m := &models.Membership{
		UserID:    userID,
		Tier:      tier,
		Status:    models.MembershipActive,
		StartedAt: now,
		ExpiresAt: now.AddDate(0, 0, membershipPeriodDays*periods),
	}
	if err := s.memberships.Upsert(ctx, m); err != nil {
		return nil, errors.Annotate(err, "saving membership")
	}
	return s.GetMembership(ctx, userID)
}

func (s *membershipService) GetMembership(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	m, err := s.memberships.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrMembershipNotFound)
	}
	return m, nil
}

func (s *membershipService) CancelMembership(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	m, err := s.GetMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MembershipCancelled {
		return nil, errors.Trace(ErrMembershipCancelled)
	}
	if _, err := s.memberships.UpdateStatus(ctx, userID, models.MembershipCancelled); err != nil {
		return nil, errors.Annotate(err, "cancelling membership")
	}
	m.Status = models.MembershipCancelled
	return m, nil
}
