package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/auth"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

type RegisterInput struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Merchant bool
}

type LoginResult struct {
	User  *models.User `json:"user"`
	Token auth.Token   `json:"token"`
}

type IdentityService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	AssignRole(ctx context.Context, userID uuid.UUID, code models.RoleCode) (*models.User, error)
}

type IdentityConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	BcryptCost int
}

type identityService struct {
	users repository.UserRepository
	cfg   IdentityConfig
	clock clock.Clock
}

func NewIdentityService(users repository.UserRepository, cfg IdentityConfig, clk clock.Clock) IdentityService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &identityService{users: users, cfg: cfg, clock: clk}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *identityService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, errors.Annotatef(ErrEmailTaken, "%s", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Trace(err)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, errors.Annotate(err, "hashing password")
	}

	codes := []models.RoleCode{models.RoleCustomer}
	if in.Merchant {
		codes = append(codes, models.RoleMerchant)
	}
	roles := make([]models.Role, 0, len(codes))
	for _, code := range codes {
		role, err := s.users.FindRoleByCode(ctx, code)
		if err != nil {
			return nil, notFound(err, ErrRoleNotFound)
		}
		roles = append(roles, *role)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user, roles...); err != nil {
		return nil, errors.Annotate(err, "creating user")
	}
	logger.Infof("user %s registered with roles %v", user.ID, user.RoleCodes())
	return user, nil
}

func (s *identityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Trace(ErrInvalidCredentials)
		}
		return nil, errors.Trace(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, errors.Trace(ErrInvalidCredentials)
	}

	token, err := auth.IssueToken(s.cfg.JWTSecret, user.ID, user.RoleCodes(), s.clock.Now(), s.cfg.AccessTTL)
	if err != nil {
		return nil, errors.Annotate(err, "issuing token")
	}
	return &LoginResult{User: user, Token: token}, nil
}

func (s *identityService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// AssignRole grants code to the user; granting a held role changes nothing.
func (s *identityService) AssignRole(ctx context.Context, userID uuid.UUID, code models.RoleCode) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.users.FindRoleByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}
	if !user.HasRole(code) {
		if err := s.users.AssignRole(ctx, user.ID, role.ID); err != nil {
			return nil, errors.Annotatef(err, "assigning %s", code)
		}
	}
	return s.GetUser(ctx, userID)
}
