package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/juju/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
	"github.com/fullreservas/reservas-api/pkg/storage"
)

type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetMenu  AssetKind = "menu"
)

type CreateShopInput struct {
	OwnerID            uuid.UUID
	SubcategoryID      uuid.UUID
	Name               string
	Phone              string
	Address            string
	ShiftType          models.ShiftType
	AverageStayMinutes int
	Capacity           int
}

type ShopPatch struct {
	SubcategoryID      *uuid.UUID
	Name               *string
	Phone              *string
	Address            *string
	ShiftType          *models.ShiftType
	AverageStayMinutes *int
	Capacity           *int
}

type ScheduleInput struct {
	DayOfWeek int
	OpensAt   datatypes.Time
	ClosesAt  datatypes.Time
}

type CatalogService interface {
	CreateSubcategory(ctx context.Context, name string) (*models.Subcategory, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)

	CreateShop(ctx context.Context, in CreateShopInput) (*models.Shop, error)
	GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	ListShops(ctx context.Context, filter repository.ShopFilter) ([]models.Shop, int64, error)
	UpdateShop(ctx context.Context, id uuid.UUID, patch ShopPatch) (*models.Shop, error)
	DeleteShop(ctx context.Context, id uuid.UUID) error
	UploadShopAsset(ctx context.Context, id uuid.UUID, kind AssetKind, filename, contentType string, body io.Reader) (*models.Shop, error)

	ReplaceSchedules(ctx context.Context, shopID uuid.UUID, in []ScheduleInput) ([]models.Schedule, error)
	ListSchedules(ctx context.Context, shopID uuid.UUID) ([]models.Schedule, error)
}

type catalogService struct {
	shops         repository.ShopRepository
	subcategories repository.SubcategoryRepository
	schedules     repository.ScheduleRepository
	users         repository.UserRepository
	// storage may be nil when no bucket is configured.
	storage storage.Uploader
}

func NewCatalogService(
	shops repository.ShopRepository,
	subcategories repository.SubcategoryRepository,
	schedules repository.ScheduleRepository,
	users repository.UserRepository,
	store storage.Uploader,
) CatalogService {
	return &catalogService{
		shops:         shops,
		subcategories: subcategories,
		schedules:     schedules,
		users:         users,
		storage:       store,
	}
}

func (s *catalogService) CreateSubcategory(ctx context.Context, name string) (*models.Subcategory, error) {
	name = strings.TrimSpace(name)
	if _, err := s.subcategories.FindByName(ctx, name); err == nil {
		return nil, errors.Annotatef(ErrSubcategoryExists, "%s", name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Trace(err)
	}

	sub := &models.Subcategory{Name: name}
	if err := s.subcategories.Create(ctx, sub); err != nil {
		return nil, errors.Annotate(err, "creating subcategory")
	}
	return sub, nil
}

func (s *catalogService) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	subs, err := s.subcategories.List(ctx)
	return subs, errors.Trace(err)
}

func (s *catalogService) CreateShop(ctx context.Context, in CreateShopInput) (*models.Shop, error) {
	if _, err := s.users.FindByID(ctx, in.OwnerID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if _, err := s.subcategories.FindByID(ctx, in.SubcategoryID); err != nil {
		return nil, notFound(err, ErrSubcategoryNotFound)
	}

	shopSlug, err := s.uniqueSlug(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	shop := &models.Shop{
		OwnerID:            in.OwnerID,
		SubcategoryID:      in.SubcategoryID,
		Name:               strings.TrimSpace(in.Name),
		Slug:               shopSlug,
		Phone:              in.Phone,
		Address:            in.Address,
		ShiftType:          in.ShiftType,
		AverageStayMinutes: in.AverageStayMinutes,
		Capacity:           in.Capacity,
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, errors.Annotate(err, "creating shop")
	}
	logger.Infof("shop %s (%s) created by %s", shop.ID, shop.Slug, shop.OwnerID)
	return s.GetShop(ctx, shop.ID)
}

// uniqueSlug derives a slug from name, suffixing it until no shop uses it.
func (s *catalogService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "shop"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.shops.SlugTaken(ctx, candidate)
		if err != nil {
			return "", errors.Trace(err)
		}
		if !taken {
			return candidate, nil
		}
		if i > 20 {
			return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *catalogService) GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	shop, err := s.shops.FindByID(ctx, s.shops.GetDB(), id)
	if err != nil {
		return nil, notFound(err, ErrShopNotFound)
	}
	return shop, nil
}

func (s *catalogService) ListShops(ctx context.Context, filter repository.ShopFilter) ([]models.Shop, int64, error) {
	shops, total, err := s.shops.List(ctx, filter)
	return shops, total, errors.Trace(err)
}

func (s *catalogService) UpdateShop(ctx context.Context, id uuid.UUID, patch ShopPatch) (*models.Shop, error) {
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.SubcategoryID != nil {
		if _, err := s.subcategories.FindByID(ctx, *patch.SubcategoryID); err != nil {
			return nil, notFound(err, ErrSubcategoryNotFound)
		}
		fields["subcategory_id"] = *patch.SubcategoryID
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != shop.Name {
		fields["name"] = strings.TrimSpace(*patch.Name)
		newSlug, err := s.uniqueSlug(ctx, *patch.Name)
		if err != nil {
			return nil, err
		}
		fields["slug"] = newSlug
	}
	if patch.Phone != nil {
		fields["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		fields["address"] = *patch.Address
	}
	if patch.ShiftType != nil {
		fields["shift_type"] = *patch.ShiftType
	}
	if patch.AverageStayMinutes != nil {
		fields["average_stay_minutes"] = *patch.AverageStayMinutes
	}
	if patch.Capacity != nil {
		fields["capacity"] = *patch.Capacity
	}
	if len(fields) == 0 {
		return shop, nil
	}

	if err := s.shops.Update(ctx, id, fields); err != nil {
		return nil, errors.Annotate(err, "updating shop")
	}
	return s.GetShop(ctx, id)
}

func (s *catalogService) DeleteShop(ctx context.Context, id uuid.UUID) error {
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.shops.Delete(ctx, id); err != nil {
		return errors.Annotatef(err, "deleting shop %s", id)
	}
	for _, url := range []string{shop.ImageURL, shop.MenuURL} {
		s.removeObject(ctx, url)
	}
	logger.Infof("shop %s deleted", id)
	return nil
}

// UploadShopAsset stores body as the shop's image or menu and drops the
// object it replaces.
func (s *catalogService) UploadShopAsset(ctx context.Context, id uuid.UUID, kind AssetKind, filename, contentType string, body io.Reader) (*models.Shop, error) {
	if s.storage == nil {
		return nil, errors.NotSupportedf("file uploads")
	}
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("shops/%s/%s/%s%s", id, kind, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := s.storage.Put(ctx, key, body, contentType)
	if err != nil {
		return nil, errors.Trace(err)
	}

	column, previous := "image_url", shop.ImageURL
	if kind == AssetMenu {
		column, previous = "menu_url", shop.MenuURL
	}
	if err := s.shops.Update(ctx, id, map[string]any{column: url}); err != nil {
		s.removeObject(ctx, url)
		return nil, errors.Annotatef(err, "saving %s url", kind)
	}
	s.removeObject(ctx, previous)
	return s.GetShop(ctx, id)
}

func (s *catalogService) removeObject(ctx context.Context, url string) {
	if s.storage == nil || url == "" {
		return
	}
	key, ok := s.storage.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Warningf("removing %s: %v", key, err)
	}
}

func (s *catalogService) ReplaceSchedules(ctx context.Context, shopID uuid.UUID, in []ScheduleInput) ([]models.Schedule, error) {
	if _, err := s.GetShop(ctx, shopID); err != nil {
		return nil, err
	}
	schedules := make([]models.Schedule, 0, len(in))
	for _, sc := range in {
		if sc.DayOfWeek < 0 || sc.DayOfWeek > 6 {
			return nil, errors.NotValidf("day of week %d", sc.DayOfWeek)
		}
		if sc.OpensAt == sc.ClosesAt {
			return nil, errors.Trace(ErrInvalidTimeRange)
		}
		schedules = append(schedules, models.Schedule{DayOfWeek: sc.DayOfWeek, OpensAt: sc.OpensAt, ClosesAt: sc.ClosesAt})
	}
	if err := s.schedules.Replace(ctx, shopID, schedules); err != nil {
		return nil, errors.Annotate(err, "replacing schedules")
	}
	return s.ListSchedules(ctx, shopID)
}

func (s *catalogService) ListSchedules(ctx context.Context, shopID uuid.UUID) ([]models.Schedule, error) {
	schedules, err := s.schedules.ListByShop(ctx, shopID)
	return schedules, errors.Trace(err)
}
