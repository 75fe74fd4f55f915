package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/auth"
	"github.com/fullreservas/reservas-api/internal/middleware"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
	"github.com/fullreservas/reservas-api/internal/service"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn       func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	listFn         func(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
	editFn         func(ctx context.Context, id uuid.UUID, patch service.BookingPatch) (*models.Booking, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	availabilityFn func(ctx context.Context, slotID uuid.UUID, date time.Time) (*service.Availability, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, in)
}
func (m *mockBookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return m.getFn(ctx, id)
}
func (m *mockBookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	return m.listFn(ctx, filter)
}
func (m *mockBookingService) EditBooking(ctx context.Context, id uuid.UUID, patch service.BookingPatch) (*models.Booking, error) {
	return m.editFn(ctx, id, patch)
}
func (m *mockBookingService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}
func (m *mockBookingService) SlotAvailability(ctx context.Context, slotID uuid.UUID, date time.Time) (*service.Availability, error) {
	return m.availabilityFn(ctx, slotID, date)
}

// --- Mock ShopLookup ---

type mockShopLookup struct {
	shops map[uuid.UUID]*models.Shop
}

func (m *mockShopLookup) GetShop(_ context.Context, id uuid.UUID) (*models.Shop, error) {
	if s, ok := m.shops[id]; ok {
		return s, nil
	}
	return nil, service.ErrShopNotFound
}

// --- Mock IdentityService ---

type mockIdentityService struct {
	registerFn func(ctx context.Context, in service.RegisterInput) (*models.User, error)
	loginFn    func(ctx context.Context, email, password string) (*service.LoginResult, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.User, error)
	assignFn   func(ctx context.Context, userID uuid.UUID, code models.RoleCode) (*models.User, error)
}

func (m *mockIdentityService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	return m.registerFn(ctx, in)
}
func (m *mockIdentityService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return m.loginFn(ctx, email, password)
}
func (m *mockIdentityService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.getFn(ctx, id)
}
func (m *mockIdentityService) AssignRole(ctx context.Context, userID uuid.UUID, code models.RoleCode) (*models.User, error) {
	return m.assignFn(ctx, userID, code)
}

// --- Mock RatingService ---

type mockRatingService struct {
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Rating, error)
	listFn    func(ctx context.Context, filter repository.RatingFilter) ([]models.Rating, error)
	submitFn  func(ctx context.Context, id uuid.UUID, value float64, comment string) (*models.Rating, error)
	summaryFn func(ctx context.Context, shopID uuid.UUID) (repository.RatingSummary, error)
}

func (m *mockRatingService) GetRating(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	return m.getFn(ctx, id)
}
func (m *mockRatingService) ListRatings(ctx context.Context, filter repository.RatingFilter) ([]models.Rating, error) {
	return m.listFn(ctx, filter)
}
func (m *mockRatingService) SubmitRating(ctx context.Context, id uuid.UUID, value float64, comment string) (*models.Rating, error) {
	return m.submitFn(ctx, id, value, comment)
}
func (m *mockRatingService) ShopSummary(ctx context.Context, shopID uuid.UUID) (repository.RatingSummary, error) {
	return m.summaryFn(ctx, shopID)
}

// --- Mock InventoryService ---

type mockInventoryService struct {
	service.InventoryService
	registerClosedFn func(ctx context.Context, shopID uuid.UUID, days []int) ([]models.ClosedDay, error)
	listSlotsFn      func(ctx context.Context, shopID uuid.UUID, minCapacity int) ([]models.AvailableSlot, error)
}

func (m *mockInventoryService) RegisterClosedDays(ctx context.Context, shopID uuid.UUID, days []int) ([]models.ClosedDay, error) {
	return m.registerClosedFn(ctx, shopID, days)
}
func (m *mockInventoryService) ListSlots(ctx context.Context, shopID uuid.UUID, minCapacity int) ([]models.AvailableSlot, error) {
	return m.listSlotsFn(ctx, shopID, minCapacity)
}

// --- Helpers ---

func claimsFor(id uuid.UUID, roles ...models.RoleCode) *auth.Claims {
	codes := make([]string, len(roles))
	for i, r := range roles {
		codes[i] = string(r)
	}
	return &auth.Claims{Roles: codes, RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}}
}

func newContext(method, target, body string, claims *auth.Claims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = middleware.NewValidator()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		middleware.SetClaims(c, claims)
	}
	return c, rec
}

// respond runs err through the API error handler and returns the status code.
func respond(c echo.Context, rec *httptest.ResponseRecorder, err error) int {
	if err != nil {
		middleware.ErrorHandler(err, c)
	}
	return rec.Code
}
