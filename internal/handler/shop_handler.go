package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/middleware"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
	"github.com/fullreservas/reservas-api/internal/service"
)

const maxListLimit = 100

// ShopLookup is the part of the catalog other handlers check ownership with.
type ShopLookup interface {
	GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

type ShopHandler struct {
	catalog  service.CatalogService
	bookings service.BookingService
	ratings  service.RatingService
}

func NewShopHandler(catalog service.CatalogService, bookings service.BookingService, ratings service.RatingService) *ShopHandler {
	return &ShopHandler{catalog: catalog, bookings: bookings, ratings: ratings}
}

func (h *ShopHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	api.GET("/subcategories", h.ListSubcategories)
	api.POST("/subcategories", h.CreateSubcategory, authn, middleware.RequireRole(staffRoles...))

	manage := []echo.MiddlewareFunc{authn, middleware.RequireRole(merchantRoles...)}
	shops := api.Group("/shops")
	shops.GET("", h.ListShops)
	shops.GET("/:id", h.GetShop)
	shops.GET("/:id/schedules", h.ListSchedules)
	shops.GET("/:id/rating-summary", h.RatingSummary)
	shops.POST("", h.CreateShop, manage...)
	shops.PATCH("/:id", h.UpdateShop, manage...)
	shops.DELETE("/:id", h.DeleteShop, manage...)
	shops.PUT("/:id/schedules", h.ReplaceSchedules, manage...)
	shops.PUT("/:id/image", h.UploadImage, manage...)
	shops.PUT("/:id/menu", h.UploadMenu, manage...)
	shops.GET("/:id/bookings", h.ListBookings, manage...)
}

func (h *ShopHandler) ListSubcategories(c echo.Context) error {
	subs, err := h.catalog.ListSubcategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *ShopHandler) CreateSubcategory(c echo.Context) error {
	var req dto.CreateSubcategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.catalog.CreateSubcategory(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *ShopHandler) ListShops(c echo.Context) error {
	var (
		filter repository.ShopFilter
		err    error
	)
	if filter.SubcategoryID, err = queryUUID(c, "subcategory_id"); err != nil {
		return err
	}
	if filter.OwnerID, err = queryUUID(c, "owner_id"); err != nil {
		return err
	}
	if filter.ShiftType, err = queryEnum(c, "shift_type", models.ShiftSingle, models.ShiftDouble, models.ShiftContinuous); err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}
	filter.Limit = 20
	if limit != nil && *limit > 0 {
		filter.Limit = min(*limit, maxListLimit)
	}
	if offset != nil && *offset > 0 {
		filter.Offset = *offset
	}

	shops, total, err := h.catalog.ListShops(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.Page[models.Shop]{Items: shops, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *ShopHandler) GetShop(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	shop, err := h.catalog.GetShop(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) CreateShop(c echo.Context) error {
	var req dto.CreateShopRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	claims, err := caller(c)
	if err != nil {
		return err
	}
	owner := claims.UserID()
	if req.OwnerID != nil && isStaff(claims) {
		owner = *req.OwnerID
	}

	shop, err := h.catalog.CreateShop(c.Request().Context(), service.CreateShopInput{
		OwnerID:            owner,
		SubcategoryID:      req.SubcategoryID,
		Name:               req.Name,
		Phone:              req.Phone,
		Address:            req.Address,
		ShiftType:          req.ShiftType,
		AverageStayMinutes: req.AverageStayMinutes,
		Capacity:           req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, shop)
}

// managedShop loads the :id shop and checks the caller may manage it.
func (h *ShopHandler) managedShop(c echo.Context) (*models.Shop, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	shop, err := h.catalog.GetShop(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := requireShopManager(c, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (h *ShopHandler) UpdateShop(c echo.Context) error {
	shop, err := h.managedShop(c)
	if err != nil {
		return err
	}
	var req dto.UpdateShopRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := h.catalog.UpdateShop(c.Request().Context(), shop.ID, service.ShopPatch{
		SubcategoryID:      req.SubcategoryID,
		Name:               req.Name,
		Phone:              req.Phone,
		Address:            req.Address,
		ShiftType:          req.ShiftType,
		AverageStayMinutes: req.AverageStayMinutes,
		Capacity:           req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ShopHandler) DeleteShop(c echo.Context) error {
	shop, err := h.managedShop(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteShop(c.Request().Context(), shop.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ShopHandler) ListSchedules(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	schedules, err := h.catalog.ListSchedules(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedules)
}

func (h *ShopHandler) ReplaceSchedules(c echo.Context) error {
	shop, err := h.managedShop(c)
	if err != nil {
		return err
	}
	var req dto.ReplaceSchedulesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := make([]service.ScheduleInput, 0, len(req.Schedules))
	for _, item := range req.Schedules {
		opens, err := dto.ParseClock(item.OpensAt)
		if err != nil {
			return err
		}
		closes, err := dto.ParseClock(item.ClosesAt)
		if err != nil {
			return err
		}
		in = append(in, service.ScheduleInput{DayOfWeek: item.DayOfWeek, OpensAt: opens, ClosesAt: closes})
	}

	schedules, err := h.catalog.ReplaceSchedules(c.Request().Context(), shop.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schedules)
}

func (h *ShopHandler) UploadImage(c echo.Context) error {
	return h.upload(c, service.AssetImage)
}

func (h *ShopHandler) UploadMenu(c echo.Context) error {
	return h.upload(c, service.AssetMenu)
}

func (h *ShopHandler) upload(c echo.Context, kind service.AssetKind) error {
	shop, err := h.managedShop(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	updated, err := h.catalog.UploadShopAsset(c.Request().Context(), shop.ID, kind, fh.Filename, contentType, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ShopHandler) ListBookings(c echo.Context) error {
	shop, err := h.managedShop(c)
	if err != nil {
		return err
	}
	filter, err := bookingFilter(c)
	if err != nil {
		return err
	}
	filter.ShopID = &shop.ID

	bookings, err := h.bookings.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) RatingSummary(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.catalog.GetShop(c.Request().Context(), id); err != nil {
		return err
	}
	summary, err := h.ratings.ShopSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
