package handler

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/service"
)

type BookingHandler struct {
	svc   service.BookingService
	shops ShopLookup
}

func NewBookingHandler(svc service.BookingService, shops ShopLookup) *BookingHandler {
	return &BookingHandler{svc: svc, shops: shops}
}

func (h *BookingHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	g := api.Group("/bookings", authn)
	g.POST("", h.CreateBooking)
	g.GET("/:id", h.GetBooking)
	g.PATCH("/:id", h.EditBooking)
	g.DELETE("/:id", h.DeleteBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	claims, err := caller(c)
	if err != nil {
		return err
	}
	userID := claims.UserID()
	if req.UserID != nil && *req.UserID != userID {
		if !isStaff(claims) {
			return errors.Forbiddenf("booking for another user")
		}
		userID = *req.UserID
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		UserID:       userID,
		ShopID:       req.ShopID,
		BookedSlotID: req.BookedSlotID,
		Date:         req.Date,
		Guests:       req.Guests,
		Seating: service.Seating{
			LocationType: req.LocationType,
			Floor:        req.Floor,
			RoofType:     req.RoofType,
		},
		BookingCode: req.BookingCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// authorized loads the :id booking for its customer, staff, or the owner of
// the booked shop.
func (h *BookingHandler) authorized(c echo.Context) (*models.Booking, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	claims, err := caller(c)
	if err != nil {
		return nil, err
	}
	ctx := c.Request().Context()
	booking, err := h.svc.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID == claims.UserID() || isStaff(claims) {
		return booking, nil
	}
	if err := h.requireManager(c, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// requireManager allows staff and the merchant owning the booking's shop.
func (h *BookingHandler) requireManager(c echo.Context, booking *models.Booking) error {
	shop, err := h.shops.GetShop(c.Request().Context(), booking.ShopID)
	if err != nil {
		return err
	}
	if err := requireShopManager(c, shop); err != nil {
		return errors.Forbiddenf("booking %s", booking.ID)
	}
	return nil
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.authorized(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) EditBooking(c echo.Context) error {
	req, err := dto.DecodeBookingPatch(c.Request().Body)
	if err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	booking, err := h.authorized(c)
	if err != nil {
		return err
	}
	if req.Status != nil && *req.Status == models.StatusConfirmed && booking.Status != models.StatusConfirmed {
		if err := h.requireManager(c, booking); err != nil {
			return err
		}
	}

	updated, err := h.svc.EditBooking(c.Request().Context(), booking.ID, service.BookingPatch{
		Date:         req.Date,
		Guests:       req.Guests,
		LocationType: req.LocationType,
		Floor:        req.Floor,
		RoofType:     req.RoofType,
		Status:       req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(updated))
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	booking, err := h.authorized(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBooking(c.Request().Context(), booking.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
