package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/middleware"
	"github.com/fullreservas/reservas-api/internal/service"
)

type UserHandler struct {
	users       service.IdentityService
	bookings    service.BookingService
	memberships service.MembershipService
}

func NewUserHandler(users service.IdentityService, bookings service.BookingService, memberships service.MembershipService) *UserHandler {
	return &UserHandler{users: users, bookings: bookings, memberships: memberships}
}

func (h *UserHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	g := api.Group("/users", authn)
	g.GET("/:id", h.GetUser)
	g.POST("/:id/roles", h.AssignRole, middleware.RequireRole(adminRoles...))
	g.GET("/:id/bookings", h.ListBookings)
	g.GET("/:id/membership", h.GetMembership)
	g.PUT("/:id/membership", h.Subscribe, middleware.RequireRole(staffRoles...))
	g.DELETE("/:id/membership", h.CancelMembership, middleware.RequireRole(staffRoles...))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelfOrStaff(c, id); err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) AssignRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.AssignRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// ListBookings lists a customer's bookings by date with shop, slot and rating.
func (h *UserHandler) ListBookings(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelfOrStaff(c, id); err != nil {
		return err
	}
	filter, err := bookingFilter(c)
	if err != nil {
		return err
	}
	filter.UserID = &id

	bookings, err := h.bookings.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	resp := make([]dto.UserBookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToUserBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetMembership(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := requireSelfOrStaff(c, id); err != nil {
		return err
	}

	m, err := h.memberships.GetMembership(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *UserHandler) Subscribe(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubscribeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	m, err := h.memberships.Subscribe(c.Request().Context(), id, req.Tier, req.Periods)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *UserHandler) CancelMembership(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	m, err := h.memberships.CancelMembership(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}
