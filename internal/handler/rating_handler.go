package handler

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
	"github.com/fullreservas/reservas-api/internal/service"
)

type RatingHandler struct {
	svc service.RatingService
}

func NewRatingHandler(svc service.RatingService) *RatingHandler {
	return &RatingHandler{svc: svc}
}

func (h *RatingHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	g := api.Group("/ratings", authn)
	g.GET("", h.ListRatings)
	g.PATCH("/:id", h.SubmitRating)
}

// ListRatings filters by booking, shop, user and status. Customers only
// see their own ratings.
func (h *RatingHandler) ListRatings(c echo.Context) error {
	claims, err := caller(c)
	if err != nil {
		return err
	}
	var filter repository.RatingFilter
	if filter.BookingID, err = queryUUID(c, "booking_id"); err != nil {
		return err
	}
	if filter.ShopID, err = queryUUID(c, "shop_id"); err != nil {
		return err
	}
	if filter.UserID, err = queryUUID(c, "user_id"); err != nil {
		return err
	}
	if filter.Status, err = queryEnum(c, "status", models.RatingPending, models.RatingCompleted); err != nil {
		return err
	}
	if !isStaff(claims) && filter.ShopID == nil {
		self := claims.UserID()
		filter.UserID = &self
	}

	ratings, err := h.svc.ListRatings(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.RatingResponse, len(ratings))
	for i := range ratings {
		resp[i] = dto.ToRatingResponse(&ratings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) SubmitRating(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubmitRatingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	claims, err := caller(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	rating, err := h.svc.GetRating(ctx, id)
	if err != nil {
		return err
	}
	if rating.UserID != claims.UserID() {
		return errors.Forbiddenf("rating %s", id)
	}

	updated, err := h.svc.SubmitRating(ctx, id, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToRatingResponse(updated))
}
