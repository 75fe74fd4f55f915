package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

func queryInt(c echo.Context, name string) (*int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &v, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &id, nil
}

// queryDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func queryDate(c echo.Context, name string) (*time.Time, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
}

func queryEnum[T ~string](c echo.Context, name string, valid ...T) (*T, error) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	for _, v := range valid {
		if T(s) == v {
			return &v, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
}

// bookingFilter reads the booking listing filters shared by the shop and
// user listings.
func bookingFilter(c echo.Context) (repository.BookingFilter, error) {
	var (
		f   repository.BookingFilter
		err error
	)
	if f.Date, err = queryDate(c, "date"); err != nil {
		return f, err
	}
	if f.Guests, err = queryInt(c, "guests"); err != nil {
		return f, err
	}
	if f.Floor, err = queryInt(c, "floor"); err != nil {
		return f, err
	}
	if f.LocationType, err = queryEnum(c, "location_type", models.LocationInside, models.LocationOutside); err != nil {
		return f, err
	}
	if f.RoofType, err = queryEnum(c, "roof_type", models.RoofCovered, models.RoofUncovered); err != nil {
		return f, err
	}
	if f.Status, err = queryEnum(c, "status", models.StatusPending, models.StatusConfirmed, models.StatusCancelled); err != nil {
		return f, err
	}
	f.BookingCode = strings.ToUpper(c.QueryParam("booking_code"))
	return f, nil
}
