package middleware

import (
	"net/http"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/service"
)

var logger = loggo.GetLogger("fullreservas.http")

var (
	notFoundErrors = []error{
		errors.NotFound,
		gorm.ErrRecordNotFound,
		service.ErrUserNotFound,
		service.ErrRoleNotFound,
		service.ErrShopNotFound,
		service.ErrSubcategoryNotFound,
		service.ErrSlotNotFound,
		service.ErrTableNotFound,
		service.ErrClosedDayNotFound,
		service.ErrBookingNotFound,
		service.ErrRatingNotFound,
		service.ErrMembershipNotFound,
	}
	conflictErrors = []error{
		errors.AlreadyExists,
		service.ErrEmailTaken,
		service.ErrSubcategoryExists,
		service.ErrShopClosed,
		service.ErrSlotFull,
		service.ErrNoTablesAvailable,
		service.ErrBookingCodeTaken,
		service.ErrInvalidTransition,
		service.ErrBookingCancelled,
		service.ErrRatingCompleted,
		service.ErrSlotInUse,
		service.ErrTableInUse,
		service.ErrMembershipCancelled,
	}
	badRequestErrors = []error{
		errors.NotValid,
		errors.BadRequest,
		service.ErrSlotNotInShop,
		service.ErrOutsideSlot,
		service.ErrDateInPast,
		service.ErrNotMerchant,
		service.ErrInvalidTimeRange,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StatusCode maps a domain error to the HTTP status it is reported with.
func StatusCode(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.Forbidden):
		return http.StatusForbidden
	case errors.Is(err, errors.NotSupported), errors.Is(err, errors.NotImplemented):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := StatusCode(err)
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %s", c.Request().Method, c.Request().URL.Path, errors.ErrorStack(err))
		if _, ok := err.(*echo.HTTPError); !ok {
			msg = "internal server error"
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
