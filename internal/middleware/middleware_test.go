package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/auth"
	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/service"
)

func newContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/api/bookings", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.Annotate(service.ErrShopNotFound, "creating booking"), http.StatusNotFound},
		{errors.Trace(gorm.ErrRecordNotFound), http.StatusNotFound},
		{errors.Annotatef(service.ErrSlotFull, "%d of %d seats taken", 10, 10), http.StatusConflict},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrBookingCodeTaken, http.StatusConflict},
		{errors.NotValidf("guests 0"), http.StatusBadRequest},
		{service.ErrOutsideSlot, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.Unauthorizedf("invalid token"), http.StatusUnauthorized},
		{errors.Forbiddenf("shop"), http.StatusForbidden},
		{errors.NotSupportedf("file uploads"), http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), "%v", tc.err)
	}
}

func TestErrorHandler_DomainMessage(t *testing.T) {
	c, rec := newContext(http.MethodPost)

	ErrorHandler(errors.Annotatef(service.ErrSlotFull, "10 of 10 seats taken"), c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "slot is fully booked")
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	c, rec := newContext(http.MethodGet)

	ErrorHandler(errors.New("pq: connection refused"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	c, rec := newContext(http.MethodGet)

	ErrorHandler(echo.NewHTTPError(http.StatusBadRequest, "invalid id"), c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid id"}`, rec.Body.String())
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()
	tok, err := auth.IssueToken(secret, userID, []string{"MERCHANT"}, time.Now(), time.Hour)
	require.NoError(t, err)

	var seen *auth.Claims
	next := func(c echo.Context) error {
		seen = ClaimsFrom(c)
		return c.NoContent(http.StatusOK)
	}
	h := JWTAuth(secret)(next)

	c, rec := newContext(http.MethodGet)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, userID, seen.UserID())

	for _, header := range []string{"", "Bearer ", "Token " + tok.Token, "Bearer garbage"} {
		c, _ := newContext(http.MethodGet)
		c.Request().Header.Set(echo.HeaderAuthorization, header)
		err := h(c)
		assert.Equal(t, http.StatusUnauthorized, StatusCode(err), "header %q", header)
	}

	other, err := auth.IssueToken("other-secret", userID, nil, time.Now(), time.Hour)
	require.NoError(t, err)
	c, _ = newContext(http.MethodGet)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(h(c)))
}

func TestRequireRole(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	h := RequireRole("OPERATOR", "ADMIN")(ok)

	c, _ := newContext(http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(h(c)))

	c, _ = newContext(http.MethodGet)
	SetClaims(c, &auth.Claims{Roles: []string{"CUSTOMER"}})
	assert.Equal(t, http.StatusForbidden, StatusCode(h(c)))

	c, rec := newContext(http.MethodGet)
	SetClaims(c, &auth.Claims{Roles: []string{"ADMIN"}})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type shape struct {
	Name  string `validate:"required"`
	Count int    `validate:"gte=1"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&shape{Name: "x", Count: 1}))

	err := v.Validate(&shape{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "Name failed required")
	assert.Contains(t, err.Error(), "Count failed gte=1")
}
