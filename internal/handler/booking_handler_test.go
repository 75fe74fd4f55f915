package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullreservas/reservas-api/internal/auth"
	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/service"
)

var (
	customerID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	ownerID    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	shopID     = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	slotID     = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	bookingID  = uuid.MustParse("55555555-5555-5555-5555-555555555555")
)

func testShops() *mockShopLookup {
	return &mockShopLookup{shops: map[uuid.UUID]*models.Shop{
		shopID: {Base: models.Base{ID: shopID}, OwnerID: ownerID, Name: "La Esquina"},
	}}
}

func pendingBooking() *models.Booking {
	return &models.Booking{
		Base:         models.Base{ID: bookingID},
		UserID:       customerID,
		ShopID:       shopID,
		BookedSlotID: slotID,
		Date:         time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC),
		Guests:       4,
		BookingCode:  "AB12",
		Status:       models.StatusPending,
	}
}

func TestCreateBooking_Handler_Success(t *testing.T) {
	var got service.CreateBookingInput
	svc := &mockBookingService{
		createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
			got = in
			b := pendingBooking()
			b.Guests = in.Guests
			return b, nil
		},
	}

	body := `{"shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() +
		`","date":"2026-11-14T19:00:00Z","guests":4,"location_type":"INSIDE"}`
	c, rec := newContext(http.MethodPost, "/api/bookings", body, claimsFor(customerID, models.RoleCustomer))

	h := NewBookingHandler(svc, testShops())
	err := h.CreateBooking(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, customerID, got.UserID)
	require.NotNil(t, got.Seating.LocationType)
	assert.Equal(t, models.LocationInside, *got.Seating.LocationType)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, bookingID, resp.ID)
	assert.Equal(t, models.StatusPending, resp.Status)
	assert.Equal(t, "AB12", resp.BookingCode)
}

func TestCreateBooking_Handler_Errors(t *testing.T) {
	cases := map[string]struct {
		body   string
		svcErr error
		want   int
	}{
		"shop not found": {
			body:   `{"shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() + `","date":"2026-11-14T19:00:00Z","guests":2}`,
			svcErr: errors.Annotate(service.ErrShopNotFound, "shop"),
			want:   http.StatusNotFound,
		},
		"slot full": {
			body:   `{"shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() + `","date":"2026-11-14T19:00:00Z","guests":2}`,
			svcErr: errors.Annotatef(service.ErrSlotFull, "%d of %d seats taken", 9, 10),
			want:   http.StatusConflict,
		},
		"outside slot": {
			body:   `{"shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() + `","date":"2026-11-14T23:00:00Z","guests":2}`,
			svcErr: errors.Trace(service.ErrOutsideSlot),
			want:   http.StatusBadRequest,
		},
		"zero guests": {
			body: `{"shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() + `","date":"2026-11-14T19:00:00Z","guests":0}`,
			want: http.StatusBadRequest,
		},
		"missing shop": {
			body: `{"booked_slot_id":"` + slotID.String() + `","date":"2026-11-14T19:00:00Z","guests":2}`,
			want: http.StatusBadRequest,
		},
		"bad code": {
			body: `{"shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() + `","date":"2026-11-14T19:00:00Z","guests":2,"booking_code":"A-1"}`,
			want: http.StatusBadRequest,
		},
		"malformed": {
			body: `{"guests":`,
			want: http.StatusBadRequest,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockBookingService{
				createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
					if tc.svcErr == nil {
						t.Fatal("service should not be reached")
					}
					return nil, tc.svcErr
				},
			}
			c, rec := newContext(http.MethodPost, "/api/bookings", tc.body, claimsFor(customerID, models.RoleCustomer))

			err := NewBookingHandler(svc, testShops()).CreateBooking(c)

			assert.Equal(t, tc.want, respond(c, rec, err))
		})
	}
}

func TestCreateBooking_Handler_OnBehalfRequiresStaff(t *testing.T) {
	other := uuid.New()
	var got uuid.UUID
	svc := &mockBookingService{
		createFn: func(ctx context.Context, in service.CreateBookingInput) (*models.Booking, error) {
			got = in.UserID
			return pendingBooking(), nil
		},
	}
	body := `{"user_id":"` + other.String() + `","shop_id":"` + shopID.String() + `","booked_slot_id":"` + slotID.String() +
		`","date":"2026-11-14T19:00:00Z","guests":2}`

	c, rec := newContext(http.MethodPost, "/api/bookings", body, claimsFor(customerID, models.RoleCustomer))
	err := NewBookingHandler(svc, testShops()).CreateBooking(c)
	assert.Equal(t, http.StatusForbidden, respond(c, rec, err))

	c, rec = newContext(http.MethodPost, "/api/bookings", body, claimsFor(uuid.New(), models.RoleOperator))
	err = NewBookingHandler(svc, testShops()).CreateBooking(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, other, got)
}

func TestGetBooking_Handler_Access(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
			if id != bookingID {
				return nil, service.ErrBookingNotFound
			}
			return pendingBooking(), nil
		},
	}
	cases := map[string]struct {
		id     uuid.UUID
		claims *auth.Claims
		want   int
	}{
		"customer":       {bookingID, claimsFor(customerID, models.RoleCustomer), http.StatusOK},
		"shop owner":     {bookingID, claimsFor(ownerID, models.RoleMerchant), http.StatusOK},
		"admin":          {bookingID, claimsFor(uuid.New(), models.RoleAdmin), http.StatusOK},
		"other customer": {bookingID, claimsFor(uuid.New(), models.RoleCustomer), http.StatusForbidden},
		"other merchant": {bookingID, claimsFor(uuid.New(), models.RoleMerchant), http.StatusForbidden},
		"missing":        {uuid.New(), claimsFor(customerID, models.RoleCustomer), http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/api/bookings/"+tc.id.String(), "", tc.claims)
			c.SetParamNames("id")
			c.SetParamValues(tc.id.String())

			err := NewBookingHandler(svc, testShops()).GetBooking(c)

			assert.Equal(t, tc.want, respond(c, rec, err))
		})
	}
}

func TestGetBooking_Handler_InvalidID(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/bookings/abc", "", claimsFor(customerID))
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := NewBookingHandler(&mockBookingService{}, testShops()).GetBooking(c)

	assert.Equal(t, http.StatusBadRequest, respond(c, rec, err))
}

func TestEditBooking_Handler_Confirm(t *testing.T) {
	var patch service.BookingPatch
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) { return pendingBooking(), nil },
		editFn: func(ctx context.Context, id uuid.UUID, p service.BookingPatch) (*models.Booking, error) {
			patch = p
			b := pendingBooking()
			b.Status = *p.Status
			return b, nil
		},
	}
	c, rec := newContext(http.MethodPatch, "/api/bookings/"+bookingID.String(), `{"status":"CONFIRMED"}`, claimsFor(ownerID, models.RoleMerchant))
	c.SetParamNames("id")
	c.SetParamValues(bookingID.String())

	err := NewBookingHandler(svc, testShops()).EditBooking(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, patch.Status)
	assert.Equal(t, models.StatusConfirmed, *patch.Status)
	assert.Nil(t, patch.Guests)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusConfirmed, resp.Status)
}

func TestEditBooking_Handler_ConfirmRequiresManager(t *testing.T) {
	var edited int
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) { return pendingBooking(), nil },
		editFn: func(ctx context.Context, id uuid.UUID, p service.BookingPatch) (*models.Booking, error) {
			edited++
			b := pendingBooking()
			b.Status = *p.Status
			return b, nil
		},
	}
	tests := []struct {
		name   string
		body   string
		claims *auth.Claims
		want   int
	}{
		{"customer cannot confirm", `{"status":"CONFIRMED"}`, claimsFor(customerID, models.RoleCustomer), http.StatusForbidden},
		{"customer may cancel", `{"status":"CANCELLED"}`, claimsFor(customerID, models.RoleCustomer), http.StatusOK},
		{"operator confirms", `{"status":"CONFIRMED"}`, claimsFor(uuid.New(), models.RoleOperator), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPatch, "/api/bookings/"+bookingID.String(), tt.body, tt.claims)
			c.SetParamNames("id")
			c.SetParamValues(bookingID.String())

			err := NewBookingHandler(svc, testShops()).EditBooking(c)

			assert.Equal(t, tt.want, respond(c, rec, err))
		})
	}
	assert.Equal(t, 2, edited)
}

func TestEditBooking_Handler_RejectsBadPatches(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) { return pendingBooking(), nil },
		editFn: func(ctx context.Context, id uuid.UUID, p service.BookingPatch) (*models.Booking, error) {
			return nil, errors.Annotatef(service.ErrInvalidTransition, "CONFIRMED to PENDING")
		},
	}
	cases := map[string]struct {
		body string
		want int
	}{
		"unknown field":      {`{"status":"CONFIRMED","user_id":"x"}`, http.StatusBadRequest},
		"empty patch":        {`{}`, http.StatusBadRequest},
		"unknown status":     {`{"status":"DONE"}`, http.StatusBadRequest},
		"zero guests":        {`{"guests":0}`, http.StatusBadRequest},
		"invalid transition": {`{"status":"PENDING"}`, http.StatusConflict},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newContext(http.MethodPatch, "/api/bookings/"+bookingID.String(), tc.body, claimsFor(customerID, models.RoleCustomer))
			c.SetParamNames("id")
			c.SetParamValues(bookingID.String())

			err := NewBookingHandler(svc, testShops()).EditBooking(c)

			assert.Equal(t, tc.want, respond(c, rec, err))
		})
	}
}

func TestDeleteBooking_Handler(t *testing.T) {
	deleted := false
	svc := &mockBookingService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
			if id != bookingID {
				return nil, errors.Trace(service.ErrBookingNotFound)
			}
			return pendingBooking(), nil
		},
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/api/bookings/"+bookingID.String(), "", claimsFor(customerID, models.RoleCustomer))
	c.SetParamNames("id")
	c.SetParamValues(bookingID.String())
	err := NewBookingHandler(svc, testShops()).DeleteBooking(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)

	missing := uuid.New()
	c, rec = newContext(http.MethodDelete, "/api/bookings/"+missing.String(), "", claimsFor(customerID, models.RoleCustomer))
	c.SetParamNames("id")
	c.SetParamValues(missing.String())
	err = NewBookingHandler(svc, testShops()).DeleteBooking(c)
	assert.Equal(t, http.StatusNotFound, respond(c, rec, err))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "booking not found", body.Message)
}
