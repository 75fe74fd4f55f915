package dto

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"gorm.io/datatypes"

	"github.com/fullreservas/reservas-api/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Merchant bool   `json:"merchant"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AssignRoleRequest struct {
	Role models.RoleCode `json:"role" validate:"required,oneof=CUSTOMER MERCHANT OPERATOR ADMIN"`
}

type SubscribeRequest struct {
	Tier    models.MembershipTier `json:"tier" validate:"required,oneof=BASIC SILVER GOLD"`
	Periods int                   `json:"periods" validate:"gte=0,lte=24"`
}

type CreateSubcategoryRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type CreateShopRequest struct {
	// OwnerID is honoured for operators and admins only.
	OwnerID            *uuid.UUID       `json:"owner_id"`
	SubcategoryID      uuid.UUID        `json:"subcategory_id" validate:"required"`
	Name               string           `json:"name" validate:"required,max=255"`
	Phone              string           `json:"phone" validate:"omitempty,max=32"`
	Address            string           `json:"address"`
	ShiftType          models.ShiftType `json:"shift_type" validate:"required,oneof=SINGLE DOUBLE CONTINUOUS"`
	AverageStayMinutes int              `json:"average_stay_minutes" validate:"gt=0"`
	Capacity           int              `json:"capacity" validate:"gt=0"`
}

type UpdateShopRequest struct {
	SubcategoryID      *uuid.UUID        `json:"subcategory_id"`
	Name               *string           `json:"name" validate:"omitempty,min=1,max=255"`
	Phone              *string           `json:"phone" validate:"omitempty,max=32"`
	Address            *string           `json:"address"`
	ShiftType          *models.ShiftType `json:"shift_type" validate:"omitempty,oneof=SINGLE DOUBLE CONTINUOUS"`
	AverageStayMinutes *int              `json:"average_stay_minutes" validate:"omitempty,gt=0"`
	Capacity           *int              `json:"capacity" validate:"omitempty,gt=0"`
}

type ScheduleItem struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	OpensAt   string `json:"opens_at" validate:"required"`
	ClosesAt  string `json:"closes_at" validate:"required"`
}

type ReplaceSchedulesRequest struct {
	Schedules []ScheduleItem `json:"schedules" validate:"dive"`
}

type CreateSlotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Capacity  int    `json:"capacity" validate:"gt=0"`
}

type UpdateSlotRequest struct {
	Capacity int `json:"capacity" validate:"gt=0"`
}

type CreateTableRequest struct {
	LocationType models.LocationType `json:"location_type" validate:"required,oneof=INSIDE OUTSIDE"`
	Floor        int                 `json:"floor" validate:"gte=0"`
	RoofType     models.RoofType     `json:"roof_type" validate:"required,oneof=COVERED UNCOVERED"`
	Capacity     int                 `json:"capacity" validate:"gt=0"`
	Quantity     int                 `json:"quantity" validate:"gt=0"`
}

type ClosedDaysRequest struct {
	Days []int `json:"days" validate:"required,min=1,dive,min=0,max=6"`
}

type CreateBookingRequest struct {
	// UserID lets operators and admins book on behalf of a customer.
	UserID       *uuid.UUID           `json:"user_id"`
	ShopID       uuid.UUID            `json:"shop_id" validate:"required"`
	BookedSlotID uuid.UUID            `json:"booked_slot_id" validate:"required"`
	Date         time.Time            `json:"date" validate:"required"`
	Guests       int                  `json:"guests" validate:"gte=1"`
	LocationType *models.LocationType `json:"location_type" validate:"omitempty,oneof=INSIDE OUTSIDE"`
	Floor        *int                 `json:"floor" validate:"omitempty,gte=0"`
	RoofType     *models.RoofType     `json:"roof_type" validate:"omitempty,oneof=COVERED UNCOVERED"`
	BookingCode  string               `json:"booking_code" validate:"omitempty,len=4,alphanum"`
}

// BookingPatchRequest is the allow-list of booking fields a PATCH may set.
type BookingPatchRequest struct {
	Date         *time.Time            `json:"date"`
	Guests       *int                  `json:"guests" validate:"omitempty,gte=1"`
	LocationType *models.LocationType  `json:"location_type" validate:"omitempty,oneof=INSIDE OUTSIDE"`
	Floor        *int                  `json:"floor" validate:"omitempty,gte=0"`
	RoofType     *models.RoofType      `json:"roof_type" validate:"omitempty,oneof=COVERED UNCOVERED"`
	Status       *models.BookingStatus `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}

func (r BookingPatchRequest) Empty() bool {
	return r.Date == nil && r.Guests == nil && r.LocationType == nil && r.Floor == nil && r.RoofType == nil && r.Status == nil
}

// DecodeBookingPatch reads a patch body, rejecting fields outside the allow-list.
func DecodeBookingPatch(body io.Reader) (BookingPatchRequest, error) {
	var req BookingPatchRequest
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.NewNotValid(err, "invalid booking patch")
	}
	if req.Empty() {
		return req, errors.NotValidf("empty booking patch")
	}
	return req, nil
}

type SubmitRatingRequest struct {
	Rating  float64 `json:"rating" validate:"gte=1,lte=5"`
	Comment string  `json:"comment" validate:"max=1000"`
}

// ParseClock parses a time of day written as HH:MM or HH:MM:SS.
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, errors.NotValidf("time of day %q", s)
}
