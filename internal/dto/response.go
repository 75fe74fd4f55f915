package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fullreservas/reservas-api/internal/auth"
	"github.com/fullreservas/reservas-api/internal/models"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
	Roles []string  `json:"roles"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone, Roles: u.RoleCodes()}
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

func ToAuthResponse(u *models.User, tok auth.Token) AuthResponse {
	return AuthResponse{User: ToUserResponse(u), AccessToken: tok.Token, ExpiresAt: tok.ExpiresAt}
}

type BookedTableResponse struct {
	TableID      uuid.UUID           `json:"table_id"`
	Quantity     int                 `json:"quantity"`
	Guests       int                 `json:"guests"`
	Capacity     int                 `json:"capacity,omitempty"`
	LocationType models.LocationType `json:"location_type,omitempty"`
}

type BookingResponse struct {
	ID           uuid.UUID             `json:"id"`
	UserID       uuid.UUID             `json:"user_id"`
	ShopID       uuid.UUID             `json:"shop_id"`
	BookedSlotID uuid.UUID             `json:"booked_slot_id"`
	Date         time.Time             `json:"date"`
	Guests       int                   `json:"guests"`
	LocationType *models.LocationType  `json:"location_type,omitempty"`
	Floor        *int                  `json:"floor,omitempty"`
	RoofType     *models.RoofType      `json:"roof_type,omitempty"`
	BookingCode  string                `json:"booking_code"`
	Status       models.BookingStatus  `json:"status"`
	Tables       []BookedTableResponse `json:"tables,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		ShopID:       b.ShopID,
		BookedSlotID: b.BookedSlotID,
		Date:         b.Date,
		Guests:       b.Guests,
		LocationType: b.LocationType,
		Floor:        b.Floor,
		RoofType:     b.RoofType,
		BookingCode:  b.BookingCode,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	for _, bt := range b.BookedTables {
		t := BookedTableResponse{TableID: bt.TableID, Quantity: bt.Quantity, Guests: bt.Guests}
		if bt.Table != nil {
			t.Capacity = bt.Table.Capacity
			t.LocationType = bt.Table.LocationType
		}
		resp.Tables = append(resp.Tables, t)
	}
	return resp
}

// UserBookingResponse is a booking as listed for its customer, with the
// shop, slot and rating details the listing needs.
type UserBookingResponse struct {
	BookingResponse
	ShopName      string          `json:"shop_name"`
	SlotStartTime string          `json:"slot_start_time"`
	Rating        *RatingResponse `json:"rating,omitempty"`
}

func ToUserBookingResponse(b *models.Booking) UserBookingResponse {
	resp := UserBookingResponse{BookingResponse: ToBookingResponse(b)}
	if b.Shop != nil {
		resp.ShopName = b.Shop.Name
	}
	if b.Slot != nil {
		resp.SlotStartTime = b.Slot.StartTime.String()
	}
	if b.Rating != nil {
		r := ToRatingResponse(b.Rating)
		resp.Rating = &r
	}
	return resp
}

type RatingResponse struct {
	ID        uuid.UUID           `json:"id"`
	BookingID uuid.UUID           `json:"booking_id"`
	ShopID    uuid.UUID           `json:"shop_id"`
	UserID    uuid.UUID           `json:"user_id"`
	Rating    float64             `json:"rating"`
	Comment   string              `json:"comment,omitempty"`
	Status    models.RatingStatus `json:"status"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func ToRatingResponse(r *models.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		BookingID: r.BookingID,
		ShopID:    r.ShopID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		Status:    r.Status,
		UpdatedAt: r.UpdatedAt,
	}
}
