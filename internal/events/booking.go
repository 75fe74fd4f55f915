package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingUpdated   = "booking.updated"
)

// BookingEvent is the message body published on every booking change.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   uuid.UUID `json:"booking_id"`
	UserID      uuid.UUID `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	ShopID      uuid.UUID `json:"shop_id"`
	ShopName    string    `json:"shop_name"`
	Date        time.Time `json:"date"`
	Guests      int       `json:"guests"`
	BookingCode string    `json:"booking_code"`
	Status      string    `json:"status"`
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
