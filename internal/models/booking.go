package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in status s may move to next.
// Staying in the same status is always allowed and is treated as a no-op.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

type Booking struct {
	Base
	UserID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	ShopID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"shop_id"`
	BookedSlotID uuid.UUID     `gorm:"type:uuid;not null;index" json:"booked_slot_id"`
	Date         time.Time     `gorm:"not null;index" json:"date"`
	Guests       int           `gorm:"not null" json:"guests"`
	LocationType *LocationType `gorm:"type:varchar(10)" json:"location_type,omitempty"`
	Floor        *int          `json:"floor,omitempty"`
	RoofType     *RoofType     `gorm:"type:varchar(10)" json:"roof_type,omitempty"`
	BookingCode  string        `gorm:"type:varchar(4);not null;index" json:"booking_code"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	User         *User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Shop         *Shop          `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Slot         *AvailableSlot `gorm:"foreignKey:BookedSlotID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	BookedTables []BookedTable  `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Rating       *Rating        `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeSave keeps every stored date in UTC so day-range queries compare like with like.
func (b *Booking) BeforeSave(_ *gorm.DB) error {
	b.Date = b.Date.UTC()
	return nil
}

// DayBounds returns the UTC calendar day [start, end) containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// BookedTable assigns Quantity tables of one configuration to a booking.
type BookedTable struct {
	Base
	BookingID uuid.UUID `gorm:"type:uuid;not null;index" json:"booking_id"`
	TableID   uuid.UUID `gorm:"type:uuid;not null;index" json:"table_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Guests    int       `gorm:"not null" json:"guests"`

	Table *Table `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
}
