package service

import (
	"github.com/juju/errors"
	"gorm.io/gorm"
)

// Missing entities.
const (
	ErrUserNotFound        = errors.ConstError("user not found")
	ErrRoleNotFound        = errors.ConstError("role not found")
	ErrShopNotFound        = errors.ConstError("shop not found")
	ErrSubcategoryNotFound = errors.ConstError("subcategory not found")
	ErrSlotNotFound        = errors.ConstError("available slot not found")
	ErrTableNotFound       = errors.ConstError("table not found")
	ErrClosedDayNotFound   = errors.ConstError("closed day not found")
	ErrBookingNotFound     = errors.ConstError("booking not found")
	ErrRatingNotFound      = errors.ConstError("rating not found")
	ErrMembershipNotFound  = errors.ConstError("membership not found")
)

// State conflicts.
const (
	ErrEmailTaken          = errors.ConstError("email already registered")
	ErrSubcategoryExists   = errors.ConstError("subcategory already exists")
	ErrShopClosed          = errors.ConstError("shop is closed on that day")
	ErrSlotFull            = errors.ConstError("slot is fully booked")
	ErrNoTablesAvailable   = errors.ConstError("not enough tables available")
	ErrBookingCodeTaken    = errors.ConstError("booking code already in use")
	ErrInvalidTransition   = errors.ConstError("invalid status transition")
	ErrBookingCancelled    = errors.ConstError("booking is cancelled")
	ErrRatingCompleted     = errors.ConstError("rating already submitted")
	ErrSlotInUse           = errors.ConstError("slot has bookings")
	ErrTableInUse          = errors.ConstError("table has bookings")
	ErrMembershipCancelled = errors.ConstError("membership already cancelled")
)

// Rejected input that passed request validation.
const (
	ErrSlotNotInShop    = errors.ConstError("slot does not belong to shop")
	ErrOutsideSlot      = errors.ConstError("date outside slot window")
	ErrDateInPast       = errors.ConstError("date is in the past")
	ErrNotMerchant      = errors.ConstError("user is not a merchant")
	ErrInvalidTimeRange = errors.ConstError("closing time must differ from opening time")
)

const ErrInvalidCredentials = errors.ConstError("invalid email or password")

// notFound turns a missing-row error into sentinel and traces anything else.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Trace(sentinel)
	}
	return errors.Trace(err)
}
