package service

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"

	"github.com/fullreservas/reservas-api/internal/events"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

var logger = loggo.GetLogger("fullreservas.service")

const (
	bookingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	bookingCodeAttempts = 10
)

var bookingCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{4}$`)

type CreateBookingInput struct {
	UserID       uuid.UUID
	ShopID       uuid.UUID
	BookedSlotID uuid.UUID
	Date         time.Time
	Guests       int
	Seating      Seating
	BookingCode  string
}

// BookingPatch lists the fields a booking edit may touch; nil means unchanged.
type BookingPatch struct {
	Date         *time.Time
	Guests       *int
	LocationType *models.LocationType
	Floor        *int
	RoofType     *models.RoofType
	Status       *models.BookingStatus
}

func (p BookingPatch) reschedules() bool {
	return p.Date != nil || p.Guests != nil || p.LocationType != nil || p.Floor != nil || p.RoofType != nil
}

type Availability struct {
	SlotID    uuid.UUID `json:"slot_id"`
	Date      time.Time `json:"date"`
	Closed    bool      `json:"closed"`
	Capacity  int       `json:"capacity"`
	Booked    int       `json:"booked"`
	Remaining int       `json:"remaining"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
	EditBooking(ctx context.Context, id uuid.UUID, patch BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	SlotAvailability(ctx context.Context, slotID uuid.UUID, date time.Time) (*Availability, error)
}

type BookingDeps struct {
	Bookings   repository.BookingRepository
	Shops      repository.ShopRepository
	Slots      repository.SlotRepository
	Tables     repository.TableRepository
	ClosedDays repository.ClosedDayRepository
	Users      repository.UserRepository
	Ratings    repository.RatingRepository
	// Publisher may be nil, which disables booking events.
	Publisher events.Publisher
	Clock     clock.Clock
}

type bookingService struct {
	BookingDeps
}

func NewBookingService(deps BookingDeps) BookingService {
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	return &bookingService{BookingDeps: deps}
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if in.Guests < 1 {
		return nil, errors.NotValidf("guests %d", in.Guests)
	}
	date := in.Date.UTC()
	if date.Before(s.Clock.Now()) {
		return nil, errors.Trace(ErrDateInPast)
	}
	code := strings.ToUpper(in.BookingCode)
	if code != "" && !bookingCodePattern.MatchString(code) {
		return nil, errors.NotValidf("booking code %q", in.BookingCode)
	}

	booking := &models.Booking{
		UserID:       in.UserID,
		ShopID:       in.ShopID,
		BookedSlotID: in.BookedSlotID,
		Date:         date,
		Guests:       in.Guests,
		LocationType: in.Seating.LocationType,
		Floor:        in.Seating.Floor,
		RoofType:     in.Seating.RoofType,
		Status:       models.StatusPending,
	}

	var shop *models.Shop
	err := s.Bookings.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if shop, err = s.Shops.FindByID(ctx, tx, in.ShopID); err != nil {
			return notFound(err, ErrShopNotFound)
		}

		exists, err := s.Users.Exists(ctx, tx, in.UserID)
		if err != nil {
			return errors.Trace(err)
		}
		if !exists {
			return errors.Trace(ErrUserNotFound)
		}

		// Locks the slot row; concurrent bookings of this slot queue here.
		slot, err := s.Slots.FindByIDForUpdate(ctx, tx, in.BookedSlotID)
		if err != nil {
			return notFound(err, ErrSlotNotFound)
		}
		if slot.ShopID != shop.ID {
			return errors.Trace(ErrSlotNotInShop)
		}

		tables, err := s.reserve(ctx, tx, slot, booking, uuid.Nil)
		if err != nil {
			return err
		}

		if booking.BookingCode, err = s.bookingCode(ctx, tx, shop.ID, code, uuid.Nil); err != nil {
			return err
		}

		if err := s.Bookings.Create(ctx, tx, booking); err != nil {
			return errors.Annotate(err, "creating booking")
		}
		return errors.Trace(s.Bookings.ReplaceTables(ctx, tx, booking.ID, tables))
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("booking %s created for shop %s (%d guests, code %s)", booking.ID, shop.ID, booking.Guests, booking.BookingCode)
	s.publish(ctx, events.BookingCreated, booking, shop.Name)

	return s.GetBooking(ctx, booking.ID)
}

// reserve checks b against the slot's window, the shop's closed days, the
// slot's remaining capacity and the shop's free tables, returning the tables
// to hold. exclude names a booking whose current holdings are ignored.
func (s *bookingService) reserve(ctx context.Context, tx *gorm.DB, slot *models.AvailableSlot, b *models.Booking, exclude uuid.UUID) ([]models.BookedTable, error) {
	if !slot.Contains(b.Date) {
		return nil, errors.Annotatef(ErrOutsideSlot, "booking at %s", b.Date.Format("15:04"))
	}

	closed, err := s.ClosedDays.IsClosed(ctx, tx, b.ShopID, int(b.Date.UTC().Weekday()))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if closed {
		return nil, errors.Annotatef(ErrShopClosed, "%s %s", b.Date.Format("2006-01-02"), b.Date.Weekday())
	}

	taken, err := s.Bookings.SumGuests(ctx, tx, slot.ID, b.Date, exclude)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if taken+b.Guests > slot.Capacity {
		return nil, errors.Annotatef(ErrSlotFull, "%d of %d seats taken", taken, slot.Capacity)
	}

	tables, err := s.Tables.ListByShop(ctx, tx, b.ShopID, repository.TableFilter{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(tables) == 0 {
		return nil, nil
	}
	held, err := s.Bookings.BookedTableQuantities(ctx, tx, slot.ID, b.Date, exclude)
	if err != nil {
		return nil, errors.Trace(err)
	}
	pref := Seating{LocationType: b.LocationType, Floor: b.Floor, RoofType: b.RoofType}
	alloc, ok := allocateTables(tables, held, pref, b.Guests)
	if !ok {
		return nil, errors.Annotatef(ErrNoTablesAvailable, "for %d guests", b.Guests)
	}
	return alloc, nil
}

// bookingCode validates a caller supplied code or generates a fresh one.
func (s *bookingService) bookingCode(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, code string, exclude uuid.UUID) (string, error) {
	if code != "" {
		taken, err := s.Bookings.CodeInUse(ctx, tx, shopID, code, exclude)
		if err != nil {
			return "", errors.Trace(err)
		}
		if taken {
			return "", errors.Annotatef(ErrBookingCodeTaken, "%s", code)
		}
		return code, nil
	}

	for range bookingCodeAttempts {
		candidate := randomCode()
		taken, err := s.Bookings.CodeInUse(ctx, tx, shopID, candidate, exclude)
		if err != nil {
			return "", errors.Trace(err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.Errorf("no free booking code after %d attempts", bookingCodeAttempts)
}

func randomCode() string {
	var b [4]byte
	for i := range b {
		b[i] = bookingCodeAlphabet[rand.IntN(len(bookingCodeAlphabet))]
	}
	return string(b[:])
}

func (s *bookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := s.Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return b, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.Bookings.List(ctx, filter)
	return bookings, errors.Trace(err)
}

// EditBooking applies patch inside one transaction. Confirming also writes
// the booking's pending rating; a rating that already exists is kept.
func (s *bookingService) EditBooking(ctx context.Context, id uuid.UUID, patch BookingPatch) (*models.Booking, error) {
	if patch.Guests != nil && *patch.Guests < 1 {
		return nil, errors.NotValidf("guests %d", *patch.Guests)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, errors.NotValidf("status %q", *patch.Status)
	}
	if patch.Status != nil && *patch.Status == models.StatusCancelled && patch.reschedules() {
		return nil, errors.NotValidf("cancellation combined with other changes")
	}

	var prev models.BookingStatus
	err := s.Bookings.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.Bookings.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrBookingNotFound)
		}
		// Drivers may hand timestamps back in the server's zone.
		b.Date = b.Date.UTC()
		prev = b.Status

		next := b.Status
		if patch.Status != nil {
			next = *patch.Status
		}
		if b.Status == models.StatusCancelled {
			if next == models.StatusCancelled && !patch.reschedules() {
				return nil
			}
			return errors.Trace(ErrBookingCancelled)
		}
		if !b.Status.CanTransitionTo(next) {
			return errors.Annotatef(ErrInvalidTransition, "%s to %s", b.Status, next)
		}

		fields := map[string]any{}
		if next != b.Status {
			fields["status"] = next
		}

		if patch.reschedules() && next != models.StatusCancelled {
			if patch.Date != nil {
				d := patch.Date.UTC()
				if d.Before(s.Clock.Now()) {
					return errors.Trace(ErrDateInPast)
				}
				b.Date = d
				fields["date"] = d
			}
			if patch.Guests != nil {
				b.Guests = *patch.Guests
				fields["guests"] = *patch.Guests
			}
			if patch.LocationType != nil {
				b.LocationType = patch.LocationType
				fields["location_type"] = *patch.LocationType
			}
			if patch.Floor != nil {
				b.Floor = patch.Floor
				fields["floor"] = *patch.Floor
			}
			if patch.RoofType != nil {
				b.RoofType = patch.RoofType
				fields["roof_type"] = *patch.RoofType
			}

			slot, err := s.Slots.FindByIDForUpdate(ctx, tx, b.BookedSlotID)
			if err != nil {
				return notFound(err, ErrSlotNotFound)
			}
			tables, err := s.reserve(ctx, tx, slot, b, b.ID)
			if err != nil {
				return err
			}
			if err := s.Bookings.ReplaceTables(ctx, tx, b.ID, tables); err != nil {
				return errors.Trace(err)
			}
		}

		if len(fields) > 0 {
			if err := s.Bookings.Update(ctx, tx, b.ID, fields); err != nil {
				return errors.Annotate(err, "updating booking")
			}
		}
		b.Status = next

		if next == models.StatusCancelled && prev != models.StatusCancelled {
			// A visit that will not happen cannot be rated.
			n, err := s.Ratings.DeletePending(ctx, tx, b.ID)
			if err != nil {
				return errors.Annotate(err, "removing pending rating")
			}
			if n > 0 {
				logger.Debugf("pending rating of booking %s removed", b.ID)
			}
		}

		if next == models.StatusConfirmed {
			created, err := s.Ratings.CreateIfAbsent(ctx, tx, &models.Rating{
				ShopID:    b.ShopID,
				UserID:    b.UserID,
				BookingID: b.ID,
				Rating:    0,
				Status:    models.RatingPending,
			})
			if err != nil {
				return errors.Annotate(err, "creating rating")
			}
			if created {
				logger.Debugf("pending rating created for booking %s", b.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case updated.Status == prev && !patch.reschedules():
		// Nothing changed.
	case updated.Status == models.StatusConfirmed && prev != models.StatusConfirmed:
		s.publishFor(ctx, events.BookingConfirmed, updated)
	case updated.Status == models.StatusCancelled && prev != models.StatusCancelled:
		s.publishFor(ctx, events.BookingCancelled, updated)
	default:
		s.publishFor(ctx, events.BookingUpdated, updated)
	}
	return updated, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	n, err := s.Bookings.Delete(ctx, id)
	if err != nil {
		return errors.Annotatef(err, "deleting booking %s", id)
	}
	if n == 0 {
		return errors.Trace(ErrBookingNotFound)
	}
	logger.Infof("booking %s deleted", id)
	return nil
}

func (s *bookingService) SlotAvailability(ctx context.Context, slotID uuid.UUID, date time.Time) (*Availability, error) {
	db := s.Bookings.GetDB()
	slot, err := s.Slots.FindByID(ctx, db, slotID)
	if err != nil {
		return nil, notFound(err, ErrSlotNotFound)
	}
	day, _ := models.DayBounds(date)

	closed, err := s.ClosedDays.IsClosed(ctx, db, slot.ShopID, int(day.Weekday()))
	if err != nil {
		return nil, errors.Trace(err)
	}
	booked, err := s.Bookings.SumGuests(ctx, db, slot.ID, day, uuid.Nil)
	if err != nil {
		return nil, errors.Trace(err)
	}

	a := &Availability{SlotID: slot.ID, Date: day, Closed: closed, Capacity: slot.Capacity, Booked: booked}
	if !closed && booked < slot.Capacity {
		a.Remaining = slot.Capacity - booked
	}
	return a, nil
}

// publishFor loads the shop name for b and publishes the event.
func (s *bookingService) publishFor(ctx context.Context, routingKey string, b *models.Booking) {
	if s.Publisher == nil {
		return
	}
	shop, err := s.Shops.FindByID(ctx, s.Shops.GetDB(), b.ShopID)
	if err != nil {
		logger.Warningf("publishing %s for booking %s: %v", routingKey, b.ID, err)
		return
	}
	s.publish(ctx, routingKey, b, shop.Name)
}

// publish is best effort; the booking is already committed.
func (s *bookingService) publish(ctx context.Context, routingKey string, b *models.Booking, shopName string) {
	if s.Publisher == nil {
		return
	}
	evt := events.BookingEvent{
		Type:        routingKey,
		BookingID:   b.ID,
		UserID:      b.UserID,
		ShopID:      b.ShopID,
		ShopName:    shopName,
		Date:        b.Date,
		Guests:      b.Guests,
		BookingCode: b.BookingCode,
		Status:      string(b.Status),
	}
	if user, err := s.Users.FindByID(ctx, b.UserID); err == nil {
		evt.UserEmail = user.Email
		evt.UserName = user.Name
	}
	if err := s.Publisher.Publish(ctx, routingKey, evt); err != nil {
		logger.Errorf("publishing %s for booking %s: %v", routingKey, b.ID, err)
	}
}
