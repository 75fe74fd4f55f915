package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fullreservas/reservas-api/internal/events"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

// 2026-03-14 is a Saturday.
var (
	testNow        = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	saturday7pm    = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	sunday630pm    = time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)
	saturdayDoW    = 6
	bcryptTestCost = 4
)

func newTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

type published struct {
	key   string
	event events.BookingEvent
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{key: key, event: payload.(events.BookingEvent)})
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		out = append(out, s.key)
	}
	return out
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	clock *testclock.Clock
	pub   *fakePublisher

	users      repository.UserRepository
	shops      repository.ShopRepository
	subs       repository.SubcategoryRepository
	slots      repository.SlotRepository
	tables     repository.TableRepository
	closedDays repository.ClosedDayRepository
	bookingsDB repository.BookingRepository
	ratingsDB  repository.RatingRepository

	bookings  BookingService
	inventory InventoryService
	ratings   RatingService

	user *models.User
	sub  *models.Subcategory
	shop *models.Shop
	slot *models.AvailableSlot
}

// newFixture seeds user U1 and shop S with slot A (capacity 10, 18:00-20:00).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, newTestDB(t, ":memory:"))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		ctx:        context.Background(),
		db:         db,
		clock:      testclock.NewClock(testNow),
		pub:        &fakePublisher{},
		users:      repository.NewUserRepository(db),
		shops:      repository.NewShopRepository(db),
		subs:       repository.NewSubcategoryRepository(db),
		slots:      repository.NewSlotRepository(db),
		tables:     repository.NewTableRepository(db),
		closedDays: repository.NewClosedDayRepository(db),
		bookingsDB: repository.NewBookingRepository(db),
		ratingsDB:  repository.NewRatingRepository(db),
	}
	f.bookings = NewBookingService(BookingDeps{
		Bookings:   f.bookingsDB,
		Shops:      f.shops,
		Slots:      f.slots,
		Tables:     f.tables,
		ClosedDays: f.closedDays,
		Users:      f.users,
		Ratings:    f.ratingsDB,
		Publisher:  f.pub,
		Clock:      f.clock,
	})
	f.inventory = NewInventoryService(f.shops, f.slots, f.tables, f.closedDays)
	f.ratings = NewRatingService(f.ratingsDB)

	f.user = f.addUser(t, "ana@example.com")
	f.sub = &models.Subcategory{Name: "Parrilla"}
	require.NoError(t, f.subs.Create(f.ctx, f.sub))
	f.shop = f.addShop(t, "La Esquina")
	f.slot = f.addSlot(t, f.shop, 18, 20, 10)
	return f
}

func (f *fixture) addUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: email, PasswordHash: "x"}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) addShop(t *testing.T, name string) *models.Shop {
	t.Helper()
	shop := &models.Shop{
		OwnerID:            f.user.ID,
		SubcategoryID:      f.sub.ID,
		Name:               name,
		Slug:               name,
		ShiftType:          models.ShiftDouble,
		AverageStayMinutes: 90,
		Capacity:           40,
	}
	require.NoError(t, f.shops.Create(f.ctx, shop))
	return shop
}

func (f *fixture) addSlot(t *testing.T, shop *models.Shop, from, to, capacity int) *models.AvailableSlot {
	t.Helper()
	slot := &models.AvailableSlot{
		ShopID:    shop.ID,
		StartTime: datatypes.NewTime(from, 0, 0, 0),
		EndTime:   datatypes.NewTime(to, 0, 0, 0),
		Capacity:  capacity,
	}
	require.NoError(t, f.slots.Create(f.ctx, slot))
	return slot
}

func (f *fixture) addTable(t *testing.T, capacity, quantity int) *models.Table {
	t.Helper()
	table := &models.Table{
		ShopID:       f.shop.ID,
		LocationType: models.LocationInside,
		RoofType:     models.RoofCovered,
		Capacity:     capacity,
		Quantity:     quantity,
	}
	require.NoError(t, f.tables.Create(f.ctx, table))
	return table
}

func (f *fixture) input(guests int, date time.Time) CreateBookingInput {
	return CreateBookingInput{
		UserID:       f.user.ID,
		ShopID:       f.shop.ID,
		BookedSlotID: f.slot.ID,
		Date:         date,
		Guests:       guests,
	}
}

func (f *fixture) book(t *testing.T, guests int, date time.Time) *models.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(f.ctx, f.input(guests, date))
	require.NoError(t, err)
	return b
}

func (f *fixture) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func statusPtr(s models.BookingStatus) *models.BookingStatus { return &s }
func intPtr(i int) *int                                      { return &i }
