package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullreservas/reservas-api/internal/models"
)

// BookingFilter holds the optional secondary filters of a booking listing.
type BookingFilter struct {
	ShopID       *uuid.UUID
	UserID       *uuid.UUID
	Date         *time.Time
	Guests       *int
	LocationType *models.LocationType
	Floor        *int
	RoofType     *models.RoofType
	Status       *models.BookingStatus
	BookingCode  string
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	SumGuests(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, day time.Time, exclude uuid.UUID) (int, error)
	BookedTableQuantities(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, day time.Time, exclude uuid.UUID) (map[uuid.UUID]int, error)
	CodeInUse(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, code string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	ReplaceTables(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, tables []models.BookedTable) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("BookedTables.Table").
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// List returns matching bookings ordered by date, with shop, slot and rating loaded.
func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.ShopID != nil {
		q = q.Where("shop_id = ?", *filter.ShopID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Date != nil {
		start, end := models.DayBounds(*filter.Date)
		q = q.Where("date >= ? AND date < ?", start, end)
	}
	if filter.Guests != nil {
		q = q.Where("guests = ?", *filter.Guests)
	}
	if filter.LocationType != nil {
		q = q.Where("location_type = ?", *filter.LocationType)
	}
	if filter.Floor != nil {
		q = q.Where("floor = ?", *filter.Floor)
	}
	if filter.RoofType != nil {
		q = q.Where("roof_type = ?", *filter.RoofType)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.BookingCode != "" {
		q = q.Where("booking_code = ?", filter.BookingCode)
	}

	var bookings []models.Booking
	err := q.Preload("Shop").Preload("Slot").Preload("Rating").
		Order("date ASC, created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

// SumGuests adds up the guests of live bookings on slotID during day's
// calendar date, leaving out exclude.
func (r *bookingRepository) SumGuests(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, day time.Time, exclude uuid.UUID) (int, error) {
	start, end := models.DayBounds(day)
	var sum int64
	err := tx.WithContext(ctx).Model(&models.Booking{}).
		Select("COALESCE(SUM(guests), 0)").
		Where("booked_slot_id = ? AND status <> ? AND date >= ? AND date < ? AND id <> ?",
			slotID, models.StatusCancelled, start, end, exclude).
		Scan(&sum).Error
	return int(sum), err
}

// BookedTableQuantities returns, per table configuration, how many tables
// live bookings already hold on slotID during day's calendar date.
func (r *bookingRepository) BookedTableQuantities(ctx context.Context, tx *gorm.DB, slotID uuid.UUID, day time.Time, exclude uuid.UUID) (map[uuid.UUID]int, error) {
	start, end := models.DayBounds(day)
	var rows []struct {
		TableID  uuid.UUID
		Quantity int
	}
	err := tx.WithContext(ctx).Model(&models.BookedTable{}).
		Select("booked_tables.table_id AS table_id, SUM(booked_tables.quantity) AS quantity").
		Joins("JOIN bookings ON bookings.id = booked_tables.booking_id").
		Where("bookings.booked_slot_id = ? AND bookings.status <> ? AND bookings.date >= ? AND bookings.date < ? AND bookings.id <> ?",
			slotID, models.StatusCancelled, start, end, exclude).
		Group("booked_tables.table_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.TableID] = row.Quantity
	}
	return out, nil
}

func (r *bookingRepository) CodeInUse(ctx context.Context, tx *gorm.DB, shopID uuid.UUID, code string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.Booking{}).
		Where("shop_id = ? AND booking_code = ? AND status <> ? AND id <> ?", shopID, code, models.StatusCancelled, exclude).
		Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	return tx.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceTables drops the booking's current table assignment and writes tables.
func (r *bookingRepository) ReplaceTables(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, tables []models.BookedTable) error {
	if err := tx.WithContext(ctx).Where("booking_id = ?", bookingID).Delete(&models.BookedTable{}).Error; err != nil {
		return err
	}
	if len(tables) == 0 {
		return nil
	}
	for i := range tables {
		tables[i].BookingID = bookingID
	}
	return tx.WithContext(ctx).Omit("Table").Create(&tables).Error
}

// Delete hard-deletes the booking with its table assignment and rating.
func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&models.BookedTable{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Booking{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
