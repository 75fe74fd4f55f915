package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"gorm.io/datatypes"

	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
)

type SlotInput struct {
	StartTime datatypes.Time
	EndTime   datatypes.Time
	Capacity  int
}

type TableInput struct {
	LocationType models.LocationType
	Floor        int
	RoofType     models.RoofType
	Capacity     int
	Quantity     int
}

// InventoryService manages what a shop offers for booking: its daily slots,
// its table configurations and the weekdays it stays closed.
type InventoryService interface {
	CreateSlot(ctx context.Context, shopID uuid.UUID, in SlotInput) (*models.AvailableSlot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*models.AvailableSlot, error)
	ListSlots(ctx context.Context, shopID uuid.UUID, minCapacity int) ([]models.AvailableSlot, error)
	UpdateSlotCapacity(ctx context.Context, id uuid.UUID, capacity int) (*models.AvailableSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	CreateTable(ctx context.Context, shopID uuid.UUID, in TableInput) (*models.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error)
	ListTables(ctx context.Context, shopID uuid.UUID, filter repository.TableFilter) ([]models.Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error

	RegisterClosedDays(ctx context.Context, shopID uuid.UUID, days []int) ([]models.ClosedDay, error)
	ListClosedDays(ctx context.Context, shopID uuid.UUID) ([]models.ClosedDay, error)
	RemoveClosedDay(ctx context.Context, shopID uuid.UUID, day int) error
}

type inventoryService struct {
	shops      repository.ShopRepository
	slots      repository.SlotRepository
	tables     repository.TableRepository
	closedDays repository.ClosedDayRepository
}

func NewInventoryService(
	shops repository.ShopRepository,
	slots repository.SlotRepository,
	tables repository.TableRepository,
	closedDays repository.ClosedDayRepository,
) InventoryService {
	return &inventoryService{shops: shops, slots: slots, tables: tables, closedDays: closedDays}
}

func (s *inventoryService) requireShop(ctx context.Context, id uuid.UUID) error {
	if _, err := s.shops.FindByID(ctx, s.shops.GetDB(), id); err != nil {
		return notFound(err, ErrShopNotFound)
	}
	return nil
}

func (s *inventoryService) CreateSlot(ctx context.Context, shopID uuid.UUID, in SlotInput) (*models.AvailableSlot, error) {
	if in.Capacity < 1 {
		return nil, errors.NotValidf("capacity %d", in.Capacity)
	}
	if in.StartTime == in.EndTime {
		return nil, errors.Trace(ErrInvalidTimeRange)
	}
	if err := s.requireShop(ctx, shopID); err != nil {
		return nil, err
	}

	slot := &models.AvailableSlot{ShopID: shopID, StartTime: in.StartTime, EndTime: in.EndTime, Capacity: in.Capacity}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, errors.Annotate(err, "creating slot")
	}
	return slot, nil
}

func (s *inventoryService) GetSlot(ctx context.Context, id uuid.UUID) (*models.AvailableSlot, error) {
	slot, err := s.slots.FindByID(ctx, s.shops.GetDB(), id)
	if err != nil {
		return nil, notFound(err, ErrSlotNotFound)
	}
	return slot, nil
}

func (s *inventoryService) ListSlots(ctx context.Context, shopID uuid.UUID, minCapacity int) ([]models.AvailableSlot, error) {
	if err := s.requireShop(ctx, shopID); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByShop(ctx, shopID, minCapacity)
	return slots, errors.Trace(err)
}

// UpdateSlotCapacity changes the only mutable attribute of a slot.
func (s *inventoryService) UpdateSlotCapacity(ctx context.Context, id uuid.UUID, capacity int) (*models.AvailableSlot, error) {
	if capacity < 1 {
		return nil, errors.NotValidf("capacity %d", capacity)
	}
	slot, err := s.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.slots.UpdateCapacity(ctx, id, capacity); err != nil {
		return nil, errors.Annotate(err, "updating slot capacity")
	}
	slot.Capacity = capacity
	return slot, nil
}

func (s *inventoryService) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	inUse, err := s.slots.HasBookings(ctx, id)
	if err != nil {
		return errors.Trace(err)
	}
	if inUse {
		return errors.Trace(ErrSlotInUse)
	}
	n, err := s.slots.Delete(ctx, id)
	if err != nil {
		return errors.Annotate(err, "deleting slot")
	}
	if n == 0 {
		return errors.Trace(ErrSlotNotFound)
	}
	return nil
}

func (s *inventoryService) CreateTable(ctx context.Context, shopID uuid.UUID, in TableInput) (*models.Table, error) {
	if in.Capacity < 1 {
		return nil, errors.NotValidf("capacity %d", in.Capacity)
	}
	if in.Quantity < 1 {
		return nil, errors.NotValidf("quantity %d", in.Quantity)
	}
	if err := s.requireShop(ctx, shopID); err != nil {
		return nil, err
	}

	table := &models.Table{
		ShopID:       shopID,
		LocationType: in.LocationType,
		Floor:        in.Floor,
		RoofType:     in.RoofType,
		Capacity:     in.Capacity,
		Quantity:     in.Quantity,
	}
	if err := s.tables.Create(ctx, table); err != nil {
		return nil, errors.Annotate(err, "creating table")
	}
	return table, nil
}

func (s *inventoryService) GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTableNotFound)
	}
	return table, nil
}

func (s *inventoryService) ListTables(ctx context.Context, shopID uuid.UUID, filter repository.TableFilter) ([]models.Table, error) {
	if err := s.requireShop(ctx, shopID); err != nil {
		return nil, err
	}
	tables, err := s.tables.ListByShop(ctx, s.shops.GetDB(), shopID, filter)
	return tables, errors.Trace(err)
}

func (s *inventoryService) DeleteTable(ctx context.Context, id uuid.UUID) error {
	inUse, err := s.tables.HasBookings(ctx, id)
	if err != nil {
		return errors.Trace(err)
	}
	if inUse {
		return errors.Trace(ErrTableInUse)
	}
	n, err := s.tables.Delete(ctx, id)
	if err != nil {
		return errors.Annotate(err, "deleting table")
	}
	if n == 0 {
		return errors.Trace(ErrTableNotFound)
	}
	return nil
}

// RegisterClosedDays closes the shop on every weekday in days it is not
// already closed on. It returns the new rows, or nil when there were none.
func (s *inventoryService) RegisterClosedDays(ctx context.Context, shopID uuid.UUID, days []int) ([]models.ClosedDay, error) {
	if len(days) == 0 {
		return nil, errors.NotValidf("empty day list")
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, errors.NotValidf("day of week %d", d)
		}
	}
	if err := s.requireShop(ctx, shopID); err != nil {
		return nil, err
	}

	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	inserted, err := s.closedDays.InsertMissing(ctx, shopID, sorted)
	if err != nil {
		return nil, errors.Annotate(err, "registering closed days")
	}
	if inserted == nil {
		logger.Debugf("shop %s already closed on %v", shopID, sorted)
	}
	return inserted, nil
}

func (s *inventoryService) ListClosedDays(ctx context.Context, shopID uuid.UUID) ([]models.ClosedDay, error) {
	if err := s.requireShop(ctx, shopID); err != nil {
		return nil, err
	}
	days, err := s.closedDays.ListByShop(ctx, shopID)
	return days, errors.Trace(err)
}

func (s *inventoryService) RemoveClosedDay(ctx context.Context, shopID uuid.UUID, day int) error {
	n, err := s.closedDays.Delete(ctx, shopID, day)
	if err != nil {
		return errors.Annotate(err, "removing closed day")
	}
	if n == 0 {
		return errors.Trace(ErrClosedDayNotFound)
	}
	return nil
}
