package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fullreservas/reservas-api/internal/dto"
	"github.com/fullreservas/reservas-api/internal/middleware"
	"github.com/fullreservas/reservas-api/internal/models"
	"github.com/fullreservas/reservas-api/internal/repository"
	"github.com/fullreservas/reservas-api/internal/service"
)

type InventoryHandler struct {
	inventory service.InventoryService
	bookings  service.BookingService
	shops     ShopLookup
}

func NewInventoryHandler(inventory service.InventoryService, bookings service.BookingService, shops ShopLookup) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, bookings: bookings, shops: shops}
}

func (h *InventoryHandler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	manage := []echo.MiddlewareFunc{authn, middleware.RequireRole(merchantRoles...)}

	shops := api.Group("/shops/:id")
	shops.GET("/slots", h.ListSlots)
	shops.GET("/tables", h.ListTables)
	shops.GET("/closed-days", h.ListClosedDays)
	shops.POST("/slots", h.CreateSlot, manage...)
	shops.POST("/tables", h.CreateTable, manage...)
	shops.POST("/closed-days", h.RegisterClosedDays, manage...)
	shops.DELETE("/closed-days/:day", h.RemoveClosedDay, manage...)

	api.GET("/slots/:id/availability", h.SlotAvailability)
	api.PATCH("/slots/:id", h.UpdateSlot, manage...)
	api.DELETE("/slots/:id", h.DeleteSlot, manage...)
	api.DELETE("/tables/:id", h.DeleteTable, manage...)
}

// requireManager loads the shop named by the path param and checks the caller may manage it.
func (h *InventoryHandler) requireManager(c echo.Context, param string) (*models.Shop, error) {
	id, err := parseID(c, param)
	if err != nil {
		return nil, err
	}
	shop, err := h.shops.GetShop(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	return shop, requireShopManager(c, shop)
}

func (h *InventoryHandler) ListSlots(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	minCapacity, err := queryInt(c, "min_capacity")
	if err != nil {
		return err
	}
	var minCap int
	if minCapacity != nil {
		minCap = *minCapacity
	}

	slots, err := h.inventory.ListSlots(c.Request().Context(), id, minCap)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *InventoryHandler) CreateSlot(c echo.Context) error {
	shop, err := h.requireManager(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateSlotRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	start, err := dto.ParseClock(req.StartTime)
	if err != nil {
		return err
	}
	end, err := dto.ParseClock(req.EndTime)
	if err != nil {
		return err
	}

	slot, err := h.inventory.CreateSlot(c.Request().Context(), shop.ID, service.SlotInput{StartTime: start, EndTime: end, Capacity: req.Capacity})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *InventoryHandler) UpdateSlot(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateSlotRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	slot, err := h.inventory.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	shop, err := h.shops.GetShop(ctx, slot.ShopID)
	if err != nil {
		return err
	}
	if err := requireShopManager(c, shop); err != nil {
		return err
	}

	updated, err := h.inventory.UpdateSlotCapacity(ctx, id, req.Capacity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *InventoryHandler) DeleteSlot(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	slot, err := h.inventory.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	shop, err := h.shops.GetShop(ctx, slot.ShopID)
	if err != nil {
		return err
	}
	if err := requireShopManager(c, shop); err != nil {
		return err
	}

	if err := h.inventory.DeleteSlot(ctx, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InventoryHandler) SlotAvailability(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return err
	}
	if date == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}

	a, err := h.bookings.SlotAvailability(c.Request().Context(), id, *date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *InventoryHandler) ListTables(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var filter repository.TableFilter
	if filter.LocationType, err = queryEnum(c, "location_type", models.LocationInside, models.LocationOutside); err != nil {
		return err
	}
	if filter.RoofType, err = queryEnum(c, "roof_type", models.RoofCovered, models.RoofUncovered); err != nil {
		return err
	}
	if filter.Floor, err = queryInt(c, "floor"); err != nil {
		return err
	}
	minCapacity, err := queryInt(c, "min_capacity")
	if err != nil {
		return err
	}
	if minCapacity != nil {
		filter.MinCapacity = *minCapacity
	}

	tables, err := h.inventory.ListTables(c.Request().Context(), id, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *InventoryHandler) CreateTable(c echo.Context) error {
	shop, err := h.requireManager(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateTableRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	table, err := h.inventory.CreateTable(c.Request().Context(), shop.ID, service.TableInput{
		LocationType: req.LocationType,
		Floor:        req.Floor,
		RoofType:     req.RoofType,
		Capacity:     req.Capacity,
		Quantity:     req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, table)
}

func (h *InventoryHandler) DeleteTable(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	table, err := h.inventory.GetTable(ctx, id)
	if err != nil {
		return err
	}
	shop, err := h.shops.GetShop(ctx, table.ShopID)
	if err != nil {
		return err
	}
	if err := requireShopManager(c, shop); err != nil {
		return err
	}

	if err := h.inventory.DeleteTable(ctx, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InventoryHandler) ListClosedDays(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	days, err := h.inventory.ListClosedDays(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

// RegisterClosedDays answers with the newly closed days, or null when the
// shop was already closed on all of them.
func (h *InventoryHandler) RegisterClosedDays(c echo.Context) error {
	shop, err := h.requireManager(c, "id")
	if err != nil {
		return err
	}
	var req dto.ClosedDaysRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	inserted, err := h.inventory.RegisterClosedDays(c.Request().Context(), shop.ID, req.Days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inserted)
}

func (h *InventoryHandler) RemoveClosedDay(c echo.Context) error {
	shop, err := h.requireManager(c, "id")
	if err != nil {
		return err
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 0 || day > 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid day")
	}

	if err := h.inventory.RemoveClosedDay(c.Request().Context(), shop.ID, day); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
