package service

import (
	"sort"

	"github.com/google/uuid"

	"github.com/fullreservas/reservas-api/internal/models"
)

// Seating holds the optional seating preferences of a booking.
type Seating struct {
	LocationType *models.LocationType
	Floor        *int
	RoofType     *models.RoofType
}

func (p Seating) matches(t models.Table) bool {
	if p.LocationType != nil && *p.LocationType != t.LocationType {
		return false
	}
	if p.Floor != nil && *p.Floor != t.Floor {
		return false
	}
	if p.RoofType != nil && *p.RoofType != t.RoofType {
		return false
	}
	return true
}

type tableStock struct {
	table models.Table
	free  int
}

// allocateTables seats guests on the free tables that match pref. booked maps
// table configuration id to the quantity already held on the same slot and
// day. A single table that fits the whole party is preferred, the smallest
// such one; otherwise tables are filled from the largest down. ok is false
// when the free matching tables cannot seat everyone.
func allocateTables(tables []models.Table, booked map[uuid.UUID]int, pref Seating, guests int) (alloc []models.BookedTable, ok bool) {
	var stock []*tableStock
	for _, t := range tables {
		if !pref.matches(t) || t.Capacity <= 0 {
			continue
		}
		if free := t.Quantity - booked[t.ID]; free > 0 {
			stock = append(stock, &tableStock{table: t, free: free})
		}
	}
	// Largest first; ties keep a stable floor/id order.
	sort.SliceStable(stock, func(i, j int) bool {
		return stock[i].table.Capacity > stock[j].table.Capacity
	})

	if s := smallestFitting(stock, guests); s != nil {
		return []models.BookedTable{{TableID: s.table.ID, Quantity: 1, Guests: guests, Table: &s.table}}, true
	}

	picked := make(map[uuid.UUID]*models.BookedTable)
	var order []uuid.UUID
	take := func(s *tableStock, n, seated int) {
		s.free -= n
		bt, found := picked[s.table.ID]
		if !found {
			t := s.table
			bt = &models.BookedTable{TableID: t.ID, Table: &t}
			picked[t.ID] = bt
			order = append(order, t.ID)
		}
		bt.Quantity += n
		bt.Guests += seated
	}

	remaining := guests
	for _, s := range stock {
		if remaining <= 0 {
			break
		}
		n := min(remaining/s.table.Capacity, s.free)
		if n > 0 {
			seated := min(n*s.table.Capacity, remaining)
			take(s, n, seated)
			remaining -= seated
		}
	}
	if remaining > 0 {
		if s := smallestFitting(stock, remaining); s != nil {
			take(s, 1, remaining)
			remaining = 0
		}
	}
	for _, s := range stock {
		for remaining > 0 && s.free > 0 {
			seated := min(s.table.Capacity, remaining)
			take(s, 1, seated)
			remaining -= seated
		}
	}
	if remaining > 0 {
		return nil, false
	}

	alloc = make([]models.BookedTable, 0, len(order))
	for _, id := range order {
		alloc = append(alloc, *picked[id])
	}
	return alloc, true
}

// smallestFitting expects stock sorted by capacity, largest first.
func smallestFitting(stock []*tableStock, guests int) *tableStock {
	var best *tableStock
	for _, s := range stock {
		if s.free > 0 && s.table.Capacity >= guests && (best == nil || s.table.Capacity < best.table.Capacity) {
			best = s
		}
	}
	return best
}
