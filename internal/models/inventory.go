package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LocationType string

const (
	LocationInside  LocationType = "INSIDE"
	LocationOutside LocationType = "OUTSIDE"
)

type RoofType string

const (
	RoofCovered   RoofType = "COVERED"
	RoofUncovered RoofType = "UNCOVERED"
)

// AvailableSlot is a recurring daily window with a guest ceiling.
type AvailableSlot struct {
	Base
	ShopID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"shop_id"`
	StartTime datatypes.Time `gorm:"not null" json:"start_time"`
	EndTime   datatypes.Time `gorm:"not null" json:"end_time"`
	Capacity  int            `gorm:"not null" json:"capacity"`
}

// Contains reports whether the time of day of t falls in [StartTime, EndTime).
// A window whose end is not after its start wraps past midnight. Slot
// windows are UTC times of day.
func (s *AvailableSlot) Contains(t time.Time) bool {
	t = t.UTC()
	tod := datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
	if s.EndTime > s.StartTime {
		return tod >= s.StartTime && tod < s.EndTime
	}
	return tod >= s.StartTime || tod < s.EndTime
}

// Table is a seating configuration; Quantity identical tables share it.
type Table struct {
	Base
	ShopID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"shop_id"`
	LocationType LocationType `gorm:"type:varchar(10);not null" json:"location_type"`
	Floor        int          `gorm:"not null" json:"floor"`
	RoofType     RoofType     `gorm:"type:varchar(10);not null" json:"roof_type"`
	Capacity     int          `gorm:"not null" json:"capacity"`
	Quantity     int          `gorm:"not null" json:"quantity"`
}

func (Table) TableName() string { return "shop_tables" }
