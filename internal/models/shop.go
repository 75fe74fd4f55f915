package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ShiftType string

const (
	ShiftSingle     ShiftType = "SINGLE"
	ShiftDouble     ShiftType = "DOUBLE"
	ShiftContinuous ShiftType = "CONTINUOUS"
)

type Subcategory struct {
	Base
	Name string `gorm:"type:varchar(120);not null;uniqueIndex" json:"name"`
}

type Shop struct {
	Base
	OwnerID            uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	SubcategoryID      uuid.UUID `gorm:"type:uuid;not null;index" json:"subcategory_id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug               string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Phone              string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Address            string    `gorm:"type:text" json:"address,omitempty"`
	ShiftType          ShiftType `gorm:"type:varchar(20);not null" json:"shift_type"`
	AverageStayMinutes int       `gorm:"not null" json:"average_stay_minutes"`
	Capacity           int       `gorm:"not null" json:"capacity"`
	ImageURL           string    `gorm:"type:text" json:"image_url,omitempty"`
	MenuURL            string    `gorm:"type:text" json:"menu_url,omitempty"`

	Owner       *User        `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Subcategory *Subcategory `gorm:"foreignKey:SubcategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"subcategory,omitempty"`

	Schedules  []Schedule      `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"schedules,omitempty"`
	Slots      []AvailableSlot `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"slots,omitempty"`
	Tables     []Table         `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tables,omitempty"`
	ClosedDays []ClosedDay     `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"closed_days,omitempty"`
}

// Schedule is one opening window of a shop on a weekday (0 = Sunday).
type Schedule struct {
	Base
	ShopID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_schedules_shop_day_open" json:"shop_id"`
	DayOfWeek int            `gorm:"not null;uniqueIndex:ux_schedules_shop_day_open" json:"day_of_week"`
	OpensAt   datatypes.Time `gorm:"not null;uniqueIndex:ux_schedules_shop_day_open" json:"opens_at"`
	ClosesAt  datatypes.Time `gorm:"not null" json:"closes_at"`
}

// ClosedDay marks a weekday on which the shop takes no bookings.
type ClosedDay struct {
	Base
	ShopID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_closed_days_shop_day" json:"shop_id"`
	DayOfWeek int       `gorm:"not null;uniqueIndex:ux_closed_days_shop_day;check:chk_closed_days_dow,day_of_week BETWEEN 0 AND 6" json:"day_of_week"`
}
