package models

import "github.com/google/uuid"

type RatingStatus string

const (
	RatingPending   RatingStatus = "PENDING"
	RatingCompleted RatingStatus = "COMPLETED"
)

// Rating is derived from a confirmed booking; booking_id is unique.
type Rating struct {
	Base
	ShopID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	Rating    float64      `gorm:"not null" json:"rating"`
	Comment   string       `gorm:"type:text" json:"comment,omitempty"`
	Status    RatingStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Shop *Shop `gorm:"foreignKey:ShopID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
