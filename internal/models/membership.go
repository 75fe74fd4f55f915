package models

import (
	"time"

	"github.com/google/uuid"
)

type MembershipTier string

const (
	TierBasic  MembershipTier = "BASIC"
	TierSilver MembershipTier = "SILVER"
	TierGold   MembershipTier = "GOLD"
)

func (t MembershipTier) Valid() bool {
	switch t {
	case TierBasic, TierSilver, TierGold:
		return true
	}
	return false
}

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipCancelled MembershipStatus = "CANCELLED"
)

type Membership struct {
	Base
	UserID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Tier      MembershipTier   `gorm:"type:varchar(20);not null" json:"tier"`
	Status    MembershipStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt time.Time        `gorm:"not null" json:"started_at"`
	ExpiresAt time.Time        `gorm:"not null" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
