package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate creates every table with the relationships and unique indexes
// declared on the structs, then seeds the fixed role set.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&User{}, "Roles", &UserRole{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&Subcategory{},
		&Shop{},
		&Schedule{},
		&AvailableSlot{},
		&Table{},
		&ClosedDay{},
		&Booking{},
		&BookedTable{},
		&Rating{},
		&Membership{},
	); err != nil {
		return err
	}

	roles := make([]Role, len(DefaultRoles))
	copy(roles, DefaultRoles)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&roles).Error
}
