package models

import "github.com/google/uuid"

type RoleCode string

const (
	RoleCustomer RoleCode = "CUSTOMER"
	RoleMerchant RoleCode = "MERCHANT"
	RoleOperator RoleCode = "OPERATOR"
	RoleAdmin    RoleCode = "ADMIN"
)

// DefaultRoles are seeded by AutoMigrate.
var DefaultRoles = []Role{
	{Code: RoleCustomer, Name: "Customer"},
	{Code: RoleMerchant, Name: "Merchant"},
	{Code: RoleOperator, Name: "Operator"},
	{Code: RoleAdmin, Name: "Administrator"},
}

type User struct {
	Base
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Phone        string `gorm:"type:varchar(32)" json:"phone,omitempty"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	Roles []Role `gorm:"many2many:user_roles;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"roles,omitempty"`
}

// HasRole reports whether the loaded Roles contain one of codes.
func (u *User) HasRole(codes ...RoleCode) bool {
	for _, r := range u.Roles {
		for _, c := range codes {
			if r.Code == c {
				return true
			}
		}
	}
	return false
}

func (u *User) RoleCodes() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, string(r.Code))
	}
	return out
}

type Role struct {
	Base
	Code RoleCode `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`
	Name string   `gorm:"type:varchar(255)" json:"name"`
}

// user_roles
type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}
