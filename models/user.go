package models

import (
	"errors"
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleVendor   UserRole = "vendor"
	RoleDelivery UserRole = "delivery"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every valid role
var Roles = []UserRole{RoleCustomer, RoleVendor, RoleDelivery}

// ParseRole converts a raw string into a UserRole, rejecting anything outside the enum
func ParseRole(s string) (UserRole, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrUnknownRole
}

// LoginPath is the form a user of this role signs in through
func (r UserRole) LoginPath() string {
	return "/" + string(r) + "-login"
}

// DashboardPath is where a user of this role lands after signing in
func (r UserRole) DashboardPath() string {
	return "/" + string(r) + "-dashboard"
}

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	Role        UserRole  `json:"role" gorm:"not null;index"`
	CompanyName *string   `json:"company_name"` // vendors only
	Address     *string   `json:"address"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Products    []Product `json:"products,omitempty" gorm:"foreignKey:VendorID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasLocation reports whether both coordinates are known
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// DisplayName is the vendor's company name, falling back to the email
func (u *User) DisplayName() string {
	if u.CompanyName != nil && *u.CompanyName != "" {
		return *u.CompanyName
	}
	return u.Email
}
