package models

import "time"

type Product struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Price     float64   `json:"price" gorm:"not null"`
	Category  string    `json:"category" gorm:"not null"`
	Image     string    `json:"image" gorm:"not null"`
	VendorID  uint      `json:"vendor_id" gorm:"not null;index"`
	Vendor    *User     `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	CreatedAt time.Time `json:"created_at"`
}
