package entity

import (
	"gorm.io/gorm"
)

type Venue struct {
	gorm.Model
	Name     string `json:"name"`
	Currency string `json:"currency"`

	// tax rate in basis points (850 = 8.5%)
	TaxRateBps int64 `json:"taxRateBps"`

	Tables []Table `json:"-"`
	Menus  []Menu  `json:"-"`
}
