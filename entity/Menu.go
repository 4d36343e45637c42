package entity

import (
	"gorm.io/gorm"
)

type Menu struct {
	gorm.Model
	Name        string `json:"name"`
	Price       int64  `json:"price"` // minor units
	IsAvailable bool   `json:"isAvailable"`

	CategoryID uint     `json:"categoryId"`
	Category   Category `json:"-"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`
}
