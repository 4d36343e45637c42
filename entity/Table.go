package entity

import (
	"gorm.io/gorm"
)

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

type Table struct {
	gorm.Model
	Number   int    `json:"number"`
	Area     string `json:"area"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`

	// preload only on detail endpoints
	Orders []Order `json:"-"`
}
