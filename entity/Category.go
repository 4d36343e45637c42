package entity

import (
	"gorm.io/gorm"
)

type Category struct {
	gorm.Model
	Name string `json:"name"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`

	Menus []Menu `json:"-"`
}
