package entity

import (
	"gorm.io/gorm"
)

type Staff struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"` // manager, waiter

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`
}
