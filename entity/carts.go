package entity

import (
	"gorm.io/gorm"
)

// Cart is the pending round for one table. One row per (venue, table);
// persisted so a terminal reload does not lose an in-progress cart.
type Cart struct {
	gorm.Model
	VenueID uint  `json:"venueId" gorm:"index:uniq_venue_table,unique"`
	Venue   Venue `json:"-"`

	TableID uint  `json:"tableId" gorm:"index:uniq_venue_table,unique"`
	Table   Table `json:"-"`

	Items []CartItem `json:"items" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
