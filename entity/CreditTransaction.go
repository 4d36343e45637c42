package entity

import (
	"gorm.io/gorm"
)

const (
	CreditOutstanding = "outstanding"
	CreditSettled     = "settled"
)

// CreditTransaction is a ledger entry for an uncollected amount.
type CreditTransaction struct {
	gorm.Model
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	Amount       int64  `json:"amount"`
	Note         string `json:"note"`
	Status       string `json:"status"`

	OrderIDs []uint `json:"orderIds" gorm:"serializer:json"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`
}
