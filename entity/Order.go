package entity

import (
	"gorm.io/gorm"
)

type Order struct {
	gorm.Model
	OrderNumber string `gorm:"size:30;uniqueIndex" json:"orderNumber"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"` // placement snapshot, never overwritten

	Notes string `json:"notes"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`

	TableID uint  `json:"tableId"`
	Table   Table `json:"-"`

	StaffID uint  `json:"staffId"`
	Staff   Staff `json:"-"`

	// proportional echo of the aggregate payment this order took part in
	PaymentMethod  string `json:"paymentMethod"`
	AmountReceived int64  `json:"amountReceived"`
	FinalTotal     int64  `json:"finalTotal"`
	DiscountAmount int64  `json:"discountAmount"`
	CouponDiscount int64  `json:"couponDiscount"`
	CouponCode     string `json:"couponCode"`
	Tip            int64  `json:"tip"`
	CreditAmount   int64  `json:"creditAmount"`

	// preload only on detail
	Items []OrderItem `json:"-"`
}

// IsActive reports whether kitchen or payment work is still outstanding.
func (o *Order) IsActive() bool {
	switch o.Status {
	case OrderPlaced, OrderConfirmed, OrderPreparing, OrderReady:
		return true
	case OrderCompleted:
		return o.PaymentStatus != PaymentPaid
	}
	return false
}

// OriginalTotal is the canonical base for settlement proportions.
func (o *Order) OriginalTotal() int64 {
	return o.Subtotal + o.Tax
}
