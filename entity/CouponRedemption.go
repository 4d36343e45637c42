package entity

import (
	"gorm.io/gorm"
)

// CouponRedemption records one consumed use of a coupon against an order.
type CouponRedemption struct {
	gorm.Model
	CouponID uint   `json:"couponId"`
	Coupon   Coupon `json:"-"`

	OrderID uint  `json:"orderId"`
	Order   Order `json:"-"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`

	CustomerID     string `json:"customerId"` // phone or loyalty id, optional
	DiscountAmount int64  `json:"discountAmount"`
}
