package entity

import (
	"time"

	"gorm.io/gorm"
)

const (
	CouponActive   = "active"
	CouponInactive = "inactive"
)

const (
	CouponPercentage   = "percentage_discount"
	CouponFixedAmount  = "fixed_amount"
	CouponBuyXGetY     = "buy_x_get_y"
	CouponFreeItem     = "free_item"
	CouponCategory     = "category_specific"
	CouponMinimumOrder = "minimum_order"
)

const (
	PayRestrictAll         = "all"
	PayRestrictCashOnly    = "cash_only"
	PayRestrictUPIOnly     = "upi_only"
	PayRestrictBankOnly    = "bank_only"
	PayRestrictExcludeCash = "exclude_cash"
)

// CouponValidity bounds when a coupon may be redeemed. StartTime/EndTime are
// HHMM integers (1130 = 11:30); nil means no time-of-day restriction.
type CouponValidity struct {
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	StartTime        *int       `json:"startTime,omitempty"`
	EndTime          *int       `json:"endTime,omitempty"`
	ValidDays        []string   `json:"validDays,omitempty"` // lowercase weekday names
	UsageLimit       int        `json:"usageLimit,omitempty"`       // 0 = unlimited
	PerCustomerLimit int        `json:"perCustomerLimit,omitempty"` // 0 = unlimited
}

// CouponConfig is the type-specific payload; only the fields for the
// coupon's Type are meaningful.
type CouponConfig struct {
	Percentage            int64 `json:"percentage,omitempty"`
	Amount                int64 `json:"amount,omitempty"`
	BuyQuantity           int   `json:"buyQuantity,omitempty"`
	GetQuantity           int   `json:"getQuantity,omitempty"`
	GetDiscountPercentage int   `json:"getDiscountPercentage,omitempty"`
	BuyItemID             uint  `json:"buyItemId,omitempty"`
	BuyCategoryID         uint  `json:"buyCategoryId,omitempty"`
	FreeItemID            uint  `json:"freeItemId,omitempty"`
	CategoryID            uint  `json:"categoryId,omitempty"`
	MinOrderAmount        int64 `json:"minOrderAmount,omitempty"`
}

type Coupon struct {
	gorm.Model
	Code   string `gorm:"size:50;uniqueIndex;not null" json:"code"` // stored upper-case
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Status string `json:"status"`

	Validity CouponValidity `json:"validity" gorm:"serializer:json"`
	Config   CouponConfig   `json:"config" gorm:"serializer:json"`

	MinOrderValue  int64  `json:"minOrderValue"`
	PaymentMethods string `json:"paymentMethods"` // all, cash_only, upi_only, bank_only, exclude_cash

	// mutated only through the guarded redemption increment
	UsageCount int `json:"usageCount"`

	VenueID uint  `json:"venueId"`
	Venue   Venue `json:"-"`

	Redemptions []CouponRedemption `json:"-"`
}
