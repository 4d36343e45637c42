package services

import (
	"errors"
	"strings"
	"time"

	"tableside/entity"
)

var (
	ErrCouponNotFound       = errors.New("invalid_code")
	ErrCouponInactive       = errors.New("coupon_inactive")
	ErrCouponNotStarted     = errors.New("coupon_not_started")
	ErrCouponExpired        = errors.New("coupon_expired")
	ErrCouponOutsideHours   = errors.New("coupon_outside_hours")
	ErrCouponWrongDay       = errors.New("coupon_wrong_day")
	ErrCouponExhausted      = errors.New("coupon_exhausted")
	ErrCouponCustomerLimit  = errors.New("coupon_customer_limit")
	ErrCouponPaymentMethod  = errors.New("coupon_payment_method")
	ErrCouponMinOrder       = errors.New("coupon_min_order")
	ErrCouponNotApplicable  = errors.New("coupon_not_applicable")
	ErrFreeItemUnavailable  = errors.New("free_item_unavailable")
	ErrCouponBadConfig      = errors.New("coupon_bad_config")
)

// EvalContext carries everything the evaluation pipeline needs besides the
// coupon itself. CustomerUses is the count of this customer's prior
// redemptions of the coupon; zero when no customer is known.
type EvalContext struct {
	Lines         []entity.CartItem
	Catalogue     map[uint]entity.Menu
	PaymentMethod string
	CustomerUses  int
	Now           time.Time
}

// FreeItem is an item granted at no charge by a coupon application.
type FreeItem struct {
	MenuID uint   `json:"menuId"`
	Name   string `json:"name"`
	Qty    int    `json:"qty"`
}

// Evaluation is the outcome of validating a coupon against a cart. Either
// Err is set, or the application fields are.
type Evaluation struct {
	Valid           bool           `json:"isValid"`
	Err             error          `json:"-"`
	Coupon          *entity.Coupon `json:"coupon,omitempty"`
	DiscountAmount  int64          `json:"discountAmount"`
	FreeItems       []FreeItem     `json:"freeItems,omitempty"`
	ApplicableItems []uint         `json:"applicableItems,omitempty"`
}

// NormalizeCode upper-cases and trims a coupon code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate runs the full validation pipeline and, when every check passes,
// computes the discount/free-item application. Read-only: the coupon is
// never mutated here; usage increments happen at redemption.
func Evaluate(coupon *entity.Coupon, ctx EvalContext) Evaluation {
	fail := func(err error) Evaluation { return Evaluation{Err: err} }

	if coupon == nil {
		return fail(ErrCouponNotFound)
	}
	if coupon.Status != entity.CouponActive {
		return fail(ErrCouponInactive)
	}

	// temporal checks, in order, first failure wins
	v := coupon.Validity
	if v.StartDate != nil && ctx.Now.Before(*v.StartDate) {
		return fail(ErrCouponNotStarted)
	}
	if v.EndDate != nil && ctx.Now.After(*v.EndDate) {
		return fail(ErrCouponExpired)
	}
	if v.StartTime != nil && v.EndTime != nil {
		hhmm := ctx.Now.Hour()*100 + ctx.Now.Minute()
		if hhmm < *v.StartTime || hhmm > *v.EndTime {
			return fail(ErrCouponOutsideHours)
		}
	}
	if len(v.ValidDays) > 0 {
		day := strings.ToLower(ctx.Now.Weekday().String())
		ok := false
		for _, d := range v.ValidDays {
			if strings.ToLower(d) == day {
				ok = true
				break
			}
		}
		if !ok {
			return fail(ErrCouponWrongDay)
		}
	}

	// usage limits; the boundary is inclusive of rejection
	if v.UsageLimit > 0 && coupon.UsageCount >= v.UsageLimit {
		return fail(ErrCouponExhausted)
	}
	if v.PerCustomerLimit > 0 && ctx.CustomerUses >= v.PerCustomerLimit {
		return fail(ErrCouponCustomerLimit)
	}

	if err := checkPaymentMethod(coupon.PaymentMethods, ctx.PaymentMethod); err != nil {
		return fail(err)
	}

	subtotal := cartSubtotal(ctx.Lines)
	if coupon.MinOrderValue > 0 && subtotal < coupon.MinOrderValue {
		return fail(ErrCouponMinOrder)
	}

	app, err := apply(coupon, ctx, subtotal)
	if err != nil {
		return fail(err)
	}
	app.Valid = true
	app.Coupon = coupon
	return app
}

func checkPaymentMethod(restriction, method string) error {
	switch restriction {
	case "", entity.PayRestrictAll:
		return nil
	case entity.PayRestrictCashOnly:
		if method != entity.MethodCash {
			return ErrCouponPaymentMethod
		}
	case entity.PayRestrictUPIOnly:
		if method != entity.MethodUPI {
			return ErrCouponPaymentMethod
		}
	case entity.PayRestrictBankOnly:
		if method != entity.MethodBank {
			return ErrCouponPaymentMethod
		}
	case entity.PayRestrictExcludeCash:
		if method == entity.MethodCash {
			return ErrCouponPaymentMethod
		}
	}
	return nil
}

// apply performs the type-specific structural check and computes the
// application. The discount never exceeds the subtotal base it applies to.
func apply(coupon *entity.Coupon, ctx EvalContext, subtotal int64) (Evaluation, error) {
	cfg := coupon.Config

	switch coupon.Type {
	case entity.CouponPercentage:
		return Evaluation{DiscountAmount: clamp(subtotal*cfg.Percentage/100, subtotal)}, nil

	case entity.CouponFixedAmount:
		return Evaluation{DiscountAmount: clamp(cfg.Amount, subtotal)}, nil

	case entity.CouponMinimumOrder:
		if subtotal < cfg.MinOrderAmount {
			return Evaluation{}, ErrCouponMinOrder
		}
		return Evaluation{DiscountAmount: clamp(cfg.Amount, subtotal)}, nil

	case entity.CouponCategory:
		if cfg.CategoryID == 0 {
			return Evaluation{}, ErrCouponBadConfig
		}
		var catSubtotal int64
		var applicable []uint
		for _, line := range ctx.Lines {
			if menu, ok := ctx.Catalogue[line.MenuID]; ok && menu.CategoryID == cfg.CategoryID {
				catSubtotal += line.Total
				applicable = append(applicable, line.MenuID)
			}
		}
		if catSubtotal == 0 {
			return Evaluation{}, ErrCouponNotApplicable
		}
		return Evaluation{
			DiscountAmount:  clamp(catSubtotal*cfg.Percentage/100, catSubtotal),
			ApplicableItems: applicable,
		}, nil

	case entity.CouponBuyXGetY:
		if cfg.BuyQuantity <= 0 || cfg.GetQuantity <= 0 {
			return Evaluation{}, ErrCouponBadConfig
		}
		eligibleQty, cheapest, eligibleTotal := eligibleLines(cfg, ctx)
		if eligibleQty < cfg.BuyQuantity {
			return Evaluation{}, ErrCouponNotApplicable
		}
		freeQty := eligibleQty / cfg.BuyQuantity * cfg.GetQuantity
		if cfg.GetDiscountPercentage > 0 && cfg.GetDiscountPercentage < 100 {
			// partial discount: convert the free quantity into money
			discount := int64(freeQty) * cheapest.UnitPrice * int64(cfg.GetDiscountPercentage) / 100
			return Evaluation{DiscountAmount: clamp(discount, eligibleTotal)}, nil
		}
		return Evaluation{FreeItems: []FreeItem{{
			MenuID: cheapest.MenuID,
			Name:   cheapest.Name,
			Qty:    freeQty,
		}}}, nil

	case entity.CouponFreeItem:
		menu, ok := ctx.Catalogue[cfg.FreeItemID]
		if !ok || !menu.IsAvailable {
			return Evaluation{}, ErrFreeItemUnavailable
		}
		return Evaluation{FreeItems: []FreeItem{{MenuID: menu.ID, Name: menu.Name, Qty: 1}}}, nil
	}

	return Evaluation{}, ErrCouponBadConfig
}

// eligibleLines counts cart quantity matching the buy_x_get_y target: a
// specific menu item, a category, or (neither set) any item. The cheapest
// eligible line is the one granted free.
func eligibleLines(cfg entity.CouponConfig, ctx EvalContext) (qty int, cheapest entity.CartItem, total int64) {
	for _, line := range ctx.Lines {
		eligible := false
		switch {
		case cfg.BuyItemID != 0:
			eligible = line.MenuID == cfg.BuyItemID
		case cfg.BuyCategoryID != 0:
			if menu, ok := ctx.Catalogue[line.MenuID]; ok {
				eligible = menu.CategoryID == cfg.BuyCategoryID
			}
		default:
			eligible = true
		}
		if !eligible {
			continue
		}
		qty += line.Qty
		total += line.Total
		if cheapest.MenuID == 0 || line.UnitPrice < cheapest.UnitPrice {
			cheapest = line
		}
	}
	return qty, cheapest, total
}

func cartSubtotal(lines []entity.CartItem) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Total
	}
	return sum
}

func clamp(v, limit int64) int64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
