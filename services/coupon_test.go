package services

import (
	"errors"
	"testing"
	"time"

	"tableside/entity"
	"gorm.io/gorm"
)

func line(menuID uint, name string, qty int, unitPrice int64) entity.CartItem {
	return entity.CartItem{
		MenuID:    menuID,
		Name:      name,
		Qty:       qty,
		UnitPrice: unitPrice,
		Total:     int64(qty) * unitPrice,
	}
}

func menu(id uint, name string, categoryID uint, price int64) entity.Menu {
	return entity.Menu{
		Model:       gorm.Model{ID: id},
		Name:        name,
		Price:       price,
		CategoryID:  categoryID,
		IsAvailable: true,
	}
}

func activeCoupon(code, typ string) *entity.Coupon {
	return &entity.Coupon{Code: code, Type: typ, Status: entity.CouponActive}
}

// Tuesday lunchtime; fixed so weekday and HHMM checks are deterministic.
var evalNow = time.Date(2026, time.August, 25, 12, 30, 0, 0, time.UTC)

func evalCtx(lines ...entity.CartItem) EvalContext {
	return EvalContext{
		Lines:         lines,
		Catalogue:     map[uint]entity.Menu{},
		PaymentMethod: entity.MethodCash,
		Now:           evalNow,
	}
}

func TestEvaluatePercentageDiscount(t *testing.T) {
	c := activeCoupon("WELCOME20", entity.CouponPercentage)
	c.Config = entity.CouponConfig{Percentage: 20}

	ev := Evaluate(c, evalCtx(line(1, "Paneer Tikka", 2, 25000)))
	if ev.Err != nil {
		t.Fatalf("Evaluate: %v", ev.Err)
	}
	if !ev.Valid {
		t.Fatal("expected valid")
	}
	if ev.DiscountAmount != 10000 {
		t.Errorf("discount = %d; want 10000", ev.DiscountAmount)
	}
}

func TestEvaluateFixedAmountClampsToSubtotal(t *testing.T) {
	c := activeCoupon("FLAT500", entity.CouponFixedAmount)
	c.Config = entity.CouponConfig{Amount: 50000}

	ev := Evaluate(c, evalCtx(line(1, "Lassi", 1, 8000)))
	if ev.Err != nil {
		t.Fatalf("Evaluate: %v", ev.Err)
	}
	if ev.DiscountAmount != 8000 {
		t.Errorf("discount = %d; want clamped 8000", ev.DiscountAmount)
	}
}

func TestEvaluateRejectionOrder(t *testing.T) {
	// an inactive, expired, exhausted coupon must fail on status first
	ended := evalNow.Add(-48 * time.Hour)
	c := activeCoupon("DEAD", entity.CouponPercentage)
	c.Status = entity.CouponInactive
	c.Validity = entity.CouponValidity{EndDate: &ended, UsageLimit: 1}
	c.UsageCount = 5

	ev := Evaluate(c, evalCtx(line(1, "Tea", 1, 2000)))
	if !errors.Is(ev.Err, ErrCouponInactive) {
		t.Errorf("err = %v; want coupon_inactive first", ev.Err)
	}
}

func TestEvaluateTemporalChecks(t *testing.T) {
	future := evalNow.Add(24 * time.Hour)
	past := evalNow.Add(-24 * time.Hour)
	from, to := 1700, 2200

	tests := []struct {
		name     string
		validity entity.CouponValidity
		want     error
	}{
		{"not started", entity.CouponValidity{StartDate: &future}, ErrCouponNotStarted},
		{"expired", entity.CouponValidity{EndDate: &past}, ErrCouponExpired},
		{"outside hours", entity.CouponValidity{StartTime: &from, EndTime: &to}, ErrCouponOutsideHours},
		{"wrong day", entity.CouponValidity{ValidDays: []string{"saturday", "sunday"}}, ErrCouponWrongDay},
		{"right day", entity.CouponValidity{ValidDays: []string{"tuesday"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := activeCoupon("TIMED", entity.CouponPercentage)
			c.Config = entity.CouponConfig{Percentage: 10}
			c.Validity = tt.validity

			ev := Evaluate(c, evalCtx(line(1, "Tea", 1, 2000)))
			if !errors.Is(ev.Err, tt.want) {
				t.Errorf("err = %v; want %v", ev.Err, tt.want)
			}
		})
	}
}

func TestEvaluateUsageLimitBoundary(t *testing.T) {
	c := activeCoupon("LIM10", entity.CouponPercentage)
	c.Config = entity.CouponConfig{Percentage: 10}
	c.Validity = entity.CouponValidity{UsageLimit: 10}

	c.UsageCount = 9
	if ev := Evaluate(c, evalCtx(line(1, "Tea", 1, 2000))); ev.Err != nil {
		t.Errorf("at 9 of 10 uses: %v", ev.Err)
	}

	// usage_count == usage_limit already rejects
	c.UsageCount = 10
	if ev := Evaluate(c, evalCtx(line(1, "Tea", 1, 2000))); !errors.Is(ev.Err, ErrCouponExhausted) {
		t.Errorf("at limit: err = %v; want coupon_exhausted", ev.Err)
	}
}

func TestEvaluatePerCustomerLimit(t *testing.T) {
	c := activeCoupon("ONCE", entity.CouponPercentage)
	c.Config = entity.CouponConfig{Percentage: 10}
	c.Validity = entity.CouponValidity{PerCustomerLimit: 1}

	ctx := evalCtx(line(1, "Tea", 1, 2000))
	ctx.CustomerUses = 1
	if ev := Evaluate(c, ctx); !errors.Is(ev.Err, ErrCouponCustomerLimit) {
		t.Errorf("err = %v; want coupon_customer_limit", ev.Err)
	}
}

func TestEvaluatePaymentMethodRestrictions(t *testing.T) {
	tests := []struct {
		restriction string
		method      string
		want        error
	}{
		{entity.PayRestrictAll, entity.MethodCash, nil},
		{entity.PayRestrictCashOnly, entity.MethodCash, nil},
		{entity.PayRestrictCashOnly, entity.MethodUPI, ErrCouponPaymentMethod},
		{entity.PayRestrictUPIOnly, entity.MethodUPI, nil},
		{entity.PayRestrictUPIOnly, entity.MethodBank, ErrCouponPaymentMethod},
		{entity.PayRestrictExcludeCash, entity.MethodCash, ErrCouponPaymentMethod},
		{entity.PayRestrictExcludeCash, entity.MethodBank, nil},
		{"", entity.MethodCash, nil},
	}
	for _, tt := range tests {
		c := activeCoupon("PAY", entity.CouponPercentage)
		c.Config = entity.CouponConfig{Percentage: 5}
		c.PaymentMethods = tt.restriction

		ctx := evalCtx(line(1, "Tea", 1, 2000))
		ctx.PaymentMethod = tt.method
		ev := Evaluate(c, ctx)
		if !errors.Is(ev.Err, tt.want) {
			t.Errorf("%s/%s: err = %v; want %v", tt.restriction, tt.method, ev.Err, tt.want)
		}
	}
}

func TestEvaluateMinOrderValue(t *testing.T) {
	c := activeCoupon("BIG", entity.CouponPercentage)
	c.Config = entity.CouponConfig{Percentage: 10}
	c.MinOrderValue = 50000

	if ev := Evaluate(c, evalCtx(line(1, "Tea", 1, 2000))); !errors.Is(ev.Err, ErrCouponMinOrder) {
		t.Errorf("err = %v; want coupon_min_order", ev.Err)
	}
	if ev := Evaluate(c, evalCtx(line(1, "Thali", 2, 30000))); ev.Err != nil {
		t.Errorf("above threshold: %v", ev.Err)
	}
}

func TestEvaluateBuyXGetYFreeQuantity(t *testing.T) {
	c := activeCoupon("B2G1", entity.CouponBuyXGetY)
	c.Config = entity.CouponConfig{BuyQuantity: 2, GetQuantity: 1, BuyItemID: 5}

	// 5 eligible units: floor(5/2)*1 = 2 free
	ev := Evaluate(c, evalCtx(line(5, "Momo Plate", 5, 12000)))
	if ev.Err != nil {
		t.Fatalf("Evaluate: %v", ev.Err)
	}
	if len(ev.FreeItems) != 1 || ev.FreeItems[0].Qty != 2 {
		t.Fatalf("free items = %+v; want qty 2 of menu 5", ev.FreeItems)
	}
	if ev.FreeItems[0].MenuID != 5 {
		t.Errorf("free item menu = %d; want 5", ev.FreeItems[0].MenuID)
	}
}

func TestEvaluateBuyXGetYPartialDiscount(t *testing.T) {
	c := activeCoupon("B2G50", entity.CouponBuyXGetY)
	c.Config = entity.CouponConfig{BuyQuantity: 2, GetQuantity: 1, GetDiscountPercentage: 50}

	// cheapest eligible unit is 8000; 2 free units at 50% = 8000 off
	ev := Evaluate(c, evalCtx(
		line(1, "Coffee", 3, 8000),
		line(2, "Cake", 1, 15000),
	))
	if ev.Err != nil {
		t.Fatalf("Evaluate: %v", ev.Err)
	}
	if len(ev.FreeItems) != 0 {
		t.Errorf("partial discount must not grant free items: %+v", ev.FreeItems)
	}
	if ev.DiscountAmount != 8000 {
		t.Errorf("discount = %d; want 8000", ev.DiscountAmount)
	}
}

func TestEvaluateBuyXGetYInsufficientQuantity(t *testing.T) {
	c := activeCoupon("B3G1", entity.CouponBuyXGetY)
	c.Config = entity.CouponConfig{BuyQuantity: 3, GetQuantity: 1}

	ev := Evaluate(c, evalCtx(line(1, "Coffee", 2, 8000)))
	if !errors.Is(ev.Err, ErrCouponNotApplicable) {
		t.Errorf("err = %v; want coupon_not_applicable", ev.Err)
	}
}

func TestEvaluateCategorySpecific(t *testing.T) {
	c := activeCoupon("DRINKS15", entity.CouponCategory)
	c.Config = entity.CouponConfig{CategoryID: 2, Percentage: 15}

	ctx := evalCtx(
		line(1, "Biryani", 1, 30000),
		line(2, "Mojito", 2, 10000),
	)
	ctx.Catalogue = map[uint]entity.Menu{
		1: menu(1, "Biryani", 1, 30000),
		2: menu(2, "Mojito", 2, 10000),
	}

	ev := Evaluate(c, ctx)
	if ev.Err != nil {
		t.Fatalf("Evaluate: %v", ev.Err)
	}
	// 15% of the 20000 category subtotal only
	if ev.DiscountAmount != 3000 {
		t.Errorf("discount = %d; want 3000", ev.DiscountAmount)
	}
	if len(ev.ApplicableItems) != 1 || ev.ApplicableItems[0] != 2 {
		t.Errorf("applicable = %v; want [2]", ev.ApplicableItems)
	}
}

func TestEvaluateCategoryNoMatchingItems(t *testing.T) {
	c := activeCoupon("DRINKS15", entity.CouponCategory)
	c.Config = entity.CouponConfig{CategoryID: 9, Percentage: 15}

	ctx := evalCtx(line(1, "Biryani", 1, 30000))
	ctx.Catalogue = map[uint]entity.Menu{1: menu(1, "Biryani", 1, 30000)}

	if ev := Evaluate(c, ctx); !errors.Is(ev.Err, ErrCouponNotApplicable) {
		t.Errorf("err = %v; want coupon_not_applicable", ev.Err)
	}
}

func TestEvaluateFreeItemAvailability(t *testing.T) {
	c := activeCoupon("FREEBIE", entity.CouponFreeItem)
	c.Config = entity.CouponConfig{FreeItemID: 3}

	ctx := evalCtx(line(1, "Thali", 1, 25000))
	if ev := Evaluate(c, ctx); !errors.Is(ev.Err, ErrFreeItemUnavailable) {
		t.Errorf("unknown item: err = %v; want free_item_unavailable", ev.Err)
	}

	soldOut := menu(3, "Gulab Jamun", 4, 6000)
	soldOut.IsAvailable = false
	ctx.Catalogue[3] = soldOut
	if ev := Evaluate(c, ctx); !errors.Is(ev.Err, ErrFreeItemUnavailable) {
		t.Errorf("86'd item: err = %v; want free_item_unavailable", ev.Err)
	}

	ctx.Catalogue[3] = menu(3, "Gulab Jamun", 4, 6000)
	ev := Evaluate(c, ctx)
	if ev.Err != nil {
		t.Fatalf("Evaluate: %v", ev.Err)
	}
	if len(ev.FreeItems) != 1 || ev.FreeItems[0].Qty != 1 || ev.FreeItems[0].Name != "Gulab Jamun" {
		t.Errorf("free items = %+v", ev.FreeItems)
	}
}

func TestEvaluateNilCoupon(t *testing.T) {
	if ev := Evaluate(nil, evalCtx()); !errors.Is(ev.Err, ErrCouponNotFound) {
		t.Errorf("err = %v; want invalid_code", ev.Err)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  welcome20 "); got != "WELCOME20" {
		t.Errorf("NormalizeCode = %q", got)
	}
}
