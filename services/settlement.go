package services

import (
	"errors"

	"tableside/entity"
)

var ErrNoActiveOrders = errors.New("no active orders to settle")

// PaymentDiscount is the discount portion of a payment instruction. Both
// fields are aggregate amounts over the combined bill.
type PaymentDiscount struct {
	Manual     int64  `json:"manual" binding:"min=0"`
	Coupon     int64  `json:"coupon" binding:"min=0"`
	CouponCode string `json:"couponCode"`
}

// PaymentCredit marks part (or all) of the bill as uncollected, to be
// ledgered against a customer.
type PaymentCredit struct {
	CustomerID   string `json:"customerId" binding:"required"`
	CustomerName string `json:"customerName"`
	Amount       int64  `json:"amount" binding:"min=0"`
	WholeAmount  bool   `json:"wholeAmount"`
}

// PaymentInstruction describes the one combined bill the customer actually
// pays for a table, across however many rounds it accumulated.
type PaymentInstruction struct {
	Method         string          `json:"method" binding:"required,oneof=cash upi bank"`
	AmountReceived int64           `json:"amountReceived" binding:"min=0"`
	FinalTotal     int64           `json:"finalTotal" binding:"min=0"`
	Discount       PaymentDiscount `json:"discount"`
	Tip            int64           `json:"tip" binding:"min=0"`
	CustomerID     string          `json:"customerId"`
	Credit         *PaymentCredit  `json:"credit,omitempty"`
}

// Share is one order's proportional slice of the aggregate payment.
type Share struct {
	OrderID        uint
	FinalTotal     int64
	AmountReceived int64
	ManualDiscount int64
	CouponDiscount int64
	Tip            int64
	CreditAmount   int64
}

// Settle apportions every monetary field of the instruction across the
// active orders, weighted by each order's subtotal+tax at placement time.
// Each field's shares sum exactly to the aggregate amount; no cents leak
// to rounding. Order.Total itself is never touched.
func Settle(orders []entity.Order, inst PaymentInstruction) ([]Share, error) {
	if len(orders) == 0 {
		return nil, ErrNoActiveOrders
	}

	weights := make([]int64, len(orders))
	var sum int64
	for i := range orders {
		weights[i] = orders[i].OriginalTotal()
		sum += weights[i]
	}

	creditAmount := int64(0)
	if inst.Credit != nil {
		creditAmount = CreditAmount(inst)
	}

	finals := allocate(inst.FinalTotal, weights, sum)
	received := allocate(inst.AmountReceived, weights, sum)
	manual := allocate(inst.Discount.Manual, weights, sum)
	coupon := allocate(inst.Discount.Coupon, weights, sum)
	tips := allocate(inst.Tip, weights, sum)
	credits := allocate(creditAmount, weights, sum)

	shares := make([]Share, len(orders))
	for i := range orders {
		shares[i] = Share{
			OrderID:        orders[i].ID,
			FinalTotal:     finals[i],
			AmountReceived: received[i],
			ManualDiscount: manual[i],
			CouponDiscount: coupon[i],
			Tip:            tips[i],
			CreditAmount:   credits[i],
		}
	}
	return shares, nil
}

// CreditAmount resolves how much of the bill goes on the ledger: the whole
// final total when WholeAmount is set, an explicit amount when given,
// otherwise the uncollected remainder.
func CreditAmount(inst PaymentInstruction) int64 {
	if inst.Credit == nil {
		return 0
	}
	if inst.Credit.WholeAmount {
		return inst.FinalTotal
	}
	if inst.Credit.Amount > 0 {
		return inst.Credit.Amount
	}
	if short := inst.FinalTotal - inst.AmountReceived; short > 0 {
		return short
	}
	return 0
}

// allocate splits amount by weights using cumulative flooring, so the
// pieces always sum to amount regardless of how the divisions round.
// A zero weight sum puts everything on the first bucket (the single-order
// degenerate case).
func allocate(amount int64, weights []int64, sum int64) []int64 {
	out := make([]int64, len(weights))
	if len(weights) == 0 || amount == 0 {
		return out
	}
	if sum <= 0 {
		out[0] = amount
		return out
	}
	var cum, allocated int64
	for i, w := range weights {
		cum += w
		next := amount * cum / sum
		out[i] = next - allocated
		allocated = next
	}
	return out
}
