package services

import (
	"fmt"
	"strings"

	"tableside/entity"
)

// Document is a print-ready text rendering of a ticket or bill.
type Document struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

const docWidth = 32

// BuildKitchenTicket renders one round's KOT. Only the round's own items
// appear; prior rounds were already sent when they were placed.
func BuildKitchenTicket(order *entity.Order, items []entity.OrderItem, venue *entity.Venue, table *entity.Table, additionalRound bool) Document {
	var b strings.Builder
	writeCentered(&b, venue.Name)
	writeCentered(&b, "KITCHEN ORDER TICKET")
	if additionalRound {
		writeCentered(&b, "** ADDITIONAL ROUND **")
	}
	b.WriteString(strings.Repeat("-", docWidth) + "\n")
	fmt.Fprintf(&b, "Order : %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Table : %d (%s)\n", table.Number, table.Area)
	fmt.Fprintf(&b, "Time  : %s\n", order.CreatedAt.Format("02 Jan 15:04"))
	b.WriteString(strings.Repeat("-", docWidth) + "\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%2d x %s\n", it.Qty, it.Name)
		for _, v := range it.Variants {
			fmt.Fprintf(&b, "     + %s\n", v)
		}
		if it.Note != "" {
			fmt.Fprintf(&b, "     > %s\n", it.Note)
		}
	}
	if order.Notes != "" {
		b.WriteString(strings.Repeat("-", docWidth) + "\n")
		fmt.Fprintf(&b, "Note: %s\n", order.Notes)
	}
	return Document{
		Title: fmt.Sprintf("KOT %s", order.OrderNumber),
		Body:  b.String(),
	}
}

// BuildBill renders exactly one combined bill for a settlement, however
// many rounds it covered.
func BuildBill(settled *SettledPayment, items []entity.OrderItem, venue *entity.Venue, table *entity.Table) Document {
	var b strings.Builder
	writeCentered(&b, venue.Name)
	writeCentered(&b, "BILL")
	b.WriteString(strings.Repeat("-", docWidth) + "\n")
	fmt.Fprintf(&b, "Table : %d (%s)\n", table.Number, table.Area)
	if len(settled.Orders) > 1 {
		fmt.Fprintf(&b, "Rounds: %d\n", len(settled.Orders))
	}
	b.WriteString(strings.Repeat("-", docWidth) + "\n")

	for _, it := range items {
		left := fmt.Sprintf("%2d x %s", it.Qty, it.Name)
		fmt.Fprintf(&b, "%s%s\n", left, padAmount(left, money(it.Total, venue.Currency)))
	}
	b.WriteString(strings.Repeat("-", docWidth) + "\n")

	var subtotal, tax int64
	for _, o := range settled.Orders {
		subtotal += o.Subtotal
		tax += o.Tax
	}
	writeAmountLine(&b, "Subtotal", money(subtotal, venue.Currency))
	writeAmountLine(&b, "Tax", money(tax, venue.Currency))

	inst := settled.Instruction
	if inst.Discount.Manual > 0 {
		writeAmountLine(&b, "Discount", "-"+money(inst.Discount.Manual, venue.Currency))
	}
	if inst.Discount.Coupon > 0 {
		label := "Coupon"
		if inst.Discount.CouponCode != "" {
			label = "Coupon " + inst.Discount.CouponCode
		}
		writeAmountLine(&b, label, "-"+money(inst.Discount.Coupon, venue.Currency))
	}
	if inst.Tip > 0 {
		writeAmountLine(&b, "Tip", money(inst.Tip, venue.Currency))
	}
	b.WriteString(strings.Repeat("=", docWidth) + "\n")
	writeAmountLine(&b, "TOTAL", money(inst.FinalTotal, venue.Currency))
	writeAmountLine(&b, "Paid ("+inst.Method+")", money(inst.AmountReceived, venue.Currency))
	if credit := CreditAmount(inst); credit > 0 {
		writeAmountLine(&b, "On credit", money(credit, venue.Currency))
	}

	return Document{
		Title: fmt.Sprintf("Bill table %d", table.Number),
		Body:  b.String(),
	}
}

func money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, currency+" ", cents/100, cents%100)
}

func writeCentered(b *strings.Builder, s string) {
	if pad := (docWidth - len(s)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s + "\n")
}

func writeAmountLine(b *strings.Builder, label, amount string) {
	fmt.Fprintf(b, "%s%s\n", label, padAmount(label, amount))
}

func padAmount(left, amount string) string {
	pad := docWidth - len(left) - len(amount)
	if pad < 1 {
		pad = 1
	}
	return strings.Repeat(" ", pad) + amount
}
