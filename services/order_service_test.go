package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"tableside/entity"
)

func (e *testEnv) reloadOrder(t *testing.T, id uint) entity.Order {
	t.Helper()
	var o entity.Order
	if err := e.db.First(&o, id).Error; err != nil {
		t.Fatalf("reload order %d: %v", id, err)
	}
	return o
}

func TestPlaceOrderFirstRound(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1) // 15000
	env.addToCart(t, "Dal Makhani", 1)  // 5000

	placed := env.place(t)

	if placed.AdditionalRound {
		t.Error("first round flagged as additional")
	}
	o := placed.Order
	if o.Subtotal != 20000 {
		t.Errorf("subtotal = %d; want 20000", o.Subtotal)
	}
	if o.Tax != 1700 {
		t.Errorf("tax = %d; want 1700 (8.5%%)", o.Tax)
	}
	if o.Total != 21700 {
		t.Errorf("total = %d; want 21700", o.Total)
	}
	if o.Status != entity.OrderPlaced || o.PaymentStatus != entity.PaymentUnpaid {
		t.Errorf("status = %s/%s", o.Status, o.PaymentStatus)
	}

	wantPrefix := "ORD-" + time.Now().Format("20060102") + "-"
	if !strings.HasPrefix(o.OrderNumber, wantPrefix) {
		t.Errorf("order number = %q; want prefix %q", o.OrderNumber, wantPrefix)
	}
	if len(placed.Items) != 2 {
		t.Errorf("order items = %d; want 2", len(placed.Items))
	}

	if got := env.tableStatus(t); got != entity.TableOccupied {
		t.Errorf("table status = %s; want occupied", got)
	}
	if lines := env.cartLines(t); len(lines) != 0 {
		t.Errorf("cart not cleared: %d lines remain", len(lines))
	}

	sess, err := env.orders.Session(env.venue.ID, env.table.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.State != StatePlaced || sess.CurrentOrderID != o.ID {
		t.Errorf("session = %s/%d; want placed/%d", sess.State, sess.CurrentOrderID, o.ID)
	}
}

func TestPlaceOrderGuards(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.orders.PlaceOrder(env.venue.ID, env.table.ID, 0, ""); !errors.Is(err, ErrStaffRequired) {
		t.Errorf("no staff: err = %v; want ErrStaffRequired", err)
	}
	if _, err := env.orders.PlaceOrder(env.venue.ID, env.table.ID, 1, ""); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("empty cart: err = %v; want ErrEmptyCart", err)
	}
}

func TestAddMoreRound(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1)
	first := env.place(t)

	if err := env.orders.AddMore(env.venue.ID, env.table.ID); err != nil {
		t.Fatalf("add more: %v", err)
	}
	env.addToCart(t, "Mojito", 1)
	second := env.place(t)

	if !second.AdditionalRound {
		t.Error("second round not flagged as additional")
	}
	if second.Order.ID == first.Order.ID {
		t.Error("second round reused the first order")
	}

	// the first round is untouched and both stay active
	reloaded := env.reloadOrder(t, first.Order.ID)
	if reloaded.Status != entity.OrderPlaced || reloaded.Total != first.Order.Total {
		t.Errorf("first round changed: %s/%d", reloaded.Status, reloaded.Total)
	}
	active, err := env.orders.Repo.ActiveOrdersByTable(env.venue.ID, env.table.ID)
	if err != nil {
		t.Fatalf("active orders: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active orders = %d; want 2", len(active))
	}
	if got := env.tableStatus(t); got != entity.TableOccupied {
		t.Errorf("table status = %s; want still occupied", got)
	}
}

func TestAddMoreRequiresPlacedRound(t *testing.T) {
	env := newTestEnv(t)
	if err := env.orders.AddMore(env.venue.ID, env.table.ID); !errors.Is(err, ErrNotPlaced) {
		t.Errorf("err = %v; want ErrNotPlaced", err)
	}
}

func TestGuardCartOpen(t *testing.T) {
	env := newTestEnv(t)

	if err := env.orders.GuardCartOpen(env.venue.ID, env.table.ID, false); err != nil {
		t.Fatalf("fresh table: %v", err)
	}

	env.addToCart(t, "Paneer Tikka", 1)
	env.place(t)

	if err := env.orders.GuardCartOpen(env.venue.ID, env.table.ID, false); !errors.Is(err, ErrCartLocked) {
		t.Errorf("after place: err = %v; want ErrCartLocked", err)
	}
	// the voice path bypasses the lock
	if err := env.orders.GuardCartOpen(env.venue.ID, env.table.ID, true); err != nil {
		t.Errorf("forced: %v", err)
	}

	if err := env.orders.AddMore(env.venue.ID, env.table.ID); err != nil {
		t.Fatalf("add more: %v", err)
	}
	if err := env.orders.GuardCartOpen(env.venue.ID, env.table.ID, false); err != nil {
		t.Errorf("adding more: %v", err)
	}
}

func TestCancelAllOrders(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1)
	first := env.place(t)
	if err := env.orders.AddMore(env.venue.ID, env.table.ID); err != nil {
		t.Fatalf("add more: %v", err)
	}
	env.addToCart(t, "Mojito", 1)
	second := env.place(t)

	if err := env.orders.CancelAllOrders(env.venue.ID, env.table.ID, 1, "guest left"); err != nil {
		t.Fatalf("cancel all: %v", err)
	}

	for _, id := range []uint{first.Order.ID, second.Order.ID} {
		o := env.reloadOrder(t, id)
		if o.Status != entity.OrderCancelled {
			t.Errorf("order %d status = %s; want cancelled", id, o.Status)
		}
		if !strings.Contains(o.Notes, "guest left") {
			t.Errorf("order %d missing cancellation note: %q", id, o.Notes)
		}
	}
	if got := env.tableStatus(t); got != entity.TableAvailable {
		t.Errorf("table status = %s; want available", got)
	}

	sess, err := env.orders.Session(env.venue.ID, env.table.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.State != StateCart || sess.CurrentOrderID != 0 {
		t.Errorf("session = %s/%d; want cart/0", sess.State, sess.CurrentOrderID)
	}
}

func TestSessionHydrationAdoptsExistingOrders(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1)
	placed := env.place(t)

	// a second process (fresh sessions, same database) comes up
	other := NewOrderService(env.db, env.orders.Repo, env.orders.CartRepo, env.orders.TableRepo,
		env.orders.MenuRepo, env.orders.CouponRepo, env.orders.CreditRepo, env.hub, RetryPolicy{})

	sess, err := other.Session(env.venue.ID, env.table.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.State != StatePlaced {
		t.Errorf("state = %s; want placed", sess.State)
	}
	if sess.CurrentOrderID != placed.Order.ID {
		t.Errorf("adopted order = %d; want %d", sess.CurrentOrderID, placed.Order.ID)
	}
}

func TestSessionHydrationHealsStaleOrders(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1)
	placed := env.place(t)

	// simulate a crashed session that freed the table but left the order
	if err := env.db.Model(&entity.Table{}).Where("id = ?", env.table.ID).
		Update("status", entity.TableAvailable).Error; err != nil {
		t.Fatalf("force table available: %v", err)
	}

	other := NewOrderService(env.db, env.orders.Repo, env.orders.CartRepo, env.orders.TableRepo,
		env.orders.MenuRepo, env.orders.CouponRepo, env.orders.CreditRepo, env.hub, RetryPolicy{})

	sess, err := other.Session(env.venue.ID, env.table.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.State != StateCart {
		t.Errorf("state = %s; want cart after heal", sess.State)
	}

	o := env.reloadOrder(t, placed.Order.ID)
	if o.Status != entity.OrderCancelled {
		t.Errorf("stale order status = %s; want cancelled", o.Status)
	}
	if !strings.Contains(o.Notes, "auto-cancelled") {
		t.Errorf("missing audit note: %q", o.Notes)
	}

	// re-hydrating yet another session finds nothing left to heal
	third := NewOrderService(env.db, env.orders.Repo, env.orders.CartRepo, env.orders.TableRepo,
		env.orders.MenuRepo, env.orders.CouponRepo, env.orders.CreditRepo, env.hub, RetryPolicy{})
	if _, err := third.Session(env.venue.ID, env.table.ID); err != nil {
		t.Fatalf("session after heal: %v", err)
	}
	if again := env.reloadOrder(t, placed.Order.ID); again.Notes != o.Notes {
		t.Errorf("healing re-ran: notes %q -> %q", o.Notes, again.Notes)
	}
}

func TestHandlePaymentSettlesAllRounds(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1)
	env.addToCart(t, "Dal Makhani", 1)
	first := env.place(t) // 20000 + 1700
	if err := env.orders.AddMore(env.venue.ID, env.table.ID); err != nil {
		t.Fatalf("add more: %v", err)
	}
	env.addToCart(t, "Mojito", 1)
	second := env.place(t) // 10000 + 850

	inst := PaymentInstruction{
		Method:         entity.MethodUPI,
		FinalTotal:     32550,
		AmountReceived: 32550,
	}
	settled, err := env.orders.HandlePayment(env.venue.ID, env.table.ID, inst)
	if err != nil {
		t.Fatalf("handle payment: %v", err)
	}
	if len(settled.Orders) != 2 || len(settled.Shares) != 2 {
		t.Fatalf("settled %d orders / %d shares; want 2/2", len(settled.Orders), len(settled.Shares))
	}

	o1 := env.reloadOrder(t, first.Order.ID)
	o2 := env.reloadOrder(t, second.Order.ID)
	for _, o := range []entity.Order{o1, o2} {
		if o.Status != entity.OrderCompleted || o.PaymentStatus != entity.PaymentPaid {
			t.Errorf("order %d = %s/%s; want completed/paid", o.ID, o.Status, o.PaymentStatus)
		}
		if o.PaymentMethod != entity.MethodUPI {
			t.Errorf("order %d method = %s", o.ID, o.PaymentMethod)
		}
	}
	// shares weighted 21700:10850
	if o1.FinalTotal != 21700 || o2.FinalTotal != 10850 {
		t.Errorf("final totals = %d,%d; want 21700,10850", o1.FinalTotal, o2.FinalTotal)
	}
	// placement snapshots survive settlement
	if o1.Total != 21700 || o2.Total != 10850 {
		t.Errorf("totals overwritten: %d,%d", o1.Total, o2.Total)
	}
	if got := env.tableStatus(t); got != entity.TableAvailable {
		t.Errorf("table status = %s; want available", got)
	}

	// a second payment finds nothing active
	if _, err := env.orders.HandlePayment(env.venue.ID, env.table.ID, inst); !errors.Is(err, ErrNoActiveOrders) {
		t.Errorf("repeat payment: err = %v; want ErrNoActiveOrders", err)
	}
}

func TestHandlePaymentRedeemsCoupon(t *testing.T) {
	env := newTestEnv(t)
	coupon := entity.Coupon{
		VenueID:  env.venue.ID,
		Code:     "WELCOME20",
		Type:     entity.CouponPercentage,
		Status:   entity.CouponActive,
		Validity: entity.CouponValidity{UsageLimit: 1},
		Config:   entity.CouponConfig{Percentage: 20},
	}
	if err := env.db.Create(&coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	env.addToCart(t, "Paneer Tikka", 1)
	placed := env.place(t) // 15000 + 1275

	inst := PaymentInstruction{
		Method:         entity.MethodCash,
		FinalTotal:     13275,
		AmountReceived: 13275,
		Discount:       PaymentDiscount{Coupon: 3000, CouponCode: "welcome20"},
	}
	if _, err := env.orders.HandlePayment(env.venue.ID, env.table.ID, inst); err != nil {
		t.Fatalf("handle payment: %v", err)
	}

	var reloaded entity.Coupon
	if err := env.db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon: %v", err)
	}
	if reloaded.UsageCount != 1 {
		t.Errorf("usage count = %d; want 1", reloaded.UsageCount)
	}

	var red entity.CouponRedemption
	if err := env.db.Where("coupon_id = ?", coupon.ID).First(&red).Error; err != nil {
		t.Fatalf("load redemption: %v", err)
	}
	if red.OrderID != placed.Order.ID || red.DiscountAmount != 3000 {
		t.Errorf("redemption = order %d / %d; want %d / 3000", red.OrderID, red.DiscountAmount, placed.Order.ID)
	}

	o := env.reloadOrder(t, placed.Order.ID)
	if o.CouponDiscount != 3000 || o.CouponCode != "welcome20" {
		t.Errorf("coupon echo = %d/%q", o.CouponDiscount, o.CouponCode)
	}
}

func TestHandlePaymentExhaustedCouponAbortsEverything(t *testing.T) {
	env := newTestEnv(t)
	coupon := entity.Coupon{
		VenueID:    env.venue.ID,
		Code:       "LASTONE",
		Type:       entity.CouponPercentage,
		Status:     entity.CouponActive,
		Validity:   entity.CouponValidity{UsageLimit: 1},
		Config:     entity.CouponConfig{Percentage: 10},
		UsageCount: 1,
	}
	if err := env.db.Create(&coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	env.addToCart(t, "Paneer Tikka", 1)
	placed := env.place(t)

	inst := PaymentInstruction{
		Method:         entity.MethodCash,
		FinalTotal:     16275,
		AmountReceived: 16275,
		Discount:       PaymentDiscount{Coupon: 1500, CouponCode: "LASTONE"},
	}
	if _, err := env.orders.HandlePayment(env.venue.ID, env.table.ID, inst); !errors.Is(err, ErrCouponExhausted) {
		t.Fatalf("err = %v; want ErrCouponExhausted", err)
	}

	// the guarded increment failed, so nothing else committed either
	o := env.reloadOrder(t, placed.Order.ID)
	if o.PaymentStatus != entity.PaymentUnpaid || o.Status != entity.OrderPlaced {
		t.Errorf("order = %s/%s; payment must roll back whole", o.Status, o.PaymentStatus)
	}
	if got := env.tableStatus(t); got != entity.TableOccupied {
		t.Errorf("table status = %s; want still occupied", got)
	}
}

func TestHandlePaymentCreditLedger(t *testing.T) {
	env := newTestEnv(t)
	env.addToCart(t, "Paneer Tikka", 1)
	placed := env.place(t) // 16275 with tax

	inst := PaymentInstruction{
		Method:         entity.MethodCash,
		FinalTotal:     16275,
		AmountReceived: 6275,
		Credit:         &PaymentCredit{CustomerID: "9876543210", CustomerName: "Ravi"},
	}
	settled, err := env.orders.HandlePayment(env.venue.ID, env.table.ID, inst)
	if err != nil {
		t.Fatalf("handle payment: %v", err)
	}

	var ct entity.CreditTransaction
	if err := env.db.Where("venue_id = ?", env.venue.ID).First(&ct).Error; err != nil {
		t.Fatalf("load credit entry: %v", err)
	}
	if ct.Amount != 10000 {
		t.Errorf("ledgered amount = %d; want the 10000 shortfall", ct.Amount)
	}
	if ct.CustomerID != "9876543210" || ct.CustomerName != "Ravi" {
		t.Errorf("ledger customer = %s/%s", ct.CustomerID, ct.CustomerName)
	}
	if ct.Status != entity.CreditOutstanding {
		t.Errorf("ledger status = %s; want outstanding", ct.Status)
	}
	if len(ct.OrderIDs) != 1 || ct.OrderIDs[0] != placed.Order.ID {
		t.Errorf("ledger orders = %v; want [%d]", ct.OrderIDs, placed.Order.ID)
	}

	var creditSum int64
	for _, sh := range settled.Shares {
		creditSum += sh.CreditAmount
	}
	if creditSum != 10000 {
		t.Errorf("credit shares sum = %d; want 10000", creditSum)
	}
}

func TestOrderNumbersIncrementPerDay(t *testing.T) {
	env := newTestEnv(t)
	day := time.Now().Format("20060102")

	env.addToCart(t, "Paneer Tikka", 1)
	first := env.place(t)
	if err := env.orders.AddMore(env.venue.ID, env.table.ID); err != nil {
		t.Fatalf("add more: %v", err)
	}
	env.addToCart(t, "Mojito", 1)
	second := env.place(t)

	if want := fmt.Sprintf("ORD-%s-1", day); first.Order.OrderNumber != want {
		t.Errorf("first = %q; want %q", first.Order.OrderNumber, want)
	}
	if want := fmt.Sprintf("ORD-%s-2", day); second.Order.OrderNumber != want {
		t.Errorf("second = %q; want %q", second.Order.OrderNumber, want)
	}
}
