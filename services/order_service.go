package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tableside/entity"
	"tableside/repository"
	"tableside/ws"

	"gorm.io/gorm"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrStaffRequired = errors.New("staff identity required")
	ErrTableNotFound = errors.New("table not found")
	ErrNotPlaced     = errors.New("no active round for this table")
	ErrCartLocked    = errors.New("order already placed; start an add-more round first")
)

type OrderService struct {
	DB         *gorm.DB
	Repo       *repository.OrderRepository
	CartRepo   *repository.CartRepository
	TableRepo  *repository.TableRepository
	MenuRepo   *repository.MenuRepository
	CouponRepo *repository.CouponRepository
	CreditRepo *repository.CreditRepository
	Hub        *ws.OrderHub
	Retry      RetryPolicy

	mu       sync.Mutex
	sessions map[sessionKey]*TableSession
}

type sessionKey struct {
	venueID uint
	tableID uint
}

// TableSession is the locally-known lifecycle state for one table. It is a
// cache over the repository, recomputed on every push; never authoritative.
type TableSession struct {
	VenueID uint
	TableID uint

	mu             sync.Mutex
	State          LifecycleState
	CurrentOrderID uint
	CustomerID     string
	CustomerName   string
	hydrated       bool
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	tableRepo *repository.TableRepository,
	menuRepo *repository.MenuRepository,
	couponRepo *repository.CouponRepository,
	creditRepo *repository.CreditRepository,
	hub *ws.OrderHub,
	retry RetryPolicy,
) *OrderService {
	return &OrderService{
		DB:         db,
		Repo:       repo,
		CartRepo:   cartRepo,
		TableRepo:  tableRepo,
		MenuRepo:   menuRepo,
		CouponRepo: couponRepo,
		CreditRepo: creditRepo,
		Hub:        hub,
		Retry:      retry,
		sessions:   make(map[sessionKey]*TableSession),
	}
}

// Start wires the service to the push stream. Every repository write ends
// up here again as an event, which is what keeps multiple terminals (and
// this process's own optimistic assumptions) honest.
func (s *OrderService) Start() func() {
	ch, cancel := s.Hub.Subscribe(0)
	go func() {
		for ev := range ch {
			s.onPush(ev)
		}
	}()
	return cancel
}

// Session returns the lifecycle session for a table, hydrating it from the
// repository on first access.
func (s *OrderService) Session(venueID, tableID uint) (*TableSession, error) {
	s.mu.Lock()
	key := sessionKey{venueID, tableID}
	sess, ok := s.sessions[key]
	if !ok {
		sess = &TableSession{VenueID: venueID, TableID: tableID, State: StateCart}
		s.sessions[key] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.hydrated {
		if err := s.hydrateLocked(sess); err != nil {
			return nil, err
		}
		sess.hydrated = true
	}
	return sess, nil
}

// hydrateLocked loads the initial snapshot. An empty result is retried once
// after the configured backoff before being trusted as truly empty.
func (s *OrderService) hydrateLocked(sess *TableSession) error {
	snap, err := s.snapshot(sess.VenueID, sess.TableID)
	if err != nil {
		return err
	}
	res := Reconcile(sess.State, snap, true)
	if res.RetryLookup {
		if s.Retry.Backoff > 0 {
			time.Sleep(s.Retry.Backoff)
		}
		if snap, err = s.snapshot(sess.VenueID, sess.TableID); err != nil {
			return err
		}
		res = Reconcile(sess.State, snap, false)
	}
	return s.applyLocked(sess, snap, res)
}

func (s *OrderService) snapshot(venueID, tableID uint) (TableSnapshot, error) {
	var snap TableSnapshot
	err := s.Retry.Do(func() error {
		table, err := s.TableRepo.Get(venueID, tableID)
		if err != nil {
			return err
		}
		active, err := s.Repo.ActiveOrdersByTable(venueID, tableID)
		if err != nil {
			return err
		}
		snap = TableSnapshot{TableStatus: table.Status, ActiveOrders: active}
		return nil
	})
	return snap, err
}

// applyLocked enacts a reconciliation result: heal first, then local state.
func (s *OrderService) applyLocked(sess *TableSession, snap TableSnapshot, res Resolution) error {
	if res.Heal {
		if err := s.healStaleOrders(sess.VenueID, sess.TableID, snap.ActiveOrders); err != nil {
			return err
		}
	}
	if res.ClearCart {
		if err := s.CartRepo.ClearCart(s.DB, sess.VenueID, sess.TableID); err != nil {
			return err
		}
	}
	sess.State = res.State
	sess.CurrentOrderID = res.AdoptOrderID
	return nil
}

// healStaleOrders cancels every order a crashed session left active on a
// table the repository says is free. Guarded updates keep re-runs no-ops.
func (s *OrderService) healStaleOrders(venueID, tableID uint, stale []entity.Order) error {
	if len(stale) == 0 {
		return nil
	}
	note := fmt.Sprintf("auto-cancelled: table available with active orders (%s)",
		time.Now().UTC().Format(time.RFC3339))
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range stale {
			patch := map[string]any{"notes": appendNote(stale[i].Notes, note)}
			if err := s.Repo.UpdateOrderStatus(tx, stale[i].ID, venueID, entity.OrderCancelled, patch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i := range stale {
		s.Hub.Publish(ws.OrderEvent{
			Kind:    ws.EventOrderStatus,
			VenueID: venueID,
			TableID: tableID,
			OrderID: stale[i].ID,
			Status:  entity.OrderCancelled,
		})
	}
	log.Printf("healed table %d: cancelled %d stale order(s)", tableID, len(stale))
	return nil
}

// onPush recomputes a table's state from a fresh snapshot whenever the
// repository reports a change. Local writes may race their own push; the
// snapshot read here is the authoritative resolver either way. Failures
// are retried by policy and then logged, never raised to the serving loop.
func (s *OrderService) onPush(ev ws.OrderEvent) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey{ev.VenueID, ev.TableID}]
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap, err := s.snapshot(ev.VenueID, ev.TableID)
	if err != nil {
		log.Printf("reconcile read failed for table %d: %v", ev.TableID, err)
		return
	}
	res := Reconcile(sess.State, snap, false)
	if err := s.applyLocked(sess, snap, res); err != nil {
		log.Printf("reconcile apply failed for table %d: %v", ev.TableID, err)
	}
}

// ---------------- placement ----------------

// PlacedOrder is what a successful placement hands back: the persisted
// order plus what the kitchen needs to know.
type PlacedOrder struct {
	Order           *entity.Order      `json:"order"`
	Items           []entity.OrderItem `json:"items"`
	AdditionalRound bool               `json:"additionalRound"`
}

// PlaceOrder converts the table's cart into a persisted order. The cart is
// cleared and the table marked occupied (first round only) in the same
// transaction; nothing local changes if the write fails.
func (s *OrderService) PlaceOrder(venueID, tableID, staffID uint, notes string) (*PlacedOrder, error) {
	if staffID == 0 {
		return nil, ErrStaffRequired
	}
	sess, err := s.Session(venueID, tableID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	table, err := s.TableRepo.Get(venueID, tableID)
	if err != nil {
		return nil, ErrTableNotFound
	}
	venue, err := s.MenuRepo.GetVenue(venueID)
	if err != nil {
		return nil, err
	}
	cart, err := s.CartRepo.GetCartWithItems(venueID, tableID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	prior, err := s.Repo.ActiveOrdersByTable(venueID, tableID)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, it := range cart.Items {
		subtotal += it.Total
	}
	tax := subtotal * venue.TaxRateBps / 10000
	now := time.Now()

	order := entity.Order{
		VenueID:       venueID,
		TableID:       tableID,
		StaffID:       staffID,
		Status:        entity.OrderPlaced,
		PaymentStatus: entity.PaymentUnpaid,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal + tax,
		Notes:         notes,
	}
	items := make([]entity.OrderItem, 0, len(cart.Items))

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		number, err := s.Repo.NextOrderNumber(tx, venueID, now)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if err := s.Repo.CreateOrder(tx, &order); err != nil {
			return err
		}
		for _, it := range cart.Items {
			oi := entity.OrderItem{
				OrderID:   order.ID,
				MenuID:    it.MenuID,
				Name:      it.Name,
				Qty:       it.Qty,
				UnitPrice: it.UnitPrice,
				Total:     it.Total,
				Note:      it.Note,
				Variants:  it.Variants,
			}
			if err := s.Repo.CreateOrderItem(tx, &oi); err != nil {
				return err
			}
			items = append(items, oi)
		}
		if len(prior) == 0 && table.Status != entity.TableOccupied {
			if err := s.TableRepo.UpdateStatus(tx, venueID, tableID, entity.TableOccupied); err != nil {
				return err
			}
		}
		return s.CartRepo.ClearCart(tx, venueID, tableID)
	})
	if err != nil {
		return nil, err
	}

	sess.State = StatePlaced
	sess.CurrentOrderID = order.ID

	s.Hub.Publish(ws.OrderEvent{
		Kind:    ws.EventOrderCreated,
		VenueID: venueID,
		TableID: tableID,
		OrderID: order.ID,
		Status:  order.Status,
	})

	return &PlacedOrder{Order: &order, Items: items, AdditionalRound: len(prior) > 0}, nil
}

// AddMore reopens the cart for another round. Prior orders stay active and
// untouched; nothing persisted changes besides the cart.
func (s *OrderService) AddMore(venueID, tableID uint) error {
	sess, err := s.Session(venueID, tableID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.State != StatePlaced {
		return ErrNotPlaced
	}
	if err := s.CartRepo.ClearCart(s.DB, venueID, tableID); err != nil {
		return err
	}
	sess.State = StateAddingMore
	return nil
}

// GuardCartOpen rejects cart mutations outside a building state. force
// (the voice path) bypasses the guard entirely.
func (s *OrderService) GuardCartOpen(venueID, tableID uint, force bool) error {
	if force {
		return nil
	}
	sess, err := s.Session(venueID, tableID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.State == StateCart || sess.State == StateAddingMore {
		return nil
	}
	return ErrCartLocked
}

// CancelAllOrders voids every active order for the table and frees it.
// All-or-nothing: one failed update rolls back the lot.
func (s *OrderService) CancelAllOrders(venueID, tableID, staffID uint, reason string) error {
	sess, err := s.Session(venueID, tableID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	active, err := s.Repo.ActiveOrdersByTable(venueID, tableID)
	if err != nil {
		return err
	}

	note := fmt.Sprintf("cancelled by staff %d: %s (%s)",
		staffID, reason, time.Now().UTC().Format(time.RFC3339))

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range active {
			patch := map[string]any{"notes": appendNote(active[i].Notes, note)}
			if err := s.Repo.UpdateOrderStatus(tx, active[i].ID, venueID, entity.OrderCancelled, patch); err != nil {
				return err
			}
		}
		return s.TableRepo.UpdateStatus(tx, venueID, tableID, entity.TableAvailable)
	})
	if err != nil {
		log.Printf("cancel all failed for table %d: %v", tableID, err)
		return err
	}

	if err := s.CartRepo.ClearCart(s.DB, venueID, tableID); err != nil {
		return err
	}
	sess.State = StateCart
	sess.CurrentOrderID = 0

	for i := range active {
		s.Hub.Publish(ws.OrderEvent{
			Kind:    ws.EventOrderStatus,
			VenueID: venueID,
			TableID: tableID,
			OrderID: active[i].ID,
			Status:  entity.OrderCancelled,
		})
	}
	return nil
}

// ---------------- payment ----------------

// SettledPayment is the outcome of one aggregate payment: the orders it
// covered, the per-order shares, and the instruction itself, which is all
// the bill generator needs.
type SettledPayment struct {
	Orders      []entity.Order     `json:"orders"`
	Shares      []Share            `json:"shares"`
	Instruction PaymentInstruction `json:"instruction"`
}

// HandlePayment settles one aggregate payment across every active order of
// the table. Credit ledger entry, coupon redemption, all N order updates
// and the table release commit in a single transaction; a failed coupon
// increment or credit write aborts the whole payment.
func (s *OrderService) HandlePayment(venueID, tableID uint, inst PaymentInstruction) (*SettledPayment, error) {
	sess, err := s.Session(venueID, tableID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	active, err := s.Repo.ActiveOrdersByTable(venueID, tableID)
	if err != nil {
		return nil, err
	}
	shares, err := Settle(active, inst)
	if err != nil {
		return nil, err
	}

	var coupon *entity.Coupon
	if inst.Discount.CouponCode != "" {
		coupon, err = s.CouponRepo.FindByCode(venueID, NormalizeCode(inst.Discount.CouponCode))
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponNotFound
		}
	}

	orderIDs := make([]uint, len(active))
	for i := range active {
		orderIDs[i] = active[i].ID
	}
	customerID := inst.CustomerID
	customerName := sess.CustomerName
	if inst.Credit != nil {
		customerID = inst.Credit.CustomerID
		if inst.Credit.CustomerName != "" {
			customerName = inst.Credit.CustomerName
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if amount := CreditAmount(inst); amount > 0 {
			ct := entity.CreditTransaction{
				VenueID:      venueID,
				CustomerID:   customerID,
				CustomerName: customerName,
				Amount:       amount,
				Status:       entity.CreditOutstanding,
				OrderIDs:     orderIDs,
				Note:         fmt.Sprintf("table %d settlement", tableID),
			}
			if err := s.CreditRepo.Create(tx, &ct); err != nil {
				return err
			}
		}

		if coupon != nil {
			rows, err := s.CouponRepo.IncrementUsageGuard(tx, coupon.ID, venueID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrCouponExhausted
			}
			red := entity.CouponRedemption{
				CouponID:       coupon.ID,
				VenueID:        venueID,
				OrderID:        active[len(active)-1].ID,
				CustomerID:     customerID,
				DiscountAmount: inst.Discount.Coupon,
			}
			if err := s.CouponRepo.CreateRedemption(tx, &red); err != nil {
				return err
			}
		}

		for i := range active {
			patch := map[string]any{
				"payment_status":  entity.PaymentPaid,
				"payment_method":  inst.Method,
				"final_total":     shares[i].FinalTotal,
				"amount_received": shares[i].AmountReceived,
				"discount_amount": shares[i].ManualDiscount,
				"coupon_discount": shares[i].CouponDiscount,
				"coupon_code":     inst.Discount.CouponCode,
				"tip":             shares[i].Tip,
				"credit_amount":   shares[i].CreditAmount,
			}
			if err := s.Repo.UpdateOrderStatus(tx, active[i].ID, venueID, entity.OrderCompleted, patch); err != nil {
				return err
			}
		}

		return s.TableRepo.UpdateStatus(tx, venueID, tableID, entity.TableAvailable)
	})
	if err != nil {
		return nil, err
	}

	sess.State = StateCompleted
	sess.CurrentOrderID = 0
	sess.CustomerID = ""
	sess.CustomerName = ""

	for i := range active {
		s.Hub.Publish(ws.OrderEvent{
			Kind:    ws.EventOrderSettled,
			VenueID: venueID,
			TableID: tableID,
			OrderID: active[i].ID,
			Status:  entity.OrderCompleted,
		})
	}
	return &SettledPayment{Orders: active, Shares: shares, Instruction: inst}, nil
}

// AttachCustomer remembers who is sitting at the table, for coupons and
// credit ledgering.
func (s *OrderService) AttachCustomer(venueID, tableID uint, customerID, name string) error {
	sess, err := s.Session(venueID, tableID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.CustomerID = customerID
	sess.CustomerName = name
	return nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
