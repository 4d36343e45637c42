package services

import (
	"fmt"
	"testing"

	"tableside/entity"
	"tableside/repository"
	"tableside/ws"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the service stack onto an in-memory database seeded with
// one venue (8.5% tax), one table and a small menu.
type testEnv struct {
	db     *gorm.DB
	hub    *ws.OrderHub
	orders *OrderService
	carts  *CartService

	venue entity.Venue
	table entity.Table
	menus map[string]entity.Menu
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&entity.Venue{},
		&entity.Table{},
		&entity.Staff{},
		&entity.Category{},
		&entity.Menu{},
		&entity.Cart{},
		&entity.CartItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.Coupon{},
		&entity.CouponRedemption{},
		&entity.CreditTransaction{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	venue := entity.Venue{Name: "Spice Route", Currency: "INR", TaxRateBps: 850}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	table := entity.Table{VenueID: venue.ID, Number: 5, Area: "Main", Capacity: 4, Status: entity.TableAvailable}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("seed table: %v", err)
	}

	menus := map[string]entity.Menu{}
	for _, m := range []entity.Menu{
		{VenueID: venue.ID, CategoryID: 1, Name: "Paneer Tikka", Price: 15000, IsAvailable: true},
		{VenueID: venue.ID, CategoryID: 1, Name: "Dal Makhani", Price: 5000, IsAvailable: true},
		{VenueID: venue.ID, CategoryID: 2, Name: "Mojito", Price: 10000, IsAvailable: true},
		{VenueID: venue.ID, CategoryID: 2, Name: "Old Stock", Price: 2000, IsAvailable: false},
	} {
		row := m
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed menu: %v", err)
		}
		menus[row.Name] = row
	}

	hub := ws.NewOrderHub()
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tableRepo := repository.NewTableRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	orders := NewOrderService(db, orderRepo, cartRepo, tableRepo, menuRepo, couponRepo, creditRepo,
		hub, RetryPolicy{MaxAttempts: 1})
	carts := NewCartService(db, cartRepo, menuRepo)

	return &testEnv{
		db:     db,
		hub:    hub,
		orders: orders,
		carts:  carts,
		venue:  venue,
		table:  table,
		menus:  menus,
	}
}

func (e *testEnv) addToCart(t *testing.T, name string, qty int) {
	t.Helper()
	m, ok := e.menus[name]
	if !ok {
		t.Fatalf("no seeded menu %q", name)
	}
	if err := e.carts.Add(e.venue.ID, e.table.ID, &AddToCartIn{MenuID: m.ID, Qty: qty}); err != nil {
		t.Fatalf("add %q to cart: %v", name, err)
	}
}

func (e *testEnv) place(t *testing.T) *PlacedOrder {
	t.Helper()
	placed, err := e.orders.PlaceOrder(e.venue.ID, e.table.ID, 1, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return placed
}

func (e *testEnv) tableStatus(t *testing.T) string {
	t.Helper()
	var table entity.Table
	if err := e.db.First(&table, e.table.ID).Error; err != nil {
		t.Fatalf("reload table: %v", err)
	}
	return table.Status
}

func (e *testEnv) cartLines(t *testing.T) []entity.CartItem {
	t.Helper()
	cart, err := e.orders.CartRepo.GetCartWithItems(e.venue.ID, e.table.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	return cart.Items
}
