package repository

import (
	"fmt"
	"time"

	"tableside/entity"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders ----------------

func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) GetOrder(venueID, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := r.DB.Where("id = ? AND venue_id = ?", orderID, venueID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetOrdersByTable(venueID, tableID uint) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.DB.Where("venue_id = ? AND table_id = ?", venueID, tableID).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// ActiveOrdersByTable returns every order still owed kitchen or payment
// work: the live statuses plus completed-but-unpaid.
func (r *OrderRepository) ActiveOrdersByTable(venueID, tableID uint) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.DB.
		Where("venue_id = ? AND table_id = ?", venueID, tableID).
		Where("status IN ? OR (status = ? AND payment_status <> ?)",
			entity.ActiveOrderStatuses, entity.OrderCompleted, entity.PaymentPaid).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus sets the status plus any extra patch fields in one
// update. The patch never carries "total"; the placement snapshot stays.
func (r *OrderRepository) UpdateOrderStatus(tx *gorm.DB, orderID, venueID uint, status string, patch map[string]any) error {
	updates := map[string]any{"status": status}
	for k, v := range patch {
		if k == "total" {
			continue
		}
		updates[k] = v
	}
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND venue_id = ?", orderID, venueID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatusGuard moves an order from one status to another only if it is
// still in the expected status; the rows-affected count tells the caller
// whether it won the race.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to string) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// NextOrderNumber issues ORD-YYYYMMDD-N scoped to the venue and day.
func (r *OrderRepository) NextOrderNumber(tx *gorm.DB, venueID uint, now time.Time) (string, error) {
	day := now.Format("20060102")
	var count int64
	err := tx.Model(&entity.Order{}).
		Where("venue_id = ? AND order_number LIKE ?", venueID, "ORD-"+day+"-%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%d", day, count+1), nil
}

// ---------------- Order items ----------------

func (r *OrderRepository) CreateOrderItem(tx *gorm.DB, oi *entity.OrderItem) error {
	return tx.Create(oi).Error
}

func (r *OrderRepository) GetOrderItems(orderID uint) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.DB.Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (r *OrderRepository) GetOrderItemsForOrders(orderIDs []uint) ([]entity.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var items []entity.OrderItem
	err := r.DB.Where("order_id IN ?", orderIDs).Order("order_id ASC, id ASC").Find(&items).Error
	return items, err
}
