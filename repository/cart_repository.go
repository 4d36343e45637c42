package repository

import (
	"errors"

	"tableside/entity"

	"gorm.io/gorm"
)

type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

// GetCartWithItems returns the table's cart, or an empty one (not an error)
// so terminals can always render.
func (r *CartRepository) GetCartWithItems(venueID, tableID uint) (*entity.Cart, error) {
	var c entity.Cart
	err := r.DB.Where("venue_id = ? AND table_id = ?", venueID, tableID).
		Preload("Items").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.Cart{VenueID: venueID, TableID: tableID}, nil
	}
	return &c, err
}

func (r *CartRepository) GetOrCreateCart(venueID, tableID uint) (*entity.Cart, error) {
	var c entity.Cart
	err := r.DB.Where("venue_id = ? AND table_id = ?", venueID, tableID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = entity.Cart{VenueID: venueID, TableID: tableID}
		if err := r.DB.Create(&c).Error; err != nil {
			return nil, err
		}
		return &c, nil
	}
	return &c, err
}

// UpsertItem merges into an existing line only when the line has no
// variants; variant lines price and display differently and stay distinct.
func (r *CartRepository) UpsertItem(tx *gorm.DB, cartID uint, row *entity.CartItem) error {
	if len(row.Variants) == 0 {
		var exist entity.CartItem
		err := tx.Where("cart_id = ? AND menu_id = ? AND note = ? AND (variants IS NULL OR variants = '' OR variants = 'null' OR variants = '[]')",
			cartID, row.MenuID, row.Note).
			First(&exist).Error
		if err == nil {
			exist.Qty += row.Qty
			exist.Total = int64(exist.Qty) * exist.UnitPrice
			return tx.Save(&exist).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	row.CartID = cartID
	return tx.Create(row).Error
}

func (r *CartRepository) UpdateQty(tx *gorm.DB, venueID, tableID, itemID uint, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(tx, venueID, tableID, itemID)
	}
	return tx.Exec(`
		UPDATE cart_items
		   SET qty = ?, total = unit_price * ?
		 WHERE id = ?
		   AND cart_id IN (SELECT id FROM carts WHERE venue_id = ? AND table_id = ?)
	`, qty, qty, itemID, venueID, tableID).Error
}

func (r *CartRepository) RemoveItem(tx *gorm.DB, venueID, tableID, itemID uint) error {
	return tx.
		Where("id = ? AND cart_id IN (SELECT id FROM carts WHERE venue_id = ? AND table_id = ?)",
			itemID, venueID, tableID).
		Delete(&entity.CartItem{}).Error
}

func (r *CartRepository) ClearCart(tx *gorm.DB, venueID, tableID uint) error {
	var c entity.Cart
	if err := tx.Where("venue_id = ? AND table_id = ?", venueID, tableID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return tx.Where("cart_id = ?", c.ID).Delete(&entity.CartItem{}).Error
}
