package services

import (
	"errors"

	"tableside/entity"
	"tableside/repository"

	"gorm.io/gorm"
)

var ErrMenuUnavailable = errors.New("menu item not available")

type CartService struct {
	DB       *gorm.DB
	CartRepo *repository.CartRepository
	MenuRepo *repository.MenuRepository
}

func NewCartService(db *gorm.DB, cr *repository.CartRepository, mr *repository.MenuRepository) *CartService {
	return &CartService{DB: db, CartRepo: cr, MenuRepo: mr}
}

type AddToCartIn struct {
	MenuID   uint     `json:"menuId" binding:"required"`
	Qty      int      `json:"qty" binding:"min=1"`
	Note     string   `json:"note"`
	Variants []string `json:"variants"`

	// variant pricing is resolved by the caller's menu screen; when set it
	// overrides the base menu price for this line
	UnitPrice int64 `json:"unitPrice"`
	Name      string `json:"name"`
}

func (s *CartService) Get(venueID, tableID uint) (*entity.Cart, int64, error) {
	c, err := s.CartRepo.GetCartWithItems(venueID, tableID)
	if err != nil {
		return nil, 0, err
	}
	var subtotal int64
	for _, it := range c.Items {
		subtotal += it.Total
	}
	return c, subtotal, nil
}

func (s *CartService) Add(venueID, tableID uint, in *AddToCartIn) error {
	if in.Qty <= 0 {
		in.Qty = 1
	}

	c, err := s.CartRepo.GetOrCreateCart(venueID, tableID)
	if err != nil {
		return err
	}

	m, err := s.MenuRepo.GetMenu(venueID, in.MenuID)
	if err != nil {
		return err
	}
	if !m.IsAvailable {
		return ErrMenuUnavailable
	}

	unit := m.Price
	name := m.Name
	if len(in.Variants) > 0 {
		if in.UnitPrice > 0 {
			unit = in.UnitPrice
		}
		if in.Name != "" {
			name = in.Name
		}
	}

	line := &entity.CartItem{
		MenuID:    m.ID,
		Name:      name,
		Qty:       in.Qty,
		UnitPrice: unit,
		Total:     unit * int64(in.Qty),
		Note:      in.Note,
		Variants:  in.Variants,
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CartRepo.UpsertItem(tx, c.ID, line)
	})
}

func (s *CartService) UpdateQty(venueID, tableID, itemID uint, qty int) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CartRepo.UpdateQty(tx, venueID, tableID, itemID, qty)
	})
}

func (s *CartService) RemoveItem(venueID, tableID, itemID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CartRepo.RemoveItem(tx, venueID, tableID, itemID)
	})
}

func (s *CartService) Clear(venueID, tableID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CartRepo.ClearCart(tx, venueID, tableID)
	})
}
