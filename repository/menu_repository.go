package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type MenuRepository struct{ DB *gorm.DB }

func NewMenuRepository(db *gorm.DB) *MenuRepository { return &MenuRepository{DB: db} }

func (r *MenuRepository) GetMenu(venueID, menuID uint) (*entity.Menu, error) {
	var m entity.Menu
	if err := r.DB.Where("id = ? AND venue_id = ?", menuID, venueID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MenuRepository) ListMenus(venueID uint) ([]entity.Menu, error) {
	var menus []entity.Menu
	err := r.DB.Where("venue_id = ?", venueID).Order("category_id ASC, name ASC").Find(&menus).Error
	return menus, err
}

func (r *MenuRepository) ListCategories(venueID uint) ([]entity.Category, error) {
	var cats []entity.Category
	err := r.DB.Where("venue_id = ?", venueID).Order("name ASC").Find(&cats).Error
	return cats, err
}

// Catalogue returns the venue's menu keyed by id, the shape the coupon
// engine consumes.
func (r *MenuRepository) Catalogue(venueID uint) (map[uint]entity.Menu, error) {
	menus, err := r.ListMenus(venueID)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]entity.Menu, len(menus))
	for _, m := range menus {
		out[m.ID] = m
	}
	return out, nil
}

func (r *MenuRepository) GetVenue(venueID uint) (*entity.Venue, error) {
	var v entity.Venue
	if err := r.DB.First(&v, venueID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
