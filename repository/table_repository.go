package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type TableRepository struct{ DB *gorm.DB }

func NewTableRepository(db *gorm.DB) *TableRepository { return &TableRepository{DB: db} }

func (r *TableRepository) Get(venueID, tableID uint) (*entity.Table, error) {
	var t entity.Table
	if err := r.DB.Where("id = ? AND venue_id = ?", tableID, venueID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TableRepository) List(venueID uint) ([]entity.Table, error) {
	var tables []entity.Table
	err := r.DB.Where("venue_id = ?", venueID).Order("number ASC").Find(&tables).Error
	return tables, err
}

func (r *TableRepository) UpdateStatus(tx *gorm.DB, venueID, tableID uint, status string) error {
	return tx.Model(&entity.Table{}).
		Where("id = ? AND venue_id = ?", tableID, venueID).
		Update("status", status).Error
}
