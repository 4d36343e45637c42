package repository

import (
	"tableside/entity"

	"gorm.io/gorm"
)

type CreditRepository struct{ DB *gorm.DB }

func NewCreditRepository(db *gorm.DB) *CreditRepository { return &CreditRepository{DB: db} }

func (r *CreditRepository) Create(tx *gorm.DB, ct *entity.CreditTransaction) error {
	return tx.Create(ct).Error
}

func (r *CreditRepository) ListByCustomer(venueID uint, customerID string) ([]entity.CreditTransaction, error) {
	var rows []entity.CreditTransaction
	err := r.DB.Where("venue_id = ? AND customer_id = ?", venueID, customerID).
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}
