package repository

import (
	"errors"

	"tableside/entity"

	"gorm.io/gorm"
)

type CouponRepository struct{ DB *gorm.DB }

func NewCouponRepository(db *gorm.DB) *CouponRepository { return &CouponRepository{DB: db} }

// FindByCode looks up by normalized (upper-case) code. nil, nil when absent.
func (r *CouponRepository) FindByCode(venueID uint, code string) (*entity.Coupon, error) {
	var c entity.Coupon
	err := r.DB.Where("venue_id = ? AND code = ?", venueID, code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepository) List(venueID uint) ([]entity.Coupon, error) {
	var coupons []entity.Coupon
	err := r.DB.Where("venue_id = ?", venueID).Order("id DESC").Find(&coupons).Error
	return coupons, err
}

// IncrementUsageGuard bumps usage_count atomically, refusing to move past
// the limit. Rows affected = 0 means another terminal exhausted it first;
// never read-modify-write from a stale copy.
func (r *CouponRepository) IncrementUsageGuard(tx *gorm.DB, couponID, venueID uint) (int64, error) {
	res := tx.Exec(`
		UPDATE coupons
		   SET usage_count = usage_count + 1
		 WHERE id = ? AND venue_id = ?
		   AND (
		         json_extract(validity, '$.usageLimit') IS NULL
		      OR json_extract(validity, '$.usageLimit') = 0
		      OR usage_count < json_extract(validity, '$.usageLimit')
		   )
	`, couponID, venueID)
	return res.RowsAffected, res.Error
}

func (r *CouponRepository) CreateRedemption(tx *gorm.DB, red *entity.CouponRedemption) error {
	return tx.Create(red).Error
}

// CountRedemptionsByCustomer feeds the per-customer limit check.
func (r *CouponRepository) CountRedemptionsByCustomer(couponID uint, customerID string) (int64, error) {
	if customerID == "" {
		return 0, nil
	}
	var count int64
	err := r.DB.Model(&entity.CouponRedemption{}).
		Where("coupon_id = ? AND customer_id = ?", couponID, customerID).
		Count(&count).Error
	return count, err
}
