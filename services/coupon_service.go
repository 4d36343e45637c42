package services

import (
	"time"

	"tableside/entity"
	"tableside/repository"

	"gorm.io/gorm"
)

type CouponService struct {
	DB         *gorm.DB
	CouponRepo *repository.CouponRepository
	CartRepo   *repository.CartRepository
	MenuRepo   *repository.MenuRepository
}

func NewCouponService(db *gorm.DB, cr *repository.CouponRepository, cartRepo *repository.CartRepository, mr *repository.MenuRepository) *CouponService {
	return &CouponService{DB: db, CouponRepo: cr, CartRepo: cartRepo, MenuRepo: mr}
}

// Validate runs the read-only pipeline for a coupon code against the
// table's current cart. Nothing is consumed here.
func (s *CouponService) Validate(venueID, tableID uint, code, customerID, paymentMethod string) (Evaluation, error) {
	coupon, err := s.CouponRepo.FindByCode(venueID, NormalizeCode(code))
	if err != nil {
		return Evaluation{}, err
	}
	if coupon == nil {
		return Evaluation{Err: ErrCouponNotFound}, nil
	}

	cart, err := s.CartRepo.GetCartWithItems(venueID, tableID)
	if err != nil {
		return Evaluation{}, err
	}
	catalogue, err := s.MenuRepo.Catalogue(venueID)
	if err != nil {
		return Evaluation{}, err
	}

	uses := 0
	if customerID != "" {
		n, err := s.CouponRepo.CountRedemptionsByCustomer(coupon.ID, customerID)
		if err != nil {
			return Evaluation{}, err
		}
		uses = int(n)
	}

	return Evaluate(coupon, EvalContext{
		Lines:         cart.Items,
		Catalogue:     catalogue,
		PaymentMethod: paymentMethod,
		CustomerUses:  uses,
		Now:           time.Now(),
	}), nil
}

func (s *CouponService) List(venueID uint) ([]entity.Coupon, error) {
	return s.CouponRepo.List(venueID)
}
