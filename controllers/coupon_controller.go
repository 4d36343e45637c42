package controllers

import (
	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type CouponController struct{ Svc *services.CouponService }

func NewCouponController(svc *services.CouponService) *CouponController {
	return &CouponController{Svc: svc}
}

// GET /coupons
func (h *CouponController) List(c *gin.Context) {
	coupons, err := h.Svc.List(utils.CurrentVenueID(c))
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, coupons)
}

type validateCouponReq struct {
	Code          string `json:"code" binding:"required"`
	TableID       uint   `json:"tableId" binding:"required"`
	CustomerID    string `json:"customerId"`
	PaymentMethod string `json:"paymentMethod"`
}

// POST /coupons/validate: read-only; redemption happens at payment
func (h *CouponController) Validate(c *gin.Context) {
	var req validateCouponReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	eval, err := h.Svc.Validate(utils.CurrentVenueID(c), req.TableID, req.Code, req.CustomerID, req.PaymentMethod)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	if !eval.Valid {
		resp.OK(c, gin.H{"isValid": false, "error": eval.Err.Error()})
		return
	}
	resp.OK(c, eval)
}
