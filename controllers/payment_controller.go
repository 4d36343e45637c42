package controllers

import (
	"errors"

	"tableside/pkg/resp"
	"tableside/repository"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Dispatcher *services.CommandDispatcher
	CreditRepo *repository.CreditRepository
}

func NewPaymentController(d *services.CommandDispatcher, cr *repository.CreditRepository) *PaymentController {
	return &PaymentController{Dispatcher: d, CreditRepo: cr}
}

// POST /tables/:tableId/payment: settle one combined bill across every
// active order on the table
func (h *PaymentController) Pay(c *gin.Context) {
	var inst services.PaymentInstruction
	if err := c.ShouldBindJSON(&inst); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := h.Dispatcher.Dispatch(services.Command{
		Type:    services.CmdPay,
		VenueID: utils.CurrentVenueID(c),
		TableID: tableParam(c),
		StaffID: utils.CurrentStaffID(c),
		Payment: &inst,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoActiveOrders):
			resp.Conflict(c, err.Error())
		case errors.Is(err, services.ErrCouponNotFound):
			resp.NotFound(c, err.Error())
		case errors.Is(err, services.ErrCouponExhausted):
			resp.Conflict(c, err.Error())
		default:
			resp.ServerError(c, err)
		}
		return
	}
	resp.OK(c, out)
}

// GET /credit/:customerId: the customer's ledger entries
func (h *PaymentController) ListCredit(c *gin.Context) {
	rows, err := h.CreditRepo.ListByCustomer(utils.CurrentVenueID(c), c.Param("customerId"))
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, rows)
}
