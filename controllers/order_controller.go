package controllers

import (
	"errors"

	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Svc        *services.OrderService
	Dispatcher *services.CommandDispatcher
}

func NewOrderController(svc *services.OrderService, d *services.CommandDispatcher) *OrderController {
	return &OrderController{Svc: svc, Dispatcher: d}
}

type placeOrderReq struct {
	Notes string `json:"notes"`
}

// POST /tables/:tableId/orders: cart -> placed, with a KOT for the round
func (h *OrderController) Place(c *gin.Context) {
	var req placeOrderReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err.Error())
			return
		}
	}

	out, err := h.Dispatcher.Dispatch(services.Command{
		Type:    services.CmdPlaceOrder,
		VenueID: utils.CurrentVenueID(c),
		TableID: tableParam(c),
		StaffID: utils.CurrentStaffID(c),
		Notes:   req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrStaffRequired):
			resp.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrTableNotFound):
			resp.NotFound(c, err.Error())
		default:
			resp.ServerError(c, err)
		}
		return
	}
	resp.Created(c, out)
}

// POST /tables/:tableId/orders/add-more: reopen the cart for another round
func (h *OrderController) AddMore(c *gin.Context) {
	if err := h.Svc.AddMore(utils.CurrentVenueID(c), tableParam(c)); err != nil {
		if errors.Is(err, services.ErrNotPlaced) {
			resp.Conflict(c, err.Error())
			return
		}
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"state": services.StateAddingMore})
}

type cancelReq struct {
	Reason string `json:"reason" binding:"required"`
}

// POST /tables/:tableId/orders/cancel: void every active order
func (h *OrderController) CancelAll(c *gin.Context) {
	var req cancelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if err := h.Svc.CancelAllOrders(utils.CurrentVenueID(c), tableParam(c), utils.CurrentStaffID(c), req.Reason); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"cancelled": true})
}

// GET /tables/:tableId/orders: full history for the table
func (h *OrderController) ListForTable(c *gin.Context) {
	orders, err := h.Svc.Repo.GetOrdersByTable(utils.CurrentVenueID(c), tableParam(c))
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, orders)
}

// GET /tables/:tableId/orders/active
func (h *OrderController) ListActive(c *gin.Context) {
	orders, err := h.Svc.Repo.ActiveOrdersByTable(utils.CurrentVenueID(c), tableParam(c))
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, orders)
}

// POST /tables/:tableId/orders/kot: reprint the current round's ticket
func (h *OrderController) ReprintKot(c *gin.Context) {
	out, err := h.Dispatcher.Dispatch(services.Command{
		Type:    services.CmdPrintKot,
		VenueID: utils.CurrentVenueID(c),
		TableID: tableParam(c),
		StaffID: utils.CurrentStaffID(c),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotPlaced) {
			resp.Conflict(c, err.Error())
			return
		}
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, out)
}
