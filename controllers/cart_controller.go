package controllers

import (
	"errors"
	"strconv"

	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CartController struct {
	Svc    *services.CartService
	Orders *services.OrderService
}

func NewCartController(svc *services.CartService, orders *services.OrderService) *CartController {
	return &CartController{Svc: svc, Orders: orders}
}

func tableParam(c *gin.Context) uint {
	id, _ := strconv.ParseUint(c.Param("tableId"), 10, 32)
	return uint(id)
}

// GET /tables/:tableId/cart
func (h *CartController) Get(c *gin.Context) {
	cart, subtotal, err := h.Svc.Get(utils.CurrentVenueID(c), tableParam(c))
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"cart": cart, "subtotal": subtotal})
}

// POST /tables/:tableId/cart/items
func (h *CartController) Add(c *gin.Context) {
	venueID, tableID := utils.CurrentVenueID(c), tableParam(c)

	var req services.AddToCartIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	if err := h.Orders.GuardCartOpen(venueID, tableID, false); err != nil {
		resp.Conflict(c, err.Error())
		return
	}

	if err := h.Svc.Add(venueID, tableID, &req); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resp.NotFound(c, "menu item not found")
			return
		}
		resp.BadRequest(c, err.Error())
		return
	}
	resp.Created(c, gin.H{"added": req.MenuID})
}

// PATCH /tables/:tableId/cart/items
func (h *CartController) UpdateQty(c *gin.Context) {
	var body struct {
		ItemID uint `json:"itemId" binding:"required"`
		Qty    int  `json:"qty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if err := h.Svc.UpdateQty(utils.CurrentVenueID(c), tableParam(c), body.ItemID, body.Qty); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"itemId": body.ItemID, "qty": body.Qty})
}

// DELETE /tables/:tableId/cart/items/:itemId
func (h *CartController) RemoveItem(c *gin.Context) {
	itemID, _ := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err := h.Svc.RemoveItem(utils.CurrentVenueID(c), tableParam(c), uint(itemID)); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"removed": itemID})
}

// DELETE /tables/:tableId/cart
func (h *CartController) Clear(c *gin.Context) {
	if err := h.Svc.Clear(utils.CurrentVenueID(c), tableParam(c)); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"cleared": true})
}
