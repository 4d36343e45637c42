package controllers

import (
	"tableside/pkg/resp"
	"tableside/repository"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type TableController struct {
	Repo   *repository.TableRepository
	Orders *services.OrderService
}

func NewTableController(repo *repository.TableRepository, orders *services.OrderService) *TableController {
	return &TableController{Repo: repo, Orders: orders}
}

// GET /tables: the floor view
func (h *TableController) List(c *gin.Context) {
	tables, err := h.Repo.List(utils.CurrentVenueID(c))
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, tables)
}

// GET /tables/:tableId: table plus its lifecycle session state
func (h *TableController) Detail(c *gin.Context) {
	venueID, tableID := utils.CurrentVenueID(c), tableParam(c)

	table, err := h.Repo.Get(venueID, tableID)
	if err != nil {
		resp.NotFound(c, "table not found")
		return
	}

	sess, err := h.Orders.Session(venueID, tableID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}

	active, err := h.Orders.Repo.ActiveOrdersByTable(venueID, tableID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}

	resp.OK(c, gin.H{
		"table":        table,
		"state":        sess.State,
		"currentOrder": sess.CurrentOrderID,
		"activeOrders": active,
	})
}
