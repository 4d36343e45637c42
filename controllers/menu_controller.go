package controllers

import (
	"tableside/pkg/resp"
	"tableside/repository"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type MenuController struct{ Repo *repository.MenuRepository }

func NewMenuController(repo *repository.MenuRepository) *MenuController {
	return &MenuController{Repo: repo}
}

// GET /menu
func (h *MenuController) List(c *gin.Context) {
	venueID := utils.CurrentVenueID(c)

	cats, err := h.Repo.ListCategories(venueID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	menus, err := h.Repo.ListMenus(venueID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"categories": cats, "items": menus})
}
