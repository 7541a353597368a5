package handlers

import (
	"net/http"

	"dinewise/middleware"
	"dinewise/services/deal"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DealHandler struct {
	Deals  deal.DealService
	Logger *zap.Logger
}

func (h *DealHandler) Create(c *gin.Context) {
	var in deal.DealInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	d, err := h.Deals.Create(c.Request.Context(), middleware.OwnerOf(c).ID, in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DealHandler) ListMine(c *gin.Context) {
	deals, err := h.Deals.ListMine(c.Request.Context(), middleware.OwnerOf(c).ID)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, deals)
}

func (h *DealHandler) Update(c *gin.Context) {
	var in deal.DealInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	d, err := h.Deals.Update(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id"), in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DealHandler) Delete(c *gin.Context) {
	if err := h.Deals.Delete(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id")); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deal deleted"})
}

// ListForBusiness handles GET /api/deals/business/:businessId.
func (h *DealHandler) ListForBusiness(c *gin.Context) {
	deals, err := h.Deals.ListForBusiness(c.Request.Context(), c.Param("businessId"))
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, deals)
}
