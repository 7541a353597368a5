package handlers

import (
	"net/http"
	"strings"

	"dinewise/middleware"
	"dinewise/services/recommendation"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RecommendationHandler struct {
	Ranker recommendation.RecommendationService
	Logger *zap.Logger
}

// Recommend handles GET /api/recommendations?lat=&lng=&preferredSuburb=.
// Anonymous callers get location-based and trending results only.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	loc, err := queryLocation(c)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	recs, err := h.Ranker.Recommend(c.Request.Context(), recommendation.Request{
		Customer: middleware.CustomerOf(c),
		Location: loc,
		Suburb:   strings.TrimSpace(c.Query("preferredSuburb")),
	})
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}
