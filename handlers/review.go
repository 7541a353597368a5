package handlers

import (
	"net/http"
	"strings"

	reviewRepo "dinewise/database/repository/review"
	"dinewise/middleware"
	"dinewise/models"
	"dinewise/services/review"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	Reviews review.ReviewService
	Logger  *zap.Logger
}

// reviewForm accepts a review as JSON or as multipart form fields with "images" files.
type reviewForm struct {
	BusinessID     string `json:"businessId" form:"businessId"`
	Title          string `json:"title" form:"title"`
	Text           string `json:"text" form:"text"`
	FoodRating     int    `json:"foodRating" form:"foodRating"`
	ServiceRating  int    `json:"serviceRating" form:"serviceRating"`
	AmbienceRating int    `json:"ambienceRating" form:"ambienceRating"`
}

// images saves any uploaded "images" files for the duration of the request.
func (h *ReviewHandler) images(c *gin.Context) ([]string, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, func() {}, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, utils.Validation("invalid multipart form: %v", err)
	}
	return saveUploads(c, form.File["images"])
}

func (h *ReviewHandler) bindForm(c *gin.Context) (reviewForm, error) {
	var f reviewForm
	if err := c.ShouldBind(&f); err != nil {
		return f, utils.Validation("invalid request body: %v", err)
	}
	return f, nil
}

// List handles GET /api/reviews. businessId lists a business's reviews;
// mine=true lists the caller's own.
func (h *ReviewHandler) List(c *gin.Context) {
	criteria := reviewRepo.ListCriteria{
		BusinessID: c.Query("businessId"),
		SortBy:     c.Query("sortBy"),
		Ascending:  strings.EqualFold(c.Query("order"), "asc"),
	}
	var viewerID string
	if me := middleware.CustomerOf(c); me != nil {
		viewerID = me.ID
	}
	if c.Query("mine") == "true" {
		if viewerID == "" {
			utils.WriteError(c, h.Logger, utils.Unauthorized("sign in to list your reviews"))
			return
		}
		criteria.CustomerID = viewerID
	}
	if criteria.BusinessID == "" && criteria.CustomerID == "" {
		utils.WriteError(c, h.Logger, utils.Validation("businessId or mine=true is required"))
		return
	}

	var err error
	if criteria.MinRating, _, err = queryFloat(c, "minRating"); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	if criteria.MaxRating, _, err = queryFloat(c, "maxRating"); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	if criteria.Page, err = queryInt(c, "page", 1); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	if criteria.Limit, err = queryInt(c, "limit", 20); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}

	page, err := h.Reviews.List(c.Request.Context(), criteria, viewerID)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	var viewerID string
	if me := middleware.CustomerOf(c); me != nil {
		viewerID = me.ID
	}
	r, err := h.Reviews.Get(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	f, err := h.bindForm(c)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	paths, cleanup, err := h.images(c)
	defer cleanup()
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}

	r, err := h.Reviews.Create(c.Request.Context(), middleware.CustomerOf(c).ID, review.CreateInput{
		BusinessID:     f.BusinessID,
		Title:          f.Title,
		Text:           f.Text,
		FoodRating:     f.FoodRating,
		ServiceRating:  f.ServiceRating,
		AmbienceRating: f.AmbienceRating,
		ImagePaths:     paths,
	})
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// Update handles PATCH /api/reviews/:id.
func (h *ReviewHandler) Update(c *gin.Context) {
	f, err := h.bindForm(c)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	paths, cleanup, err := h.images(c)
	defer cleanup()
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}

	r, err := h.Reviews.Update(c.Request.Context(), middleware.CustomerOf(c).ID, c.Param("id"), review.UpdateInput{
		Title:          f.Title,
		Text:           f.Text,
		FoodRating:     f.FoodRating,
		ServiceRating:  f.ServiceRating,
		AmbienceRating: f.AmbienceRating,
		ImagePaths:     paths,
	})
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.Reviews.Delete(c.Request.Context(), middleware.CustomerOf(c).ID, c.Param("id")); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// Vote handles POST /api/reviews/vote with {"reviewId", "action": "upvote"|"downvote"}.
func (h *ReviewHandler) Vote(c *gin.Context) {
	var req struct {
		ReviewID string               `json:"reviewId"`
		Action   models.VoteDirection `json:"action"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	if req.ReviewID == "" {
		utils.WriteError(c, h.Logger, utils.Validation("reviewId is required"))
		return
	}
	res, err := h.Reviews.Vote(c.Request.Context(), middleware.CustomerOf(c).ID, req.ReviewID, req.Action)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Respond handles POST /api/reviews/:id/response.
func (h *ReviewHandler) Respond(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	resp, err := h.Reviews.Respond(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id"), req.Text)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
