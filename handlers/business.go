package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	businessRepo "dinewise/database/repository/business"
	"dinewise/middleware"
	"dinewise/services/business"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BusinessHandler struct {
	Businesses business.BusinessService
	Logger     *zap.Logger
}

// Search handles GET /api/businesses/search?q=&selectedCuisines=a,b&sortBy=&page=&pageSize=.
func (h *BusinessHandler) Search(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	size, err := queryInt(c, "pageSize", 20)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	var selected []string
	for _, raw := range c.QueryArray("selectedCuisines") {
		for _, cuisine := range strings.Split(raw, ",") {
			if cuisine = strings.TrimSpace(cuisine); cuisine != "" {
				selected = append(selected, cuisine)
			}
		}
	}

	result, err := h.Businesses.Search(c.Request.Context(), businessRepo.SearchCriteria{
		Query:            strings.TrimSpace(c.Query("q")),
		SelectedCuisines: selected,
		SortBy:           c.Query("sortBy"),
		Page:             page,
		PageSize:         size,
	})
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BusinessHandler) Get(c *gin.Context) {
	detail, err := h.Businesses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *BusinessHandler) CuisineSummary(c *gin.Context) {
	summary, err := h.Businesses.CuisineSummary(c.Request.Context())
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *BusinessHandler) ListPriceRanges(c *gin.Context) {
	ranges, err := h.Businesses.ListPriceRanges(c.Request.Context())
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, ranges)
}

func (h *BusinessHandler) CreatePriceRange(c *gin.Context) {
	var in business.PriceRangeInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	pr, err := h.Businesses.CreatePriceRange(c.Request.Context(), in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, pr)
}

func (h *BusinessHandler) ListMine(c *gin.Context) {
	list, err := h.Businesses.ListMine(c.Request.Context(), middleware.OwnerOf(c).ID)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BusinessHandler) Create(c *gin.Context) {
	var in business.CreateInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	b, err := h.Businesses.Create(c.Request.Context(), middleware.OwnerOf(c).ID, in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BusinessHandler) GetMine(c *gin.Context) {
	detail, err := h.Businesses.GetMine(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id"))
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	var in business.UpdateInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	b, err := h.Businesses.Update(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id"), in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) Delete(c *gin.Context) {
	if err := h.Businesses.Delete(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id")); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Business deleted"})
}

// UploadImage handles POST /api/owner/businesses/:id/images with a multipart "image" file.
func (h *BusinessHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		utils.WriteError(c, h.Logger, utils.Validation("image file not provided"))
		return
	}
	paths, cleanup, err := saveUploads(c, []*multipart.FileHeader{fh})
	defer cleanup()
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	b, err := h.Businesses.AddImage(c.Request.Context(), middleware.OwnerOf(c).ID, c.Param("id"), paths[0])
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
