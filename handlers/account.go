package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"dinewise/middleware"
	"dinewise/services/auth"
	"dinewise/services/customer"
	"dinewise/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AccountHandler struct {
	Auth      auth.AuthService
	Customers customer.CustomerService
	Logger    *zap.Logger
}

// Register handles POST /api/auth/register.
func (h *AccountHandler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	tok, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, tok)
}

// Login handles POST /api/auth/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var in auth.LoginInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	tok, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h *AccountHandler) GetMe(c *gin.Context) {
	me, err := h.Customers.Get(c.Request.Context(), middleware.CustomerOf(c).ID)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// UpdateMe handles PATCH /api/customers/me as JSON, or as multipart form
// fields with an optional "profile_image" file.
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var in customer.ProfileInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&in); err != nil {
			utils.WriteError(c, h.Logger, utils.Validation("invalid request body: %v", err))
			return
		}
		if fh, err := c.FormFile("profile_image"); err == nil {
			paths, cleanup, err := saveUploads(c, []*multipart.FileHeader{fh})
			defer cleanup()
			if err != nil {
				utils.WriteError(c, h.Logger, err)
				return
			}
			in.ImagePath = paths[0]
		}
	} else if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	me, err := h.Customers.UpdateProfile(c.Request.Context(), middleware.CustomerOf(c).ID, in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// DeleteMe handles DELETE /api/customers/me. Reviews written by the account stay published.
func (h *AccountHandler) DeleteMe(c *gin.Context) {
	if err := h.Customers.Delete(c.Request.Context(), middleware.CustomerOf(c).ID); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// UpdatePreferences handles PUT /api/customers/me/preferences.
func (h *AccountHandler) UpdatePreferences(c *gin.Context) {
	var in customer.PreferencesInput
	if err := bindJSON(c, &in); err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	me, err := h.Customers.UpdatePreferences(c.Request.Context(), middleware.CustomerOf(c).ID, in)
	if err != nil {
		utils.WriteError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, me)
}
