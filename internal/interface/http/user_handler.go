package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/internal/application"
	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/internal/interface/middleware"
	"github.com/oksasatya/user-auth-service/pkg/response"
)

type UserHandler struct {
	Svc    *application.ProfileService
	Logger logrus.FieldLogger
}

func NewUserHandler(svc *application.ProfileService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name         *string `json:"name" binding:"omitempty,notblank,max=100"`
	MobileNumber *string `json:"mobileNumber" binding:"omitempty,phone"`
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context, id middleware.Identity) {
	u, err := h.Svc.GetProfile(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context, id middleware.Identity) {
	var req updateProfileRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), id.UserID, entity.ProfileUpdate{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}
