package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/internal/application"
	"github.com/oksasatya/user-auth-service/internal/domain/entity"
	"github.com/oksasatya/user-auth-service/pkg/response"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Email        string  `json:"email" binding:"required,email,max=254"`
	Password     string  `json:"password" binding:"required,pwd,max=128"`
	Name         *string `json:"name" binding:"omitempty,notblank,max=100"`
	MobileNumber *string `json:"mobileNumber" binding:"omitempty,phone"`
}

// loginRequest has no binding rules; malformed credentials fail as a 401.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgetPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	token, _, err := h.Svc.Signup(c.Request.Context(), entity.Signup{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Token(c, http.StatusCreated, token)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, _, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Token(c, http.StatusOK, token)
}

// ForgetPassword POST /api/auth/forget-password
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ForgetPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Reset token generated successfully")
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Password has been reset")
}
