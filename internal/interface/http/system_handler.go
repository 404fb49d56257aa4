package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/pkg/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	AppName string
	Version string
	Store   Pinger
	Logger  logrus.FieldLogger
}

func NewSystemHandler(appName, version string, store Pinger, logger logrus.FieldLogger) *SystemHandler {
	return &SystemHandler{AppName: appName, Version: version, Store: store, Logger: logger}
}

type indexResponse struct {
	Message   string                       `json:"message"`
	Version   string                       `json:"version"`
	Endpoints map[string]map[string]string `json:"endpoints"`
}

// Index GET /
func (h *SystemHandler) Index(c *gin.Context) {
	response.Success(c, http.StatusOK, indexResponse{
		Message: h.AppName,
		Version: h.Version,
		Endpoints: map[string]map[string]string{
			"auth": {
				"signup":         "POST /api/auth/signup",
				"login":          "POST /api/auth/login",
				"forgetPassword": "POST /api/auth/forget-password",
				"resetPassword":  "POST /api/auth/reset-password",
			},
			"profile": {
				"get":    "GET /api/profile",
				"update": "PUT /api/profile",
			},
		},
	})
}

// Health GET /healthz
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.WithError(err).Warn("health check failed")
		response.Success(c, http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
