package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-auth-service/internal/interface/http"
)

// SystemModule serves the index and health endpoints at the root.
type SystemModule struct {
	Handler *handlers.SystemHandler
}

func NewSystemModule(h *handlers.SystemHandler) *SystemModule {
	return &SystemModule{Handler: h}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Index)
	rg.GET("/healthz", m.Handler.Health)
}
