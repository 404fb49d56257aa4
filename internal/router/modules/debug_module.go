package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
)

// DebugModule publishes expvar counters, including the "auth" map.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}
