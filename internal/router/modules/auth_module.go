package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-auth-service/internal/interface/http"
)

// AuthModule exposes the public credential endpoints under /auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", m.Handler.Signup)
		auth.POST("/login", m.Handler.Login)
		auth.POST("/forget-password", m.Handler.ForgetPassword)
		auth.POST("/reset-password", m.Handler.ResetPassword)
	}
}
