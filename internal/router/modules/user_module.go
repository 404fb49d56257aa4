package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/user-auth-service/internal/interface/http"
	"github.com/oksasatya/user-auth-service/internal/interface/middleware"
)

// ProfileModule wires the profile handlers behind the bearer token gate.
// Protected: GET /api/profile, PUT /api/profile
type ProfileModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.Authenticator
	Logger  logrus.FieldLogger
}

func NewProfileModule(h *handlers.UserHandler, auth middleware.Authenticator, logger logrus.FieldLogger) *ProfileModule {
	return &ProfileModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	profile := rg.Group("/profile")
	profile.Use(middleware.Auth(m.Auth, m.Logger))
	{
		profile.GET("", middleware.WithIdentity(m.Handler.GetProfile))
		profile.PUT("", middleware.WithIdentity(m.Handler.UpdateProfile))
	}
}
