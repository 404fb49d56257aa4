package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-auth-service/internal/container"
	handlers "github.com/oksasatya/user-auth-service/internal/interface/http"
	"github.com/oksasatya/user-auth-service/internal/interface/middleware"
	"github.com/oksasatya/user-auth-service/internal/router/modules"
	"github.com/oksasatya/user-auth-service/pkg/response"
	"github.com/oksasatya/user-auth-service/pkg/validation"
)

const Version = "1.0.0"

// NewEngine builds the Gin engine with global middleware and every module
// registered from the container.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.Recovery(c.Logger),
	)
	if c.Config.HTTPLogEnabled {
		r.Use(middleware.AccessLog(c.Logger))
	}
	r.Use(cors.New(corsConfig(c)))
	r.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))

	r.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "Not found")
	})

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

func corsConfig(c *container.Container) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if c.Config.AllowAllOrigins() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = c.Config.CORSOrigins()
		cfg.AllowCredentials = true
	}
	return cfg
}

// InitModules builds the handlers and registers every module with the registry.
// This function should be called once during application startup.
func InitModules(r *Registry, c *container.Container) {
	authSvc := c.AuthService()

	authHandler := handlers.NewAuthHandler(authSvc, c.Logger)
	userHandler := handlers.NewUserHandler(c.ProfileService(), c.Logger)
	systemHandler := handlers.NewSystemHandler(c.Config.AppName, Version, c.Repo, c.Logger)

	r.AddRoot(modules.NewSystemModule(systemHandler))
	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewProfileModule(userHandler, authSvc, c.Logger))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
