package router

import "github.com/gin-gonic/gin"

// Module is a feature module that registers its routes on a RouterGroup.
// Modules added with Registry.Add receive the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
