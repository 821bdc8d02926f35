package router

import "github.com/gin-gonic/gin"

// Module is a group of routes mounted under the API base path.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
