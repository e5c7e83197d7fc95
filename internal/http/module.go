package http

import (
	"admissions_portal_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes. The router
// never learns individual endpoints; it hands each module a
// RouterContext and lets it register itself.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the shared route groups and middleware a module
// needs when registering.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the public /api/v1 group; Protected sits under it behind
	// the auth middleware.
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Config    config.JWTConfig
	// AuthMiddleware is exposed for modules that mix public and
	// protected routes in one group.
	AuthMiddleware gin.HandlerFunc
}
