package router

import (
	"github.com/oksasatya/go-auth-lifecycle/internal/container"
	handlers "github.com/oksasatya/go-auth-lifecycle/internal/interface/http"
	"github.com/oksasatya/go-auth-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-auth-lifecycle/internal/router/modules"
)

// InitModules builds handlers from the container and registers every module.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	limiter := middleware.Limit{}
	if cfg.RateLimitEnabled {
		limiter = middleware.Limit{Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	}
	allow := middleware.AllowIf(cfg.RateLimitBypassPrivate, middleware.AllowPrivateIP())
	rl := middleware.RateLimit(c.Redis, c.Logger, limiter, middleware.KeyByIPAndPath(), allow)

	auth := handlers.NewAuthHandler(c.Lifecycle, c.Logger)

	r.Add(modules.NewAuthModule(auth, rl))
	r.Add(modules.NewCheckModule(handlers.NewCheckHandler(auth), rl))
	r.Add(modules.NewSiteModule(handlers.NewSiteHandler(cfg.SiteTitle, cfg.LoginURL)))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rl))
	}
}
