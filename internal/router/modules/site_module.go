package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-auth-lifecycle/internal/interface/http"
)

type SiteModule struct {
	Handler *handlers.SiteHandler
}

func NewSiteModule(h *handlers.SiteHandler) *SiteModule { return &SiteModule{Handler: h} }

func (m *SiteModule) Name() string { return "site" }

func (m *SiteModule) Register(rg *gin.RouterGroup) {
	rg.GET("/site", m.Handler.Get)
}
