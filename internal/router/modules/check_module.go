package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-auth-lifecycle/internal/interface/http"
)

type CheckModule struct {
	Handler *handlers.CheckHandler
	Limit   gin.HandlerFunc
}

func NewCheckModule(h *handlers.CheckHandler, limit gin.HandlerFunc) *CheckModule {
	return &CheckModule{Handler: h, Limit: limit}
}

func (m *CheckModule) Name() string { return "check" }

func (m *CheckModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/check", m.Limit)
	g.POST("/username", m.Handler.UsernameOrEmail())
	g.POST("/email", m.Handler.UsernameOrEmail())
	g.POST("/token", m.Handler.Token())
}
