package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-auth-lifecycle/internal/interface/http"
)

// AuthModule exposes the account lifecycle endpoints.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limit   gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, limit gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Limit: limit}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/", m.Limit)
	g.POST("/signup", m.Handler.SignUp())
	g.POST("/activate", m.Handler.Activate())
	g.POST("/activate/resend", m.Handler.ResendActivation())
	g.POST("/login", m.Handler.Login())
	g.POST("/change/password", m.Handler.ChangePassword())
	g.POST("/recover/send", m.Handler.RecoverSend())
	g.POST("/recover", m.Handler.RecoverReset())
}
