package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-auth-lifecycle/internal/application"
	"github.com/oksasatya/go-auth-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-auth-lifecycle/pkg/response"
	"github.com/oksasatya/go-auth-lifecycle/pkg/validation"
)

// Lifecycle is the set of account operations the API exposes.
type Lifecycle interface {
	SignUp(ctx context.Context, req app.SignUpRequest) app.SignUpOutcome
	Activate(ctx context.Context, req app.TokenRequest) app.ActivateOutcome
	ResendActivation(ctx context.Context, req app.ResendRequest) app.ResendOutcome
	Login(ctx context.Context, req app.LoginRequest) app.LoginOutcome
	ChangePassword(ctx context.Context, req app.ChangePasswordRequest) app.ChangePasswordOutcome
	RecoverSend(ctx context.Context, req app.RecoverSendRequest) app.RecoverSendOutcome
	RecoverReset(ctx context.Context, req app.RecoverResetRequest) app.RecoverResetOutcome
	CheckUsernameOrEmail(ctx context.Context, req app.CheckRequest) app.CheckOutcome
	CheckToken(ctx context.Context, req app.TokenRequest) app.TokenCheckOutcome
}

type AuthHandler struct {
	Svc    Lifecycle
	Logger *logrus.Logger
}

func NewAuthHandler(svc Lifecycle, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// requestContext carries caller details down to the audit trail.
func requestContext(c *gin.Context) context.Context {
	return app.WithRequestMeta(c.Request.Context(), app.RequestMeta{
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("request_id"),
	})
}

// bindBody decodes the JSON body into dst. An empty body is a 500 with
// "No data sent"; undecodable JSON is a 400.
func (h *AuthHandler) bindBody(c *gin.Context, dst any) bool {
	body, err := c.GetRawData()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		response.Outcome(c, http.StatusInternalServerError, gin.H{"success": false, "message": "No data sent"})
		return false
	}
	if err := binding.JSON.BindBody(body, dst); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("path", c.FullPath()).Debug("bind failed")
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// handle binds Req, runs op and writes its outcome.
func handle[Req any, Out app.Result](h *AuthHandler, op func(context.Context, Req) Out) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if !h.bindBody(c, &req) {
			return
		}
		out := op(requestContext(c), req)
		response.Outcome(c, out.Base().Status, out)
	}
}

func (h *AuthHandler) SignUp() gin.HandlerFunc { return handle(h, h.Svc.SignUp) }
func (h *AuthHandler) Activate() gin.HandlerFunc { return handle(h, h.Svc.Activate) }
func (h *AuthHandler) ResendActivation() gin.HandlerFunc { return handle(h, h.Svc.ResendActivation) }
func (h *AuthHandler) Login() gin.HandlerFunc { return handle(h, h.Svc.Login) }
func (h *AuthHandler) ChangePassword() gin.HandlerFunc { return handle(h, h.Svc.ChangePassword) }
func (h *AuthHandler) RecoverSend() gin.HandlerFunc { return handle(h, h.Svc.RecoverSend) }
func (h *AuthHandler) RecoverReset() gin.HandlerFunc { return handle(h, h.Svc.RecoverReset) }
