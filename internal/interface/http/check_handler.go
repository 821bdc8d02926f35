package handlers

import "github.com/gin-gonic/gin"

// CheckHandler serves the availability and token checks used by the forms.
type CheckHandler struct {
	auth *AuthHandler
}

func NewCheckHandler(auth *AuthHandler) *CheckHandler {
	return &CheckHandler{auth: auth}
}

// UsernameOrEmail backs both /check/username and /check/email.
func (h *CheckHandler) UsernameOrEmail() gin.HandlerFunc {
	return handle(h.auth, h.auth.Svc.CheckUsernameOrEmail)
}

func (h *CheckHandler) Token() gin.HandlerFunc {
	return handle(h.auth, h.auth.Svc.CheckToken)
}
