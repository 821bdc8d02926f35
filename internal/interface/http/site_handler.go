package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-lifecycle/pkg/response"
)

type SiteInfo struct {
	Title    string `json:"title"`
	LoginURL string `json:"login_url"`
}

// SiteHandler exposes the page settings the single page UI renders with.
type SiteHandler struct {
	Info SiteInfo
}

func NewSiteHandler(title, loginURL string) *SiteHandler {
	return &SiteHandler{Info: SiteInfo{Title: title, LoginURL: loginURL}}
}

func (h *SiteHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Info, "ok", nil)
}
