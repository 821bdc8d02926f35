package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader echoes the id set by the request id middleware.
const RequestIDHeader = "X-Request-ID"

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func setRequestID(ctx *gin.Context) {
	if id := ctx.GetString("request_id"); id != "" {
		ctx.Header(RequestIDHeader, id)
	}
}

// Success writes the envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	setRequestID(ctx)
	ctx.JSON(status, resp)
	return resp
}

// Error writes the failure envelope and returns it.
func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
	setRequestID(ctx)
	ctx.JSON(status, resp)
	return resp
}

// Outcome writes a lifecycle outcome as the whole body. The HTTP status is
// carried by the outcome, not the body; zero means 200.
func Outcome(ctx *gin.Context, status int, body any) {
	if status == 0 {
		status = http.StatusOK
	}
	setRequestID(ctx)
	ctx.JSON(status, body)
}
