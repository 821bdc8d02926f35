package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
)

// Hasher hashes and compares passwords. Compare returns false, nil on a
// mismatch and an error only when the comparison itself failed.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) (bool, error)
}

// Tokens issues and verifies identity tokens. VerifyAction fails with
// helpers.ErrTokenExpired or helpers.ErrTokenInvalid.
type Tokens interface {
	IssueAction(p helpers.ActionPayload) (string, error)
	IssueSession(p helpers.SessionPayload) (string, error)
	VerifyAction(token string) (*helpers.ActionPayload, error)
}

// Notifier delivers activation and recovery links.
type Notifier interface {
	SendActivation(ctx context.Context, username, email, token string) error
	SendRecovery(ctx context.Context, username, email, token string) error
}

// AuditEvent is one lifecycle operation as recorded by an AuditSink.
type AuditEvent struct {
	Action     string    `json:"action"`
	UserID     string    `json:"user_id,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Success    bool      `json:"success"`
	Status     int       `json:"status"`
	Kind       string    `json:"kind"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	At         time.Time `json:"at"`
}

// AuditSink records lifecycle events. Implementations must not block the
// caller for long and report failures through their own logging.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent)
}

type requestMetaKey struct{}

// RequestMeta describes the caller of an operation for audit purposes.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the caller details attached by WithRequestMeta.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
