package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
)

const (
	DefaultMaxAttempts         = 5
	DefaultThrottleWindow      = 5 * time.Second
	DefaultChangePasswordDelay = 2 * time.Second
)

// Operation names used for logging, metrics and audit.
const (
	OpSignUp          = "signup"
	OpActivate        = "activate"
	OpResend          = "activate_resend"
	OpLogin           = "login"
	OpChangePassword  = "change_password"
	OpRecoverSend     = "recover_send"
	OpRecoverReset    = "recover_reset"
	OpCheckIdentifier = "check_username_or_email"
	OpCheckToken      = "check_token"
)

// Service is the account lifecycle engine. Every operation returns a typed
// outcome; store, token and mail failures are logged and reported as 500s.
type Service struct {
	store    repo.UserRepository
	hasher   Hasher
	tokens   Tokens
	notifier Notifier
	audit    AuditSink
	log      *logrus.Logger

	now   func() time.Time
	sleep func(time.Duration)

	maxAttempts    int
	throttleWindow time.Duration
	changeDelay    time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithSleep replaces the pause used before password changes.
func WithSleep(sleep func(time.Duration)) Option { return func(s *Service) { s.sleep = sleep } }

func WithAuditSink(a AuditSink) Option { return func(s *Service) { s.audit = a } }

// WithThrottle sets how many failed attempts are tolerated and how long a
// caller must wait after exceeding them.
func WithThrottle(maxAttempts int, window time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if window > 0 {
			s.throttleWindow = window
		}
	}
}

func WithChangePasswordDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.changeDelay = d
		}
	}
}

func NewService(store repo.UserRepository, hasher Hasher, tokens Tokens, notifier Notifier, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store:          store,
		hasher:         hasher,
		tokens:         tokens,
		notifier:       notifier,
		log:            log,
		now:            time.Now,
		sleep:          time.Sleep,
		maxAttempts:    DefaultMaxAttempts,
		throttleWindow: DefaultThrottleWindow,
		changeDelay:    DefaultChangePasswordDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	return s
}

func (s *Service) logError(op string, err error, fields logrus.Fields) {
	s.log.WithError(err).WithFields(fields).WithField("op", op).Error("lifecycle operation failed")
}

// finish counts and audits a completed operation.
func (s *Service) finish(ctx context.Context, op, identifier, userID string, o Outcome) {
	countOutcome(op, o.Status)
	s.log.WithFields(logrus.Fields{
		"op":      op,
		"status":  o.Status,
		"kind":    o.Kind.String(),
		"success": o.Success,
	}).Debug("lifecycle outcome")
	if s.audit == nil {
		return
	}
	meta := RequestMetaFrom(ctx)
	s.audit.Record(ctx, AuditEvent{
		Action:     op,
		UserID:     userID,
		Identifier: identifier,
		Success:    o.Success,
		Status:     o.Status,
		Kind:       o.Kind.String(),
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
		At:         s.now().UTC(),
	})
}
