package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
)

// CheckUsernameOrEmail succeeds when the identifier is still free.
func (s *Service) CheckUsernameOrEmail(ctx context.Context, req CheckRequest) CheckOutcome {
	out := s.checkUsernameOrEmail(ctx, req)
	s.finish(ctx, OpCheckIdentifier, req.UsernameOrEmail, "", out.Outcome)
	return out
}

func (s *Service) checkUsernameOrEmail(ctx context.Context, req CheckRequest) CheckOutcome {
	if req.UsernameOrEmail == "" {
		return CheckOutcome{Outcome: invalid("Username or email address is required")}
	}
	_, err := s.store.FindByUsernameOrEmail(ctx, req.UsernameOrEmail, req.UsernameOrEmail, false)
	switch {
	case err == nil:
		return CheckOutcome{Outcome: fail(http.StatusConflict, KindConflict, "Username or email already registered")}
	case errors.Is(err, repo.ErrUserNotFound):
		return CheckOutcome{Outcome: ok()}
	default:
		s.logError(OpCheckIdentifier, err, logrus.Fields{"identifier": req.UsernameOrEmail})
		return CheckOutcome{Outcome: internal("Unexpected error")}
	}
}

// CheckToken verifies an activation or recovery token and returns its payload.
func (s *Service) CheckToken(ctx context.Context, req TokenRequest) TokenCheckOutcome {
	out := s.checkToken(req)
	var userID string
	if out.Data != nil {
		userID = out.Data.ID
	}
	s.finish(ctx, OpCheckToken, "", userID, out.Outcome)
	return out
}

func (s *Service) checkToken(req TokenRequest) TokenCheckOutcome {
	if req.Token == "" {
		return TokenCheckOutcome{Outcome: invalid("Token is required")}
	}
	data, err := s.tokens.VerifyAction(req.Token)
	if err != nil {
		o, expired := tokenFailure(err)
		o.Message = Text(msgInvalidToken)
		return TokenCheckOutcome{Outcome: o, Expired: expired}
	}
	return TokenCheckOutcome{Outcome: ok(), Data: data}
}
