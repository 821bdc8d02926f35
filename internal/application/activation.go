package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
)

const (
	msgInvalidToken = "Invalid token"
	msgTokenExpired = "Token expired"
)

// tokenFailure maps a verification error to its outcome: expired links are
// the caller's to renew (400), anything else is reported as 500.
func tokenFailure(err error) (Outcome, *bool) {
	if errors.Is(err, helpers.ErrTokenExpired) {
		return fail(http.StatusBadRequest, KindUnauthorized, msgTokenExpired), flag(true)
	}
	return fail(http.StatusInternalServerError, KindUnauthorized, msgInvalidToken), flag(false)
}

// Activate moves the account named by an activation token from pending to
// active. A second activation with the same token is a 409 that still
// echoes the token payload.
func (s *Service) Activate(ctx context.Context, req TokenRequest) ActivateOutcome {
	out := s.activate(ctx, req)
	s.finish(ctx, OpActivate, out.Email, out.ID, out.Outcome)
	return out
}

func (s *Service) activate(ctx context.Context, req TokenRequest) ActivateOutcome {
	if req.Token == "" {
		return ActivateOutcome{Outcome: invalid(msgInvalidToken)}
	}
	data, err := s.tokens.VerifyAction(req.Token)
	if err != nil {
		s.log.WithError(err).WithField("op", OpActivate).Info("activation token rejected")
		o, expired := tokenFailure(err)
		return ActivateOutcome{Outcome: o, Expired: expired}
	}

	affected, err := s.store.Activate(ctx, data.ID)
	if err != nil {
		s.logError(OpActivate, err, logrus.Fields{"user_id": data.ID})
		return ActivateOutcome{Outcome: internal("There was a problem activating the account")}
	}
	if affected == 1 {
		state, _ := entity.StatePendingActivation.Next(entity.EventActivate)
		s.log.WithFields(logrus.Fields{"user_id": data.ID, "state": state}).Info("account activated")
		return ActivateOutcome{Outcome: ok(), ID: data.ID, Email: data.Email}
	}
	return ActivateOutcome{
		Outcome: fail(http.StatusConflict, KindConflict, "Account already activated"),
		ID:      data.ID,
		Email:   data.Email,
	}
}

// ResendActivation mails a fresh activation link to a pending account.
// Earlier links stay valid until they expire.
func (s *Service) ResendActivation(ctx context.Context, req ResendRequest) ResendOutcome {
	out, userID := s.resendActivation(ctx, req)
	s.finish(ctx, OpResend, req.NameOrEmail, userID, out.Outcome)
	return out
}

func (s *Service) resendActivation(ctx context.Context, req ResendRequest) (ResendOutcome, string) {
	if req.NameOrEmail == "" {
		return ResendOutcome{Outcome: invalid("Invalid name or email")}, ""
	}
	fields := logrus.Fields{"identifier": req.NameOrEmail}

	u, err := s.store.FindByUsernameOrEmail(ctx, req.NameOrEmail, req.NameOrEmail, false)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return ResendOutcome{Outcome: fail(http.StatusConflict, KindNotFound, "Account not found")}, ""
		}
		s.logError(OpResend, err, fields)
		return ResendOutcome{Outcome: internal("Unexpected error")}, ""
	}

	if !u.State().Allows(entity.EventResend) {
		return ResendOutcome{
			Outcome: fail(http.StatusConflict, KindConflict, "Account already activated"),
			Active:  true,
		}, u.ID
	}

	if err := s.sendActivation(ctx, u.ID, u.Username, u.Email); err != nil {
		s.logError(OpResend, err, fields)
		return ResendOutcome{Outcome: internal("Sending of activation email failed")}, u.ID
	}
	return ResendOutcome{Outcome: okMsg("Activation email resent"), Email: u.Email}, u.ID
}
