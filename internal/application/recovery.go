package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-auth-lifecycle/pkg/validation"
)

// RecoverSend mails a recovery link to an existing account.
func (s *Service) RecoverSend(ctx context.Context, req RecoverSendRequest) RecoverSendOutcome {
	out, userID := s.recoverSend(ctx, req)
	s.finish(ctx, OpRecoverSend, req.NameOrEmail, userID, out.Outcome)
	return out
}

func (s *Service) recoverSend(ctx context.Context, req RecoverSendRequest) (RecoverSendOutcome, string) {
	if req.NameOrEmail == "" {
		return RecoverSendOutcome{Outcome: invalid("Invalid name/email")}, ""
	}
	fields := logrus.Fields{"identifier": req.NameOrEmail}

	u, err := s.store.FindByUsernameOrEmail(ctx, req.NameOrEmail, req.NameOrEmail, false)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return RecoverSendOutcome{Outcome: fail(http.StatusNotFound, KindNotFound, "Account not found")}, ""
		}
		s.logError(OpRecoverSend, err, fields)
		return RecoverSendOutcome{Outcome: internal("Unexpected error")}, ""
	}

	token, err := s.tokens.IssueAction(helpers.ActionPayload{ID: u.ID, Email: u.Email})
	if err == nil {
		err = s.notifier.SendRecovery(ctx, u.Username, u.Email, token)
	}
	if err != nil {
		s.logError(OpRecoverSend, err, fields)
		return RecoverSendOutcome{Outcome: internal("Sending of recovery email failed")}, u.ID
	}
	state, _ := u.State().Next(entity.EventRequestRecovery)
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "state": state}).Info("recovery email sent")
	return RecoverSendOutcome{Outcome: okMsg("Recovery email sent")}, u.ID
}

// RecoverReset sets a new password for the account named by a recovery
// token. The password policy is only evaluated once the token is known to
// be good. The token stays usable until it expires.
func (s *Service) RecoverReset(ctx context.Context, req RecoverResetRequest) RecoverResetOutcome {
	out, userID := s.recoverReset(ctx, req)
	s.finish(ctx, OpRecoverReset, "", userID, out.Outcome)
	return out
}

func (s *Service) recoverReset(ctx context.Context, req RecoverResetRequest) (RecoverResetOutcome, string) {
	if req.Token == "" || req.Password == "" {
		return RecoverResetOutcome{Outcome: invalid("Invalid token/password")}, ""
	}
	data, err := s.tokens.VerifyAction(req.Token)
	if err != nil {
		s.log.WithError(err).WithField("op", OpRecoverReset).Info("recovery token rejected")
		o, expired := tokenFailure(err)
		o.Message = Text(msgInvalidToken)
		return RecoverResetOutcome{Outcome: o, Expired: expired}, ""
	}

	if p := validation.ValidatePassword(req.Password); !p.Valid {
		return RecoverResetOutcome{Outcome: invalid(p.Message)}, data.ID
	}

	fields := logrus.Fields{"user_id": data.ID}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logError(OpRecoverReset, err, fields)
		return RecoverResetOutcome{Outcome: internal("Unexpected error")}, data.ID
	}
	affected, err := s.store.UpdatePassword(ctx, data.ID, hash)
	if err != nil {
		s.logError(OpRecoverReset, err, fields)
		return RecoverResetOutcome{Outcome: internal("Unexpected error")}, data.ID
	}
	if affected != 1 {
		return RecoverResetOutcome{Outcome: fail(http.StatusNotFound, KindNotFound, "User not found")}, data.ID
	}
	s.log.WithFields(fields).Info("password reset")
	return RecoverResetOutcome{Outcome: ok()}, data.ID
}
