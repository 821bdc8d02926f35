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

var signUpLabels = validation.FieldLabels{
	"username": "Username",
	"email":    "Email",
	"password": "Password",
}

const msgAlreadyRegistered = "Username/email already registered"

// SignUp creates an inactive account and mails its activation link.
// Every invalid field is reported at once.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) SignUpOutcome {
	out, userID := s.signUp(ctx, req)
	s.finish(ctx, OpSignUp, req.Username, userID, out.Outcome)
	return out
}

func (s *Service) signUp(ctx context.Context, req SignUpRequest) (SignUpOutcome, string) {
	errs := validation.Fields(req, signUpLabels)
	if p := validation.ValidatePassword(req.Password); !p.Valid {
		errs["password"] = p.Message
	}
	if len(errs) > 0 {
		o := fail(http.StatusBadRequest, KindValidation, "")
		o.Message = FieldMessages(errs)
		return SignUpOutcome{Outcome: o}, ""
	}

	fields := logrus.Fields{"username": req.Username, "email": req.Email}

	_, err := s.store.FindByUsernameOrEmail(ctx, req.Username, req.Email, false)
	switch {
	case err == nil:
		return SignUpOutcome{Outcome: fail(http.StatusConflict, KindConflict, msgAlreadyRegistered)}, ""
	case !errors.Is(err, repo.ErrUserNotFound):
		s.logError(OpSignUp, err, fields)
		return SignUpOutcome{Outcome: internal("User creation failed")}, ""
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logError(OpSignUp, err, fields)
		return SignUpOutcome{Outcome: internal("User creation failed")}, ""
	}

	id, err := s.store.Insert(ctx, req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			return SignUpOutcome{Outcome: fail(http.StatusConflict, KindConflict, msgAlreadyRegistered)}, ""
		}
		s.logError(OpSignUp, err, fields)
		return SignUpOutcome{Outcome: internal("User creation failed")}, ""
	}
	state, _ := entity.StateUnregistered.Next(entity.EventSignUp)
	s.log.WithFields(fields).WithField("user_id", id).WithField("state", state).Info("user created")

	if err := s.sendActivation(ctx, id, req.Username, req.Email); err != nil {
		s.logError(OpSignUp, err, fields)
		return SignUpOutcome{Outcome: internal("Sending of activation email failed"), Activate: true}, id
	}
	return SignUpOutcome{Outcome: ok()}, id
}

func (s *Service) sendActivation(ctx context.Context, id, username, email string) error {
	token, err := s.tokens.IssueAction(helpers.ActionPayload{ID: id, Email: email})
	if err != nil {
		return err
	}
	return s.notifier.SendActivation(ctx, username, email, token)
}
