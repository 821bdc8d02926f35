package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-auth-lifecycle/pkg/validation"
)

const (
	msgMissingCredentials = "Invalid username/email/password"
	msgBadCredentials     = "Invalid username/email or password"
	msgNotActivated       = "Account not activated"
)

func (s *Service) throttleMessage() string {
	secs := int(math.Ceil(s.throttleWindow.Seconds()))
	return fmt.Sprintf("Too many attempts, please wait %d seconds before trying again", secs)
}

// throttled reports whether u has exhausted its attempts and the last
// failure is still inside the window.
func (s *Service) throttled(u *entity.User, now time.Time) bool {
	return u.Attempts > s.maxAttempts && u.SinceLastAttempt(now) < s.throttleWindow
}

// Login checks a password and returns a session token. Throttled callers are
// rejected before the password is compared.
func (s *Service) Login(ctx context.Context, req LoginRequest) LoginOutcome {
	out, userID := s.login(ctx, req)
	s.finish(ctx, OpLogin, req.Username, userID, out.Outcome)
	return out
}

func (s *Service) login(ctx context.Context, req LoginRequest) (LoginOutcome, string) {
	if req.Username == "" || req.Password == "" {
		return LoginOutcome{Outcome: invalid(msgMissingCredentials)}, ""
	}
	fields := logrus.Fields{"identifier": req.Username}
	problem := LoginOutcome{Outcome: internal("There was a problem logging in")}

	u, err := s.store.FindByUsernameOrEmail(ctx, req.Username, req.Username, true)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return LoginOutcome{
				Outcome:  fail(http.StatusBadRequest, KindUnauthorized, msgBadCredentials),
				Attempts: 1,
			}, ""
		}
		s.logError(OpLogin, err, fields)
		return problem, ""
	}

	now := s.now()
	if s.throttled(u, now) {
		return LoginOutcome{
			Outcome:  fail(http.StatusUnauthorized, KindUnauthorized, s.throttleMessage()),
			Attempts: u.Attempts,
		}, u.ID
	}
	if !u.State().Allows(entity.EventLogin) {
		return LoginOutcome{
			Outcome:  fail(http.StatusUnauthorized, KindUnauthorized, msgNotActivated),
			Activate: true,
		}, u.ID
	}

	match, err := s.hasher.Compare(u.Password, req.Password)
	if err != nil {
		s.logError(OpLogin, err, fields)
		return problem, u.ID
	}
	if !match {
		attempts, err := s.store.RecordLoginFailure(ctx, req.Username, now)
		if err != nil {
			s.logError(OpLogin, err, fields)
			return problem, u.ID
		}
		return LoginOutcome{
			Outcome:  fail(http.StatusBadRequest, KindUnauthorized, msgBadCredentials),
			Attempts: attempts,
		}, u.ID
	}

	if err := s.store.RecordLoginSuccess(ctx, req.Username, now); err != nil {
		s.logError(OpLogin, err, fields)
		return problem, u.ID
	}
	token, err := s.tokens.IssueSession(helpers.SessionPayload{
		Admin:     u.Admin,
		ID:        u.ID,
		Username:  u.Username,
		LastLogin: now.UnixMilli(),
	})
	if err != nil {
		s.logError(OpLogin, err, fields)
		return problem, u.ID
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "admin": u.Admin}).Info("user logged in")
	return LoginOutcome{Outcome: ok(), Token: token}, u.ID
}

// ChangePassword replaces the password of an active account after checking
// the current one. It always pauses before touching the store so response
// time does not reveal whether the account exists. The pause is not cut
// short by ctx.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) ChangePasswordOutcome {
	out, userID := s.changePassword(ctx, req)
	s.finish(ctx, OpChangePassword, req.Username, userID, out.Outcome)
	return out
}

func (s *Service) changePassword(ctx context.Context, req ChangePasswordRequest) (ChangePasswordOutcome, string) {
	if req.Username == "" || req.Password == "" || req.NewPassword == "" {
		return ChangePasswordOutcome{Outcome: invalid(msgMissingCredentials)}, ""
	}
	if p := validation.ValidatePassword(req.NewPassword); !p.Valid {
		return ChangePasswordOutcome{Outcome: invalid(p.Message)}, ""
	}

	if s.changeDelay > 0 {
		s.sleep(s.changeDelay)
	}

	fields := logrus.Fields{"identifier": req.Username}
	problem := ChangePasswordOutcome{Outcome: internal("There was a problem changing the password")}
	badCredentials := ChangePasswordOutcome{Outcome: fail(http.StatusBadRequest, KindUnauthorized, msgBadCredentials)}

	u, err := s.store.FindByUsernameOrEmail(ctx, req.Username, req.Username, true)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return badCredentials, ""
		}
		s.logError(OpChangePassword, err, fields)
		return problem, ""
	}
	if !u.State().Allows(entity.EventChangePassword) {
		return ChangePasswordOutcome{
			Outcome:  fail(http.StatusUnauthorized, KindUnauthorized, msgNotActivated),
			Activate: true,
		}, u.ID
	}

	match, err := s.hasher.Compare(u.Password, req.Password)
	if err != nil {
		s.logError(OpChangePassword, err, fields)
		return problem, u.ID
	}
	if !match {
		return badCredentials, u.ID
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		s.logError(OpChangePassword, err, fields)
		return problem, u.ID
	}
	affected, err := s.store.UpdatePassword(ctx, u.ID, hash)
	if err == nil && affected != 1 {
		err = fmt.Errorf("password update affected %d rows", affected)
	}
	if err != nil {
		s.logError(OpChangePassword, err, fields)
		return problem, u.ID
	}
	s.log.WithField("user_id", u.ID).Info("password changed")
	return ChangePasswordOutcome{Outcome: ok()}, u.ID
}
