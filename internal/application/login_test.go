package application

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
)

func TestLogin_MissingFields(t *testing.T) {
	h := newHarness(t)

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo"})

	assert.Equal(t, http.StatusBadRequest, out.Status)
	assert.Equal(t, "Invalid username/email/password", out.Message.Text)
	assert.Zero(t, h.store.finds)
}

func TestLogin_UnknownUser(t *testing.T) {
	h := newHarness(t)

	out := h.svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "whatever"})

	assert.Equal(t, http.StatusBadRequest, out.Status)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, "Invalid username/email or password", out.Message.Text)
	assert.Zero(t, h.store.failures)
	assert.Zero(t, h.hasher.compares)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	id := h.activeUser()

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "wrong"})

	assert.False(t, out.Success)
	assert.Equal(t, http.StatusBadRequest, out.Status)
	assert.Equal(t, 1, h.store.failures)
	assert.Equal(t, 1, out.Attempts)
	assert.Empty(t, out.Token)

	u := h.store.user(id)
	assert.Equal(t, 1, u.Attempts)
	require.NotNil(t, u.LastAttempt)
	assert.Equal(t, h.clock.Now(), *u.LastAttempt)
}

func TestLogin_AttemptsReflectPersistedCount(t *testing.T) {
	h := newHarness(t)
	h.activeUser()

	for i := 1; i <= 3; i++ {
		out := h.svc.Login(context.Background(), LoginRequest{Username: "foo@bar.com", Password: "wrong"})
		assert.Equal(t, i, out.Attempts)
	}
}

func TestLogin_ThrottledSkipsComparison(t *testing.T) {
	h := newHarness(t)
	last := h.clock.Now().Add(-time.Second)
	h.store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right", Active: true, Attempts: 6, LastAttempt: &last})

	for _, pw := range []string{"right", "wrong"} {
		out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: pw})
		assert.Equal(t, http.StatusUnauthorized, out.Status)
		assert.Equal(t, 6, out.Attempts)
		assert.Equal(t, "Too many attempts, please wait 5 seconds before trying again", out.Message.Text)
	}
	assert.Zero(t, h.hasher.compares)
	assert.Zero(t, h.store.failures)
	assert.Zero(t, h.store.successes)
}

func TestLogin_ThrottleBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		attempts  int
		ago       time.Duration
		throttled bool
	}{
		{"at limit", 5, time.Second, false},
		{"over limit inside window", 6, 4999 * time.Millisecond, true},
		{"over limit window elapsed", 6, 5 * time.Second, false},
		{"far over limit long ago", 40, time.Hour, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			last := h.clock.Now().Add(-tc.ago)
			h.store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right", Active: true, Attempts: tc.attempts, LastAttempt: &last})

			out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "right"})
			if tc.throttled {
				assert.Equal(t, http.StatusUnauthorized, out.Status)
				assert.Zero(t, h.hasher.compares)
				return
			}
			assert.True(t, out.Success)
			assert.Equal(t, 1, h.hasher.compares)
		})
	}
}

func TestLogin_PendingAccount(t *testing.T) {
	h := newHarness(t)
	h.pendingUser()

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "right"})

	assert.Equal(t, http.StatusUnauthorized, out.Status)
	assert.True(t, out.Activate)
	assert.Equal(t, "Account not activated", out.Message.Text)
	assert.Zero(t, h.hasher.compares)
}

func TestLogin_Success(t *testing.T) {
	h := newHarness(t)
	last := h.clock.Now().Add(-time.Minute)
	id := h.store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right", Active: true, Admin: true, Attempts: 3, LastAttempt: &last})

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "right"})

	require.True(t, out.Success)
	require.NotEmpty(t, out.Token)
	session, err := h.tokens.VerifySession(out.Token)
	require.NoError(t, err)
	assert.Equal(t, id, session.ID)
	assert.Equal(t, "foo", session.Username)
	assert.True(t, session.Admin)
	assert.Equal(t, h.clock.Now().UnixMilli(), session.LastLogin)

	u := h.store.user(id)
	assert.Zero(t, u.Attempts)
	assert.Nil(t, u.LastAttempt)
	require.NotNil(t, u.LastLogin)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"token":"`+out.Token+`"}`, string(b))
}

func TestLogin_CompareErrorSkipsBookkeeping(t *testing.T) {
	h := newHarness(t)
	h.activeUser()
	h.hasher.compareErr = assert.AnError

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "right"})

	assert.Equal(t, http.StatusInternalServerError, out.Status)
	assert.Equal(t, "There was a problem logging in", out.Message.Text)
	assert.Zero(t, h.store.failures)
	assert.Zero(t, h.store.successes)
}

func TestLogin_FailureBookkeepingError(t *testing.T) {
	h := newHarness(t)
	h.activeUser()
	h.store.failureErr = errStore

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "wrong"})

	assert.Equal(t, http.StatusInternalServerError, out.Status)
}

func TestLogin_CustomThrottle(t *testing.T) {
	h := newHarness(t, WithThrottle(2, 10*time.Second))
	last := h.clock.Now().Add(-8 * time.Second)
	h.store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right", Active: true, Attempts: 3, LastAttempt: &last})

	out := h.svc.Login(context.Background(), LoginRequest{Username: "foo", Password: "right"})

	assert.Equal(t, http.StatusUnauthorized, out.Status)
	assert.Equal(t, "Too many attempts, please wait 10 seconds before trying again", out.Message.Text)
}

func TestChangePassword_Success(t *testing.T) {
	h := newHarness(t)
	id := h.activeUser()

	out := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "right", NewPassword: "new123"})

	require.True(t, out.Success)
	assert.Equal(t, 1, h.store.updates)
	assert.Equal(t, "hash:new123", h.store.user(id).Password)
	assert.Equal(t, []time.Duration{2 * time.Second}, h.slept)
}

func TestChangePassword_WaitsBeforeResolving(t *testing.T) {
	store := &memStore{}
	store.add(entity.User{Username: "foo", Email: "foo@bar.com", Password: "hash:right", Active: true})
	h := newHarness(t)
	svc := NewService(store, &fakeHasher{}, h.tokens, &fakeNotifier{}, nil)

	start := time.Now()
	out := svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "right", NewPassword: "new123"})
	elapsed := time.Since(start)

	require.True(t, out.Success)
	assert.GreaterOrEqual(t, elapsed, 2000*time.Millisecond)
}

func TestChangePassword_MissingFields(t *testing.T) {
	h := newHarness(t)

	out := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "right"})

	assert.Equal(t, http.StatusBadRequest, out.Status)
	assert.Empty(t, h.slept)
}

func TestChangePassword_PolicyCheckedBeforeStore(t *testing.T) {
	h := newHarness(t)
	h.activeUser()

	out := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "right", NewPassword: "new"})

	assert.Equal(t, http.StatusBadRequest, out.Status)
	assert.Equal(t, "Password must be > 5 characters", out.Message.Text)
	assert.Zero(t, h.store.finds)
	assert.Empty(t, h.slept)
}

func TestChangePassword_UnknownAndWrongLookAlike(t *testing.T) {
	h := newHarness(t)
	h.activeUser()

	unknown := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "nobody", Password: "right", NewPassword: "new123"})
	wrong := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "wrong", NewPassword: "new123"})

	assert.Equal(t, unknown, wrong)
	assert.Equal(t, http.StatusBadRequest, wrong.Status)
	assert.Equal(t, "Invalid username/email or password", wrong.Message.Text)
	assert.Len(t, h.slept, 2)
	assert.Zero(t, h.store.updates)
}

func TestChangePassword_PendingAccount(t *testing.T) {
	h := newHarness(t)
	h.pendingUser()

	out := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "right", NewPassword: "new123"})

	assert.Equal(t, http.StatusUnauthorized, out.Status)
	assert.True(t, out.Activate)
	assert.Len(t, h.slept, 1)
}

func TestChangePassword_UnexpectedRowCount(t *testing.T) {
	h := newHarness(t)
	h.activeUser()
	zero := int64(0)
	h.store.forceAffected = &zero

	out := h.svc.ChangePassword(context.Background(), ChangePasswordRequest{Username: "foo", Password: "right", NewPassword: "new123"})

	assert.Equal(t, http.StatusInternalServerError, out.Status)
	assert.Equal(t, "There was a problem changing the password", out.Message.Text)
}
