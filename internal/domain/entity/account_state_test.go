package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []AccountState{StateUnregistered, StatePendingActivation, StateActive, StateRecoveryRequested}

var allEvents = []AccountEvent{
	EventSignUp, EventActivate, EventResend, EventLogin,
	EventChangePassword, EventRequestRecovery, EventResetPassword,
}

func TestAccountState_Next(t *testing.T) {
	tests := []struct {
		from AccountState
		ev   AccountEvent
		want AccountState
	}{
		{StateUnregistered, EventSignUp, StatePendingActivation},
		{StatePendingActivation, EventActivate, StateActive},
		{StatePendingActivation, EventResend, StatePendingActivation},
		{StatePendingActivation, EventRequestRecovery, StatePendingActivation},
		{StateActive, EventLogin, StateActive},
		{StateActive, EventRequestRecovery, StateRecoveryRequested},
		{StateRecoveryRequested, EventResetPassword, StateActive},
		{StateRecoveryRequested, EventLogin, StateActive},
	}
	for _, tc := range tests {
		got, err := tc.from.Next(tc.ev)
		require.NoError(t, err, "%s + %s", tc.from, tc.ev)
		assert.Equal(t, tc.want, got, "%s + %s", tc.from, tc.ev)
	}
}

func TestAccountState_RejectedEvents(t *testing.T) {
	rejected := []struct {
		from AccountState
		ev   AccountEvent
	}{
		{StateUnregistered, EventLogin},
		{StateUnregistered, EventActivate},
		{StatePendingActivation, EventLogin},
		{StatePendingActivation, EventChangePassword},
		{StatePendingActivation, EventSignUp},
		{StateActive, EventActivate},
		{StateActive, EventResend},
	}
	for _, tc := range rejected {
		got, err := tc.from.Next(tc.ev)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, tc.from, got, "state must not change on rejected event")
		assert.False(t, tc.from.Allows(tc.ev))
	}
}

func TestAccountState_AllowsMatchesNext(t *testing.T) {
	for _, s := range allStates {
		for _, ev := range allEvents {
			_, err := s.Next(ev)
			assert.Equal(t, err == nil, s.Allows(ev), "%s + %s", s, ev)
		}
	}
}

func TestAccountState_ActiveNeverReturnsToPending(t *testing.T) {
	for _, ev := range allEvents {
		for _, from := range []AccountState{StateActive, StateRecoveryRequested} {
			if to, err := from.Next(ev); err == nil {
				assert.NotEqual(t, StatePendingActivation, to, "%s + %s", from, ev)
			}
		}
	}
}

func TestUser_State(t *testing.T) {
	var missing *User
	assert.Equal(t, StateUnregistered, missing.State())
	assert.Equal(t, StatePendingActivation, (&User{}).State())
	assert.Equal(t, StateActive, (&User{Active: true}).State())
}

func TestUser_SinceLastAttempt(t *testing.T) {
	now := time.Now()
	u := &User{}
	assert.Greater(t, u.SinceLastAttempt(now), 24*time.Hour)

	last := now.Add(-3 * time.Second)
	u.LastAttempt = &last
	assert.Equal(t, 3*time.Second, u.SinceLastAttempt(now))
}
