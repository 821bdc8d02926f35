package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid account state transition")

// AccountState is the engine-level view of an account. The store only keeps
// the active flag; RecoveryRequested is never persisted and only exists while
// a recovery token for an active account is outstanding. Recovery on a pending
// account leaves it pending.
type AccountState string

const (
	StateUnregistered      AccountState = "unregistered"
	StatePendingActivation AccountState = "pending_activation"
	StateActive            AccountState = "active"
	StateRecoveryRequested AccountState = "recovery_requested"
)

// AccountEvent is a lifecycle trigger.
type AccountEvent string

const (
	EventSignUp          AccountEvent = "sign_up"
	EventActivate        AccountEvent = "activate"
	EventResend          AccountEvent = "resend_activation"
	EventLogin           AccountEvent = "login"
	EventChangePassword  AccountEvent = "change_password"
	EventRequestRecovery AccountEvent = "request_recovery"
	EventResetPassword   AccountEvent = "reset_password"
)

var transitions = map[AccountState]map[AccountEvent]AccountState{
	StateUnregistered: {
		EventSignUp: StatePendingActivation,
	},
	StatePendingActivation: {
		EventActivate:        StateActive,
		EventResend:          StatePendingActivation,
		EventRequestRecovery: StatePendingActivation,
		EventResetPassword:   StatePendingActivation,
	},
	StateActive: {
		EventLogin:           StateActive,
		EventChangePassword:  StateActive,
		EventRequestRecovery: StateRecoveryRequested,
		EventResetPassword:   StateActive,
	},
	StateRecoveryRequested: {
		EventResetPassword:   StateActive,
		EventRequestRecovery: StateRecoveryRequested,
		EventLogin:           StateActive,
		EventChangePassword:  StateActive,
	},
}

// Next returns the state reached by applying ev to s.
func (s AccountState) Next(ev AccountEvent) (AccountState, error) {
	if to, ok := transitions[s][ev]; ok {
		return to, nil
	}
	return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, s)
}

// Allows reports whether ev is a legal event in state s.
func (s AccountState) Allows(ev AccountEvent) bool {
	_, ok := transitions[s][ev]
	return ok
}
