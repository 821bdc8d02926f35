package entity

import (
	"time"
)

// User is the aggregate root for the account lifecycle.
// Password holds the bcrypt hash and is empty when the record was loaded
// without credentials.
type User struct {
	ID          string
	Username    string
	Email       string
	Password    string
	Active      bool
	Admin       bool
	Attempts    int
	LastAttempt *time.Time
	LastLogin   *time.Time
	CreatedAt   time.Time
}

// SinceLastAttempt reports how long ago the last failed login happened.
// A user without a recorded failure is treated as infinitely far in the past.
func (u *User) SinceLastAttempt(now time.Time) time.Duration {
	if u.LastAttempt == nil {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(*u.LastAttempt)
}

// State derives the lifecycle state from the persisted active flag.
func (u *User) State() AccountState {
	if u == nil {
		return StateUnregistered
	}
	if u.Active {
		return StateActive
	}
	return StatePendingActivation
}
