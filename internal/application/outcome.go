package application

import (
	"encoding/json"
	"net/http"

	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
)

// Kind classifies an outcome for callers that switch on failure category
// rather than HTTP status.
type Kind int

const (
	KindOK Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Message is either a single human string or a field->message map.
// It serializes to a JSON string or object respectively.
type Message struct {
	Text   string
	Fields map[string]string
}

func Text(s string) Message { return Message{Text: s} }

func FieldMessages(m map[string]string) Message { return Message{Fields: m} }

func (m Message) IsZero() bool { return m.Text == "" && len(m.Fields) == 0 }

func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Fields) > 0 {
		return json.Marshal(m.Fields)
	}
	return json.Marshal(m.Text)
}

func (m *Message) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '{' {
		m.Text = ""
		return json.Unmarshal(b, &m.Fields)
	}
	m.Fields = nil
	return json.Unmarshal(b, &m.Text)
}

// Outcome is the part every lifecycle result shares. Status is the HTTP
// status the API surface responds with and is not part of the body.
type Outcome struct {
	Success bool    `json:"success"`
	Status  int     `json:"-"`
	Kind    Kind    `json:"-"`
	Message Message `json:"message,omitzero"`
}

// Result gives handlers uniform access to the shared part.
type Result interface {
	Base() Outcome
}

func (o Outcome) Base() Outcome { return o }

func ok() Outcome {
	return Outcome{Success: true, Status: http.StatusOK, Kind: KindOK}
}

func okMsg(msg string) Outcome {
	o := ok()
	o.Message = Text(msg)
	return o
}

func fail(status int, kind Kind, msg string) Outcome {
	return Outcome{Status: status, Kind: kind, Message: Text(msg)}
}

func invalid(msg string) Outcome { return fail(http.StatusBadRequest, KindValidation, msg) }

func internal(msg string) Outcome { return fail(http.StatusInternalServerError, KindInternal, msg) }

func flag(b bool) *bool { return &b }

// SignUpOutcome: Activate is set when the account exists but the activation
// email could not be sent.
type SignUpOutcome struct {
	Outcome
	Activate bool `json:"activate,omitempty"`
}

// ActivateOutcome echoes the token payload on success and on the
// already-active conflict.
type ActivateOutcome struct {
	Outcome
	ID      string `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Expired *bool  `json:"expired,omitempty"`
}

// ResendOutcome carries the address the new link went to, or Active when
// the account needs no activation.
type ResendOutcome struct {
	Outcome
	Email  string `json:"email,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// LoginOutcome carries the session token on success, the attempt count on
// a rejected password or throttle, and Activate for pending accounts.
type LoginOutcome struct {
	Outcome
	Token    string `json:"token,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
	Activate bool   `json:"activate,omitempty"`
}

type ChangePasswordOutcome struct {
	Outcome
	Activate bool `json:"activate,omitempty"`
}

type RecoverSendOutcome struct {
	Outcome
}

type RecoverResetOutcome struct {
	Outcome
	Expired *bool `json:"expired,omitempty"`
}

type CheckOutcome struct {
	Outcome
}

type TokenCheckOutcome struct {
	Outcome
	Data    *helpers.ActionPayload `json:"data,omitempty"`
	Expired *bool                  `json:"expired,omitempty"`
}
