package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type signUpFields struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
}

func TestFields_CollectsAll(t *testing.T) {
	got := Fields(signUpFields{}, FieldLabels{"username": "Username", "email": "Email"})
	assert.Equal(t, map[string]string{
		"username": "Username is required",
		"email":    "Email is required",
	}, got)
}

func TestFields_Valid(t *testing.T) {
	got := Fields(signUpFields{Username: "foo", Email: "foo@bar.com"}, nil)
	assert.Empty(t, got)
}

func TestFields_DefaultsLabelToField(t *testing.T) {
	got := Fields(signUpFields{Username: "foo"}, nil)
	assert.Equal(t, "email is required", got["email"])
}

func TestToDetails(t *testing.T) {
	assert.Nil(t, ToDetails(nil))

	err := json.Unmarshal([]byte("{"), &struct{}{})
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("x")))
}
