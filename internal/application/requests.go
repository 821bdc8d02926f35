package application

// Request payloads as they arrive on the wire. Field names follow the
// public API, which is not uniform across endpoints.

type SignUpRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type ResendRequest struct {
	NameOrEmail string `json:"nameoremail"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

type RecoverSendRequest struct {
	NameOrEmail string `json:"nameOrEmail"`
}

type RecoverResetRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

type CheckRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
}
