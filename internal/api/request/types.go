package request

// LoginRequest is the request body for opening a session
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreatePlayerRequest is the request body for registering a player
type CreatePlayerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePlayerRequest is the request body for a partial player update.
// Absent fields are left unchanged. Password needs CurrentPassword, the
// player's present password.
type UpdatePlayerRequest struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Password         *string `json:"password,omitempty"`
	CurrentPassword  *string `json:"current_password,omitempty"`
	PasswordAttempts *int    `json:"password_attempts,omitempty"`
	ResetPassword    *bool   `json:"reset_password,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}
