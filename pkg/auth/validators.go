package auth

// LoginPayload represents the token request body.
type LoginPayload struct {
	Username string `json:"username" mod:"trim" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// RefreshPayload represents the token refresh request body.
type RefreshPayload struct {
	Refresh string `json:"refresh" mod:"trim" validate:"required"`
}

// TokenResponse is returned on login. Avatar is an absolute URL.
type TokenResponse struct {
	Access    string  `json:"access"`
	Refresh   string  `json:"refresh"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar"`
}

// RefreshResponse is returned when an access token is refreshed.
type RefreshResponse struct {
	Access string `json:"access"`
}
