package users

// MinPasswordLength mirrors the min rule on RegisterPayload.Password.
const MinPasswordLength = 8

// RegisterPayload represents the request body for registering a user.
type RegisterPayload struct {
	Username  string  `json:"username" mod:"trim" validate:"required,max=150"`
	FirstName string  `json:"first_name" mod:"trim" validate:"max=150"`
	LastName  string  `json:"last_name" mod:"trim" validate:"max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
}

// UserResponse is the public view of a user. The avatar is an absolute URL.
type UserResponse struct {
	ID        int              `json:"id"`
	Username  string           `json:"username"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Email     string           `json:"email"`
	Profile   *ProfileResponse `json:"profile"`
}

type ProfileResponse struct {
	Avatar *string `json:"avatar"`
}
