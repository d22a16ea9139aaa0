package models

import "time"

// User represents a registered account.
// PasswordHash is a bcrypt digest; never returned in JSON responses
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest is the registration form
type RegisterRequest struct {
	Email           string `form:"email" validate:"required,email,max=64"`
	Username        string `form:"username" validate:"required,max=32"`
	Password        string `form:"password" validate:"required,min=8,max=16"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest is the login form. Length rules are not applied here so that a
// badly sized password reads as invalid credentials, not as a form error.
type LoginRequest struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}
