package domain

import "errors"

// Sentinel errors for the user domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates the username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidUser indicates registration input violates domain constraints.
	ErrInvalidUser = errors.New("invalid user")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// Unknown email and wrong password both map here.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
