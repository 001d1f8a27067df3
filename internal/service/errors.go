package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUsernameTaken      = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("incorrect username/email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInactiveUser       = errors.New("inactive user")
	ErrTaskNotFound       = errors.New("task not found")
)
