package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrPollNotFound        = fmt.Errorf("poll %w", ErrNotFound)
	ErrOptionNotFound      = fmt.Errorf("option %w", ErrNotFound)
	ErrVoteNotFound        = fmt.Errorf("vote %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientOptions = errors.New("at least two options are required")
	ErrOptionMismatch      = errors.New("option does not belong to this poll")
	ErrForbidden           = errors.New("forbidden")

	ErrDuplicateUsername  = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrUnauthorized       = errors.New("unauthorized")
)
