package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("an account with that email already exists")

	// ErrResetTokenInvalid covers every token-validation failure: a token
	// that never existed, a wrong value and an expired one all map to the
	// same error so callers cannot tell the cases apart.
	ErrResetTokenInvalid = errors.New("password reset is invalid or has expired")

	ErrStoreNotFound   = errors.New("store not found")
	ErrNotStoreOwner   = errors.New("you must own a store in order to edit it")
	ErrNotAnImage      = errors.New("that filetype isn't allowed")
	ErrLoginRequired   = errors.New("you must be logged in to do that")
	ErrPasswordsDiffer = errors.New("passwords do not match")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
