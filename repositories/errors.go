// File: /repositories/errors.go
package repositories

import "errors"

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("not authorized for this trip")
	ErrInvalidInput = errors.New("invalid input")
)
