// Package services holds the sentinel errors shared by the flowerlove
// services. Each service wraps them with context; callers match with
// errors.Is.
package services

import (
	"errors"

	"github.com/GooseXRL8/flowerlove/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPhotoLimit        = errors.New("photo limit reached")
	ErrDuplicateUsername = errors.New("username already taken")
)

// FromStore maps store errors onto the service sentinels.
func FromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrDuplicateUsername):
		return ErrDuplicateUsername
	default:
		return err
	}
}
