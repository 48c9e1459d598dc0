// Package services defines the business logic for contacts.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
// Validation failures are reported as *domain.ValidationError.
package services

import "errors"

var (
	// ErrContactNotFound indicates that the referenced contact does not exist.
	ErrContactNotFound = errors.New("contact not found")

	// ErrStoreUnavailable wraps connection or query failures of the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
