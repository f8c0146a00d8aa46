package service

import "errors"

// Shared error kinds surfaced to handlers. Authorization failures are
// authz.ErrForbidden and are never caught or downgraded on the way up.
var (
	// ErrNotFound covers any referenced user/category/topic/comment id that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNothingChanged signals an edit whose payload is identical to the
	// stored state. It is a soft notice, not a failure: no write happens.
	ErrNothingChanged = errors.New("nothing changed")

	// ErrValidation wraps rejected input (empty titles, malformed emails).
	ErrValidation = errors.New("validation failed")

	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrCategoryTitleTaken    = errors.New("category title already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)
