package services

import "errors"

// Sentinel errors shared by every service. Handlers translate them into the
// HTTP taxonomy: 400 validation, 401 bad credentials, 403 role denial,
// 404 absence or tenant mismatch, 409 duplicates.
//
// A tenant mismatch is always reported as ErrNotFound, never ErrForbidden,
// so responses do not confirm that an entity exists in another company.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
