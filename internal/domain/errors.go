package domain

import "errors"

// Error kinds shared by every layer. Package-level sentinels wrap one of these,
// so callers can classify any error with errors.Is or KindOf.
var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConfiguration          = errors.New("configuration error")
)

// Kind is the stable, client-visible classification of an error.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindUnauthorized           Kind = "unauthorized"
	KindConflict               Kind = "conflict"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindConfiguration          Kind = "configuration"
	KindInternal               Kind = "internal"
)

// KindOf classifies err. Anything not wrapping a known kind is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidStateTransition):
		return KindInvalidStateTransition
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindInternal
	}
}
