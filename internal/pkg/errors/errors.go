package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")

	// Auth conditions on the sync surface. A missing key and a bad
	// signature are distinct failures and map to different statuses.
	ErrInvalidSignature = errors.New("request signature verification failed")
	ErrNoSharedKey      = errors.New("shared key not configured")
	ErrRoleMismatch     = errors.New("node role does not allow this operation")

	ErrOracleUnavailable = errors.New("translation oracle unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
