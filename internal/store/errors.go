package store

import "errors"

// ErrNotFound indicates a missing or unauthorized record lookup.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable wraps backend faults so callers can tell them apart from
// domain rejections. Reads may be retried by the user re-navigating; writes
// are never retried automatically.
var ErrUnavailable = errors.New("store unavailable")

// ErrAlreadyHandled is returned when a write targets a subscription request
// that is no longer pending.
var ErrAlreadyHandled = errors.New("request already handled")

// ErrMalformedRecord marks a record whose datetime could not be normalized.
var ErrMalformedRecord = errors.New("malformed record")

func unavailable(err error) error {
	return errors.Join(ErrUnavailable, err)
}
