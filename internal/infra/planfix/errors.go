package planfix

import "errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected status code from planfix")
	ErrAPIFailure       = errors.New("planfix api returned failure")
	ErrInvalidFilterID  = errors.New("planfix filter id must be an integer")
)
