package pause

import "errors"

var (
	ErrInvalidDuration   = errors.New("pause duration must be positive and at most 7 days")
	ErrInvalidResumeHour = errors.New("resume hour must be within 0-23")
)
