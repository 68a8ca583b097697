package domain

import "errors"

var (
	ErrSourceUnavailable  = errors.New("task source unavailable")
	ErrInvalidTask        = errors.New("invalid task record")
	ErrTaskNotTracked     = errors.New("task not tracked")
	ErrUnknownAction      = errors.New("unknown notification action")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrCycleInProgress    = errors.New("poll cycle already in progress")
)
