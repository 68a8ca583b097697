package repository

import "errors"

var (
	ErrRedisConnection       = errors.New("redis connection error")
	ErrInvalidCheckpointData = errors.New("invalid checkpoint data")
)
