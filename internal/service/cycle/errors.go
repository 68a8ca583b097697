package cycle

import "errors"

var (
	ErrActionNotOffered = errors.New("action not offered for task category")
	ErrInvalidSettings  = errors.New("invalid cycle settings")
)
