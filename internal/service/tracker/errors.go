package tracker

import "errors"

var ErrInvalidInterval = errors.New("re-notify interval must be positive")
