package config

import "errors"

var (
	ErrInvalidRedisDB       = errors.New("REMINDER_REDIS_DB must be a non-negative integer")
	ErrInvalidRedisURL      = errors.New("REMINDER_REDIS_URL is not a valid redis URL")
	ErrInvalidCheckpointTTL = errors.New("REMINDER_REDIS_CHECKPOINT_TTL must be a positive duration")
	ErrAPITokenMissing      = errors.New("planfix.api_token is required")
	ErrAPITokenPlaceholder  = errors.New("planfix.api_token still holds the sample placeholder")
	ErrAccountURLMissing    = errors.New("planfix.account_url is required")
	ErrAccountURLInvalid    = errors.New("planfix.account_url must end with /rest")
	ErrInvalidCheckInterval = errors.New("settings.check_interval must be positive")
	ErrInvalidWindowLimit   = errors.New("window limits must be positive")
	ErrNoRoleSelected       = errors.New("at least one role must be included")
	ErrInvalidResumeHour    = errors.New("pause.resume_hour must be within 0-23")
	ErrConfigExists         = errors.New("config file already exists")
)
