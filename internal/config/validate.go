package config

import (
	"errors"
	"fmt"
	"strings"
)

var tokenPlaceholders = []string{
	"ВАШ_API_ТОКЕН",
	"YOUR_API_TOKEN",
	"YOUR_API_TOKEN_HERE",
}

// ValidateForRun checks everything needed to poll Planfix.
func ValidateForRun(cfg *Config) error {
	return errors.Join(validatePlanfix(cfg.Planfix), ValidateSettings(cfg))
}

// ValidateSettings checks the values that can be reloaded at runtime.
func ValidateSettings(cfg *Config) error {
	var errs []error

	if cfg.Settings.CheckInterval <= 0 {
		errs = append(errs, ErrInvalidCheckInterval)
	}
	if cfg.Settings.MaxWindowsPerCategory <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_windows_per_category=%d", ErrInvalidWindowLimit, cfg.Settings.MaxWindowsPerCategory))
	}
	if cfg.Settings.MaxTotalWindows <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_total_windows=%d", ErrInvalidWindowLimit, cfg.Settings.MaxTotalWindows))
	}
	if !cfg.Roles.IncludeAssignee && !cfg.Roles.IncludeAssigner && !cfg.Roles.IncludeAuditor && cfg.Planfix.FilterID == "" {
		errs = append(errs, ErrNoRoleSelected)
	}
	if cfg.Pause.ResumeHour < 0 || cfg.Pause.ResumeHour > 23 {
		errs = append(errs, ErrInvalidResumeHour)
	}

	return errors.Join(errs...)
}

func validatePlanfix(c PlanfixConfig) error {
	var errs []error

	switch {
	case c.APIToken == "":
		errs = append(errs, ErrAPITokenMissing)
	case isPlaceholder(c.APIToken):
		errs = append(errs, ErrAPITokenPlaceholder)
	}

	switch {
	case c.AccountURL == "":
		errs = append(errs, ErrAccountURLMissing)
	case !strings.HasSuffix(c.AccountURL, "/rest"):
		errs = append(errs, fmt.Errorf("%w: %s", ErrAccountURLInvalid, c.AccountURL))
	}

	return errors.Join(errs...)
}

func isPlaceholder(token string) bool {
	for _, p := range tokenPlaceholders {
		if strings.EqualFold(token, p) {
			return true
		}
	}
	return false
}
