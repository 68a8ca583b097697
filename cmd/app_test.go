package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KasumiMercury/primind-task-reminder/internal/config"
	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Settings: config.SettingsConfig{
			CheckInterval:         5 * time.Minute,
			NotifyOverdue:         true,
			NotifyUrgent:          true,
			NotifyCurrent:         false,
			MaxWindowsPerCategory: 5,
			MaxTotalWindows:       10,
		},
		Roles: config.RolesConfig{IncludeAssignee: true, IncludeAuditor: true},
		Tracker: config.TrackerConfig{
			RenotifyOverdue: time.Minute,
			PruneEvery:      10,
			PruneMaxAge:     24 * time.Hour,
		},
	}

	settings := settingsFromConfig(cfg)

	assert.False(t, settings.Notifies(domain.CategoryCurrent))
	assert.True(t, settings.Notifies(domain.CategoryOverdue))
	assert.Equal(t, 5, settings.Limits.MaxPerCategory)
	assert.Equal(t, 10, settings.Limits.MaxTotal)
	assert.Equal(t, time.Minute, settings.Intervals.For(domain.CategoryOverdue))
	assert.Equal(t, 5*time.Minute, settings.Intervals.For(domain.CategoryUrgent))
	assert.Equal(t, []domain.Role{domain.RoleAssignee, domain.RoleAuditor}, settings.Roles)
	assert.NoError(t, settings.Validate())
}

func TestSettingsFromConfigFilterDisablesRoleFilter(t *testing.T) {
	cfg := &config.Config{
		Planfix:  config.PlanfixConfig{FilterID: "42"},
		Settings: config.SettingsConfig{CheckInterval: time.Minute},
		Roles:    config.RolesConfig{IncludeAssignee: true},
	}

	assert.Empty(t, settingsFromConfig(cfg).Roles)
}
