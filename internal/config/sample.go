package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleConfig = `# Task reminder configuration

[planfix]
# REST endpoint of the account, must end with /rest
account_url = "https://your-account.planfix.com/rest"

# API token from Planfix settings
api_token = "YOUR_API_TOKEN_HERE"

# Saved filter id. When set, roles below are ignored
filter_id = ""

# Planfix user id
user_id = "1"

[settings]
# Poll interval in seconds
check_interval = 300

# Per-category notification toggles
notify_current = true
notify_urgent = true
notify_overdue = true

# Notification caps per cycle
max_windows_per_category = 5
max_total_windows = 10

# Days after today that still count as urgent
lookahead_days = 1

debug_mode = false

[roles]
include_assignee = true
include_assigner = true
include_auditor = true

[tracker]
# Minimum time before a shown or dismissed notification reappears.
# "0s" uses the check interval.
renotify_overdue = "5m"
renotify_urgent = "15m"
renotify_current = "30m"

# Drop stale tracker entries every N cycles
prune_every = 10
prune_max_age = "24h"

[pause]
# Hour of day at which "until tomorrow" ends
resume_hour = 9

[server]
addr = "127.0.0.1:8765"
`

// WriteSample writes a commented sample config to path. It refuses to
// overwrite an existing file unless force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}

	return nil
}
