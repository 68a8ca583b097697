package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "REMINDER"
	appDirName = "task-reminder"

	defaultCheckIntervalSeconds  = 300
	defaultMaxWindowsPerCategory = 5
	defaultMaxTotalWindows       = 10
	defaultUserID                = "1"
	defaultServerAddr            = "127.0.0.1:8765"
	defaultPruneEvery            = 10
	defaultPruneMaxAge           = 24 * time.Hour
	defaultLookaheadDays         = 1
	defaultHTTPTimeout           = 30 * time.Second
)

type Config struct {
	Planfix  PlanfixConfig
	Settings SettingsConfig
	Roles    RolesConfig
	Tracker  TrackerConfig
	Pause    PauseConfig
	Server   ServerConfig
	LogLevel slog.Level
	Redis    *RedisConfig
}

type PlanfixConfig struct {
	AccountURL  string
	APIToken    string
	FilterID    string
	UserID      string
	HTTPTimeout time.Duration
}

// WebURL is the browser base URL of the account.
func (c PlanfixConfig) WebURL() string {
	return strings.TrimSuffix(strings.TrimRight(c.AccountURL, "/"), "/rest")
}

type SettingsConfig struct {
	CheckInterval         time.Duration
	NotifyCurrent         bool
	NotifyUrgent          bool
	NotifyOverdue         bool
	MaxWindowsPerCategory int
	MaxTotalWindows       int
	LookaheadDays         int
	DebugMode             bool
}

type RolesConfig struct {
	IncludeAssignee bool
	IncludeAssigner bool
	IncludeAuditor  bool
}

// TrackerConfig holds re-notify intervals. A zero interval falls back to
// the check interval.
type TrackerConfig struct {
	RenotifyOverdue time.Duration
	RenotifyUrgent  time.Duration
	RenotifyCurrent time.Duration
	PruneEvery      int
	PruneMaxAge     time.Duration
}

type PauseConfig struct {
	ResumeHour int
}

type ServerConfig struct {
	Addr string
}

// Loader reads the config file and environment overrides through viper and
// can watch the file for changes.
type Loader struct {
	v    *viper.Viper
	path string
	mu   sync.Mutex
}

// NewLoader creates a loader. An empty path searches the working directory,
// the executable directory and the user config directory.
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	return &Loader{v: v, path: path}
}

func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		slog.Warn("config file not found, using defaults and environment",
			slog.String("event", "config.not_found"),
		)
	}

	return l.decode()
}

// ConfigFileUsed returns the resolved config file path, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the config whenever the file changes and hands the result to
// onChange. Invalid files are reported through err and the previous config
// stays in effect.
func (l *Loader) Watch(onChange func(cfg *Config, err error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		slog.Info("config file changed",
			slog.String("event", "config.changed"),
			slog.String("path", e.Name),
		)

		l.mu.Lock()
		cfg, err := l.decode()
		l.mu.Unlock()
		if err == nil {
			err = ValidateSettings(cfg)
		}
		onChange(cfg, err)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	v := l.v

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	checkInterval := time.Duration(v.GetInt("settings.check_interval")) * time.Second

	logLevel := parseLogLevel(os.Getenv("LOG_LEVEL"))
	debugMode := v.GetBool("settings.debug_mode")
	if debugMode {
		logLevel = slog.LevelDebug
	}

	return &Config{
		Planfix: PlanfixConfig{
			AccountURL:  strings.TrimRight(strings.TrimSpace(v.GetString("planfix.account_url")), "/"),
			APIToken:    strings.TrimSpace(v.GetString("planfix.api_token")),
			FilterID:    strings.TrimSpace(v.GetString("planfix.filter_id")),
			UserID:      strings.TrimSpace(v.GetString("planfix.user_id")),
			HTTPTimeout: v.GetDuration("planfix.http_timeout"),
		},
		Settings: SettingsConfig{
			CheckInterval:         checkInterval,
			NotifyCurrent:         v.GetBool("settings.notify_current"),
			NotifyUrgent:          v.GetBool("settings.notify_urgent"),
			NotifyOverdue:         v.GetBool("settings.notify_overdue"),
			MaxWindowsPerCategory: v.GetInt("settings.max_windows_per_category"),
			MaxTotalWindows:       v.GetInt("settings.max_total_windows"),
			LookaheadDays:         v.GetInt("settings.lookahead_days"),
			DebugMode:             debugMode,
		},
		Roles: RolesConfig{
			IncludeAssignee: v.GetBool("roles.include_assignee"),
			IncludeAssigner: v.GetBool("roles.include_assigner"),
			IncludeAuditor:  v.GetBool("roles.include_auditor"),
		},
		Tracker: TrackerConfig{
			RenotifyOverdue: v.GetDuration("tracker.renotify_overdue"),
			RenotifyUrgent:  v.GetDuration("tracker.renotify_urgent"),
			RenotifyCurrent: v.GetDuration("tracker.renotify_current"),
			PruneEvery:      v.GetInt("tracker.prune_every"),
			PruneMaxAge:     v.GetDuration("tracker.prune_max_age"),
		},
		Pause: PauseConfig{
			ResumeHour: v.GetInt("pause.resume_hour"),
		},
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
		},
		LogLevel: logLevel,
		Redis:    redisConfig,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("planfix.account_url", "")
	v.SetDefault("planfix.api_token", "")
	v.SetDefault("planfix.filter_id", "")
	v.SetDefault("planfix.user_id", defaultUserID)
	v.SetDefault("planfix.http_timeout", defaultHTTPTimeout)

	v.SetDefault("settings.check_interval", defaultCheckIntervalSeconds)
	v.SetDefault("settings.notify_current", true)
	v.SetDefault("settings.notify_urgent", true)
	v.SetDefault("settings.notify_overdue", true)
	v.SetDefault("settings.max_windows_per_category", defaultMaxWindowsPerCategory)
	v.SetDefault("settings.max_total_windows", defaultMaxTotalWindows)
	v.SetDefault("settings.lookahead_days", defaultLookaheadDays)
	v.SetDefault("settings.debug_mode", false)

	v.SetDefault("roles.include_assignee", true)
	v.SetDefault("roles.include_assigner", true)
	v.SetDefault("roles.include_auditor", true)

	v.SetDefault("tracker.renotify_overdue", time.Duration(0))
	v.SetDefault("tracker.renotify_urgent", time.Duration(0))
	v.SetDefault("tracker.renotify_current", time.Duration(0))
	v.SetDefault("tracker.prune_every", defaultPruneEvery)
	v.SetDefault("tracker.prune_max_age", defaultPruneMaxAge)

	v.SetDefault("pause.resume_hour", 0)

	v.SetDefault("server.addr", defaultServerAddr)
}

// SearchPaths lists the directories searched for config.toml, in order.
func SearchPaths() []string {
	paths := []string{"."}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Dir(exe))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, appDirName))
	}
	return paths
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
