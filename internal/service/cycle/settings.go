package cycle

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/scheduler"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/tracker"
)

// Settings are the reloadable knobs of the poll cycle.
type Settings struct {
	Notify    map[domain.Category]bool
	Limits    scheduler.Limits
	Intervals tracker.Intervals
	// Roles limits tasks to those where the user holds one of these roles.
	// Empty disables the filter.
	Roles       []domain.Role
	PruneEvery  int
	PruneMaxAge time.Duration
}

func (s Settings) Validate() error {
	if err := s.Intervals.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if s.PruneEvery < 0 {
		return fmt.Errorf("%w: prune every %d", ErrInvalidSettings, s.PruneEvery)
	}
	return nil
}

// Notifies reports whether popups are enabled for category. A category
// missing from Notify is enabled.
func (s Settings) Notifies(category domain.Category) bool {
	enabled, ok := s.Notify[category]
	return !ok || enabled
}

func (s Settings) clone() Settings {
	out := s
	out.Notify = maps.Clone(s.Notify)
	out.Roles = slices.Clone(s.Roles)
	out.Intervals.Category = maps.Clone(s.Intervals.Category)
	return out
}
