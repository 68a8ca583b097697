package cycle

import (
	"maps"
	"slices"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
	"github.com/KasumiMercury/primind-task-reminder/internal/service/scheduler"
)

type Status struct {
	Paused     bool                    `json:"paused"`
	Pause      domain.PauseState       `json:"pause"`
	Tracker    domain.TrackerStats     `json:"tracker"`
	Categories map[domain.Category]int `json:"categories"`
	LastCycle  domain.CycleRecord      `json:"last_cycle"`
	Limits     scheduler.Limits        `json:"limits"`
	Open       int                     `json:"open_notifications"`
}

func (s *Service) Status() Status {
	now := s.now()
	paused := s.pause.IsPaused(now)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Paused:     paused,
		Pause:      s.pause.State(),
		Tracker:    s.tracker.Stats(now),
		Categories: maps.Clone(s.categories),
		LastCycle:  s.lastCycle,
		Limits:     s.scheduler.Limits(),
		Open:       len(s.latest),
	}
}

// Latest returns the notifications from the most recent unpaused cycle that
// the user has not yet acted on.
func (s *Service) Latest() []domain.NotificationIntent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.latest)
}

func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.clone()
}

// ApplySettings swaps in reloaded settings for the following cycles.
func (s *Service) ApplySettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.tracker.SetIntervals(settings.Intervals); err != nil {
		return err
	}
	s.scheduler.SetLimits(settings.Limits)

	s.mu.Lock()
	s.settings = settings.clone()
	s.mu.Unlock()

	return nil
}
