package pause

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// Selector computes when a pause started at now should end.
type Selector func(now time.Time, resumeHour int) (time.Time, domain.PauseMode, error)

// MaxPauseDuration bounds PauseFor.
const MaxPauseDuration = 7 * 24 * time.Hour

// PauseFor pauses for a fixed duration from now.
func PauseFor(d time.Duration) Selector {
	return func(now time.Time, _ int) (time.Time, domain.PauseMode, error) {
		if d <= 0 || d > MaxPauseDuration {
			return time.Time{}, "", fmt.Errorf("%w: %s", ErrInvalidDuration, d)
		}
		return now.Add(d), domain.PauseModeDuration, nil
	}
}

// PauseUntilNextDay pauses until the next local midnight plus the
// controller's resume hour.
func PauseUntilNextDay() Selector {
	return func(now time.Time, resumeHour int) (time.Time, domain.PauseMode, error) {
		return NextDayBoundary(now, resumeHour), domain.PauseModeNextDay, nil
	}
}

func NextDayBoundary(now time.Time, resumeHour int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, resumeHour, 0, 0, 0, now.Location())
}

type Controller struct {
	mu         sync.Mutex
	state      domain.PauseState
	resumeHour int
}

func NewController(resumeHour int) (*Controller, error) {
	if resumeHour < 0 || resumeHour > 23 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResumeHour, resumeHour)
	}
	return &Controller{resumeHour: resumeHour}, nil
}

func (c *Controller) Pause(sel Selector, now time.Time) (domain.PauseState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resumeAt, mode, err := sel(now, c.resumeHour)
	if err != nil {
		return c.state, err
	}

	c.state = domain.PauseState{
		Active:   true,
		ResumeAt: resumeAt,
		Mode:     mode,
	}

	slog.Info("notifications paused",
		slog.String("event", "paused"),
		slog.String("mode", string(mode)),
		slog.Time("resume_at", resumeAt),
	)

	return c.state, nil
}

func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active {
		return
	}
	c.state = domain.PauseState{}

	slog.Info("notifications resumed",
		slog.String("event", "resumed"),
		slog.String("trigger", "user"),
	)
}

// IsPaused reports whether notifications are suspended at now. A pause whose
// resume time has passed is cleared.
func (c *Controller) IsPaused(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active {
		return false
	}
	if c.state.Expired(now) {
		slog.Info("notifications resumed",
			slog.String("event", "resumed"),
			slog.String("trigger", "deadline"),
			slog.Time("resume_at", c.state.ResumeAt),
		)
		c.state = domain.PauseState{}
		return false
	}
	return true
}

func (c *Controller) State() domain.PauseState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Restore(state domain.PauseState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

func (c *Controller) SetResumeHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: %d", ErrInvalidResumeHour, hour)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumeHour = hour
	return nil
}
