package pause

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

func TestController_InitialStateActive(t *testing.T) {
	c, err := NewController(0)
	require.NoError(t, err)

	assert.False(t, c.IsPaused(time.Now()))
	assert.Equal(t, domain.PauseState{}, c.State())
}

func TestNewController_InvalidResumeHour(t *testing.T) {
	for _, h := range []int{-1, 24} {
		_, err := NewController(h)
		assert.ErrorIs(t, err, ErrInvalidResumeHour)
	}
}

func TestController_PauseFor(t *testing.T) {
	c, _ := NewController(0)
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	state, err := c.Pause(PauseFor(time.Hour), now)
	require.NoError(t, err)

	assert.True(t, state.Active)
	assert.Equal(t, domain.PauseModeDuration, state.Mode)
	assert.Equal(t, now.Add(time.Hour), state.ResumeAt)
	assert.True(t, c.IsPaused(now.Add(59*time.Minute)))
	assert.False(t, c.IsPaused(now.Add(time.Hour)), "auto-resume at the deadline")
	assert.False(t, c.State().Active)
}

func TestController_PauseForInvalid(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
	}{
		{name: "zero", d: 0},
		{name: "negative", d: -time.Minute},
		{name: "beyond a week", d: MaxPauseDuration + time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := NewController(0)

			_, err := c.Pause(PauseFor(tt.d), time.Now())

			if !errors.Is(err, ErrInvalidDuration) {
				t.Errorf("err = %v, want %v", err, ErrInvalidDuration)
			}
			if c.State().Active {
				t.Errorf("controller paused after rejected duration %s", tt.d)
			}
		})
	}
}

func TestController_PauseUntilNextDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	now := time.Date(2025, 12, 31, 22, 15, 0, 0, loc)

	tests := []struct {
		name       string
		resumeHour int
		want       time.Time
	}{
		{name: "midnight", resumeHour: 0, want: time.Date(2026, 1, 1, 0, 0, 0, 0, loc)},
		{name: "nine in the morning", resumeHour: 9, want: time.Date(2026, 1, 1, 9, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewController(tt.resumeHour)
			if err != nil {
				t.Fatalf("NewController() error = %v", err)
			}

			state, err := c.Pause(PauseUntilNextDay(), now)
			if err != nil {
				t.Fatalf("Pause() error = %v", err)
			}

			if state.Mode != domain.PauseModeNextDay {
				t.Errorf("Mode = %v, want %v", state.Mode, domain.PauseModeNextDay)
			}
			if !tt.want.Equal(state.ResumeAt) {
				t.Errorf("ResumeAt = %v, want %v", state.ResumeAt, tt.want)
			}
			if !c.IsPaused(tt.want.Add(-time.Second)) {
				t.Errorf("IsPaused() just before resume = false, want true")
			}
			if c.IsPaused(tt.want) {
				t.Errorf("IsPaused() at resume = true, want false")
			}
		})
	}
}

func TestController_Resume(t *testing.T) {
	c, _ := NewController(0)
	now := time.Now()
	_, err := c.Pause(PauseFor(time.Hour), now)
	require.NoError(t, err)

	c.Resume()

	assert.False(t, c.IsPaused(now))
	c.Resume()
	assert.False(t, c.IsPaused(now))
}

func TestController_Restore(t *testing.T) {
	c, _ := NewController(0)
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	c.Restore(domain.PauseState{Active: true, ResumeAt: now.Add(time.Minute), Mode: domain.PauseModeDuration})

	assert.True(t, c.IsPaused(now))
	assert.False(t, c.IsPaused(now.Add(time.Minute)))
}

func TestController_SetResumeHour(t *testing.T) {
	c, _ := NewController(0)
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	require.NoError(t, c.SetResumeHour(9))
	assert.ErrorIs(t, c.SetResumeHour(24), ErrInvalidResumeHour)

	state, err := c.Pause(PauseUntilNextDay(), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), state.ResumeAt)
}
