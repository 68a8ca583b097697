package cyclerecorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

func TestCycleTags(t *testing.T) {
	tags := cycleTags(domain.CycleRecord{Outcome: "ok", Forced: true})

	assert.Equal(t, map[string]string{
		"run_id":  "default",
		"outcome": "ok",
		"forced":  "true",
		"paused":  "false",
	}, tags)
}

func TestCycleFields(t *testing.T) {
	fields := cycleFields(domain.CycleRecord{
		Duration:  1500 * time.Millisecond,
		Fetched:   12,
		Invalid:   1,
		Eligible:  6,
		Presented: 4,
		CategoryCounts: map[domain.Category]int{
			domain.CategoryOverdue: 3,
			domain.CategoryUrgent:  2,
		},
	})

	assert.Equal(t, int64(1500), fields["duration_ms"])
	assert.Equal(t, 12, fields["fetched"])
	assert.Equal(t, 4, fields["presented"])
	assert.Equal(t, 3, fields["overdue_count"])
	assert.Equal(t, 2, fields["urgent_count"])
	assert.Equal(t, 0, fields["current_count"])
}

func TestNewRecorderDisabled(t *testing.T) {
	rec, err := NewRecorder(context.Background(), &Config{Disabled: true})
	require.NoError(t, err)

	assert.NoError(t, rec.RecordCycle(context.Background(), domain.CycleRecord{}))
	assert.NoError(t, rec.Flush(context.Background()))
	assert.NoError(t, rec.Close())
}
