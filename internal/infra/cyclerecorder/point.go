package cyclerecorder

import (
	"strconv"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const measurement = "reminder_cycle"

func cycleTags(record domain.CycleRecord) map[string]string {
	runID := record.RunID
	if runID == "" {
		runID = "default"
	}
	return map[string]string{
		"run_id":  runID,
		"outcome": record.Outcome,
		"forced":  strconv.FormatBool(record.Forced),
		"paused":  strconv.FormatBool(record.Paused),
	}
}

func cycleFields(record domain.CycleRecord) map[string]any {
	fields := map[string]any{
		"duration_ms": record.Duration.Milliseconds(),
		"fetched":     record.Fetched,
		"invalid":     record.Invalid,
		"eligible":    record.Eligible,
		"presented":   record.Presented,
	}
	for _, c := range domain.Categories {
		fields[c.String()+"_count"] = record.CategoryCounts[c]
	}
	return fields
}
