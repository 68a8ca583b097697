package planfix

import (
	"strconv"
	"strings"
	"time"
)

var (
	dashLayouts = []string{"02-01-2006", "2006-01-02", "02-01-06"}
	dotLayouts  = []string{"02.01.2006", "02.01.06"}
)

// ParseDateTime resolves a Planfix date object in loc. hasTime is false when
// only a calendar date was supplied.
func ParseDateTime(dt *DateTime, loc *time.Location) (t time.Time, hasTime bool, ok bool) {
	if dt == nil {
		return time.Time{}, false, false
	}

	if dt.DateTime != "" {
		if t, hasTime, ok := ParseDate(dt.DateTime, loc); ok {
			return t, hasTime, true
		}
	}

	if dt.Date != "" {
		if d, _, ok := ParseDate(dt.Date, loc); ok {
			if clock, ok := parseClock(dt.Time); ok {
				return d.Add(clock), true, true
			}
			return d, false, true
		}
	}

	if dt.DateTimeUTCSeconds != "" {
		if secs, err := strconv.ParseInt(dt.DateTimeUTCSeconds, 10, 64); err == nil {
			return time.Unix(secs, 0).In(loc), true, true
		}
	}

	return time.Time{}, false, false
}

// ParseDate accepts ISO-8601 timestamps and the day-first and year-first
// date layouts Planfix emits.
func ParseDate(s string, loc *time.Location) (t time.Time, hasTime bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}

	if strings.Contains(s, "T") {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
			var (
				parsed time.Time
				err    error
			)
			if layout == time.RFC3339Nano {
				parsed, err = time.Parse(layout, s)
			} else {
				parsed, err = time.ParseInLocation(layout, s, loc)
			}
			if err == nil {
				return parsed.In(loc), true, true
			}
		}
		return time.Time{}, false, false
	}

	var layouts []string
	switch {
	case strings.Contains(s, "-"):
		layouts = dashLayouts
	case strings.Contains(s, "."):
		layouts = dotLayouts
	default:
		return time.Time{}, false, false
	}

	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			return parsed, false, true
		}
	}

	return time.Time{}, false, false
}

func parseClock(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}
