package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/activity-tracker/internal/model"
)

// NormalizeTime converts a time of day to zero-padded 24-hour "HH:MM".
// Accepted inputs are "H:MM", "HH:MM", "HH:MM:SS" and 12-hour "h:MM AM".
func NormalizeTime(s string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return "", Invalid("hora", "hora requerida")
	}

	meridiem := ""
	if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
		meridiem = v[len(v)-2:]
		v = strings.TrimSpace(v[:len(v)-2])
	}

	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", Invalid("hora", "hora inválida: %q", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || len(parts[1]) != 2 || len(parts[0]) > 2 {
		return "", Invalid("hora", "hora inválida: %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || len(parts[2]) != 2 || sec < 0 || sec > 59 {
			return "", Invalid("hora", "hora inválida: %q", s)
		}
	}

	switch meridiem {
	case "":
		if h < 0 || h > 23 {
			return "", Invalid("hora", "hora inválida: %q", s)
		}
	default:
		if h < 1 || h > 12 {
			return "", Invalid("hora", "hora inválida: %q", s)
		}
		if meridiem == "AM" && h == 12 {
			h = 0
		} else if meridiem == "PM" && h != 12 {
			h += 12
		}
	}
	if m < 0 || m > 59 {
		return "", Invalid("hora", "hora inválida: %q", s)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// RangesOverlap reports whether [ns, ne) intersects [s, e).  All four values
// must be normalized "HH:MM"; string order equals time order for them.
// Touching ranges (ne == s or e == ns) do not overlap.
func RangesOverlap(ns, ne, s, e string) bool {
	startInside := ns >= s && ns < e
	endInside := ne > s && ne <= e
	contains := ns <= s && ne >= e
	return startInside || endInside || contains
}

// NormalizeRange normalizes a start/end pair and checks start < end.
func NormalizeRange(start, end string) (string, string, error) {
	ns, err := NormalizeTime(start)
	if err != nil {
		return "", "", Invalid("horaInicio", "hora de inicio inválida: %q", start)
	}
	ne, err := NormalizeTime(end)
	if err != nil {
		return "", "", Invalid("horaFin", "hora de fin inválida: %q", end)
	}
	if ns >= ne {
		return "", "", Invalid("horaFin", "la hora de fin debe ser posterior a la hora de inicio")
	}
	return ns, ne, nil
}

// ScheduleChecker detects time collisions between a user's activities on
// the same day.  The check and the subsequent insert are not atomic; two
// concurrent requests can both pass.
type ScheduleChecker struct {
	activities ActivityStore
}

func NewScheduleChecker(activities ActivityStore) *ScheduleChecker {
	return &ScheduleChecker{activities: activities}
}

// HasOverlap reports whether [start, end) collides with any non-submitted
// activity of userID on date.  excludeID (0 for none) skips the activity
// being edited.
func (c *ScheduleChecker) HasOverlap(ctx context.Context, userID uint64, date time.Time, start, end string, excludeID uint64) (bool, error) {
	ns, ne, err := NormalizeRange(start, end)
	if err != nil {
		return false, err
	}
	day := truncateDay(date)
	existing, err := c.activities.Find(ctx, model.ActivityFilter{UserID: userID, Date: &day, ExcludeID: excludeID})
	if err != nil {
		return false, fmt.Errorf("load activities for overlap check: %w", err)
	}
	for _, a := range existing {
		if a.Status.IsSubmitted() || (excludeID != 0 && a.ID == excludeID) {
			continue
		}
		s, err1 := NormalizeTime(a.StartTime)
		e, err2 := NormalizeTime(a.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if RangesOverlap(ns, ne, s, e) {
			return true, nil
		}
	}
	return false, nil
}

// truncateDay drops the time of day, keeping the calendar date in UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
