package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in a civil day.
const MinutesPerDay = 24 * 60

// ParseClock parses "HH:MM" or "HH:MM:SS" into a minute-of-day offset.
// Seconds are accepted but truncated. "24:00" is accepted as the end of day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock %q: expected HH:MM", s)
	}

	var fields [3]int
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid clock %q: expected HH:MM", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock %q: expected HH:MM", s)
		}
		fields[i] = n
	}

	h, m, sec := fields[0], fields[1], fields[2]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("invalid clock %q: out of range", s)
	}
	minute := h*60 + m
	if h > 24 || minute > MinutesPerDay || (minute == MinutesPerDay && sec > 0) {
		return 0, fmt.Errorf("invalid clock %q: out of range", s)
	}
	return minute, nil
}

// FormatClock renders a minute-of-day offset as zero-padded "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
