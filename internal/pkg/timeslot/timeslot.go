package timeslot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SlotMinutes is the fixed duration of a bookable slot.
const SlotMinutes = 60

var clockRe = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// SplitRange slices a coarse availability range like "9am-5pm" into ordered
// one-hour slot labels ("9:00 AM - 10:00 AM", ...). A trailing partial hour is
// dropped. Ranges whose end is numerically at or before the start are treated
// as crossing midnight. An unparsable range is returned verbatim as a
// single-element list: mentor availability is legacy free text and a bad value
// must not break slot listings.
func SplitRange(r string) []string {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return []string{r}
	}

	start, ok := parseClock(strings.TrimSpace(parts[0]))
	if !ok {
		return []string{r}
	}
	end, ok := parseClock(strings.TrimSpace(parts[1]))
	if !ok {
		return []string{r}
	}

	if end <= start {
		end += 24 * 60
	}

	slots := []string{}
	for t := start; t+SlotMinutes <= end; t += SlotMinutes {
		slots = append(slots, fmt.Sprintf("%s - %s", formatClock(t), formatClock(t+SlotMinutes)))
	}
	return slots
}

// SplitRanges applies SplitRange to each range in order.
func SplitRanges(ranges []string) []string {
	slots := []string{}
	for _, r := range ranges {
		slots = append(slots, SplitRange(r)...)
	}
	return slots
}

// SlotStart resolves a slot label like "10:00 AM - 11:00 AM" against a
// calendar date, returning the wall-clock start of the session. The second
// return is false when the label's start cannot be parsed (legacy passthrough
// values).
func SlotStart(date time.Time, slot string) (time.Time, bool) {
	parts := strings.SplitN(slot, "-", 2)
	start, ok := parseClock(strings.TrimSpace(parts[0]))
	if !ok {
		return time.Time{}, false
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, start/60, start%60, 0, 0, date.Location()), true
}

// parseClock parses "9", "9:30", "9am", "12:15 pm" into minutes since
// midnight. A bare hour without a meridiem is taken as a 24-hour value, so
// hours below 12 read as AM.
func parseClock(s string) (int, bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return 0, false
	}

	switch strings.ToLower(m[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, false
		}
	}

	return hour*60 + minute, true
}

// formatClock renders minutes since midnight as "H:MM AM/PM".
func formatClock(t int) string {
	t %= 24 * 60
	hour := t / 60
	minute := t % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}

	h12 := hour % 12
	if h12 == 0 {
		h12 = 12
	}

	return fmt.Sprintf("%d:%02d %s", h12, minute, meridiem)
}
