package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerDay = 24 * 60

	// RoundingStep is the booking granularity enforced on candidate start times.
	RoundingStep = 5

	dateLayout = "2006-01-02"
)

// Interval is a half-open [Start, End) range of minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
// Touching intervals ([a,b) and [b,c)) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// ParseClock converts "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are validated and then dropped.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	limits := []int{23, 59, 59}
	values := make([]int, len(parts))
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 || !allDigits(p) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		values[i] = v
	}
	return values[0]*60 + values[1], nil
}

// FormatClock renders minutes since midnight as "HH:MM", wrapping into a single day.
func FormatClock(minutes int) string {
	m := wrapDay(minutes)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// RoundToStep rounds minutes to the nearest multiple of step (ties round up)
// and wraps the result into a single day.
func RoundToStep(minutes, step int) int {
	if step <= 0 {
		return wrapDay(minutes)
	}
	q := minutes / step
	if minutes%step < 0 {
		q--
	}
	if r := minutes - q*step; r*2 >= step {
		q++
	}
	return wrapDay(q * step)
}

// RoundClock rounds a clock string to the booking granularity.
// "10:27" becomes "10:25", "10:28" becomes "10:30" and "23:58" wraps to "00:00".
func RoundClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(RoundToStep(m, RoundingStep)), nil
}

// ParseDate validates a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func wrapDay(minutes int) int {
	return ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
