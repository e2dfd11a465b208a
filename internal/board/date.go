package board

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// CalendarDays returns how many calendar days t lies before now, both taken
// in now's location. A t on the same date is 0 regardless of the hours
// between them; a t after now is clamped to 0.
func CalendarDays(t, now time.Time) int {
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	// Whole-day difference between the two midnights, computed in UTC so DST
	// transitions cannot produce 23 or 25 hour days.
	from := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	to := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// RelativeDate labels t relative to now: today, yesterday, "N days ago" up
// to a week, and the long calendar date beyond that.
func RelativeDate(t, now time.Time, l Locale) string {
	m := l.Messages()
	switch days := CalendarDays(t, now); {
	case days == 0:
		return m.Today
	case days == 1:
		return m.Yesterday
	case days <= 7:
		return fmt.Sprintf(m.DaysAgo, days)
	default:
		return l.LongDate(t.In(now.Location()))
	}
}

// Clock renders the time of day of t in loc as HH:MM.
func Clock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// Stamp combines RelativeDate and Clock: "Yesterday 14:05".
func Stamp(t, now time.Time, l Locale) string {
	return RelativeDate(t, now, l) + " " + Clock(t, now.Location())
}

// MaxRotation bounds the cosmetic card rotation, in degrees.
const MaxRotation = 2.0

// Jitter returns a rotation in [-MaxRotation, MaxRotation) degrees.
func Jitter(r *rand.Rand) float64 {
	return r.Float64()*2*MaxRotation - MaxRotation
}
