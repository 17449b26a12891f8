// utils/date.go
package utils

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// ISOMillis renders UTC instants the way the ledger API exposes them, e.g. 2025-03-14T00:00:00.000Z.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

// DayWindow is a half-open UTC interval [Start, End).
type DayWindow struct {
	Start time.Time
	End   time.Time
}

func (w DayWindow) StartISO() string { return w.Start.Format(ISOMillis) }
func (w DayWindow) EndISO() string   { return w.End.Format(ISOMillis) }

// Contains reports whether t falls inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayBounds returns midnight UTC of now's calendar day and midnight of the next.
func DayBounds(now time.Time) DayWindow {
	u := now.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return DayWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// UTCDayBounds computes today's window from the given clock.
func UTCDayBounds(clock clockwork.Clock) DayWindow {
	return DayBounds(clock.Now())
}
