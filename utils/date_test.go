package utils

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestDayBounds(t *testing.T) {
	w := DayBounds(time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC))

	assert.Equal(t, "2025-03-14T00:00:00.000Z", w.StartISO())
	assert.Equal(t, "2025-03-15T00:00:00.000Z", w.EndISO())
	assert.Equal(t, 24*time.Hour, w.End.Sub(w.Start))
}

func TestDayBounds_NonUTCInputUsesUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	w := DayBounds(time.Date(2025, 12, 31, 23, 30, 0, 0, loc))

	assert.Equal(t, "2026-01-01T00:00:00.000Z", w.StartISO())
	assert.Equal(t, "2026-01-02T00:00:00.000Z", w.EndISO())
}

func TestDayBounds_Midnight(t *testing.T) {
	midnight := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	w := DayBounds(midnight)

	assert.True(t, w.Start.Equal(midnight))
	assert.True(t, w.Contains(midnight))
	assert.False(t, w.Contains(w.End))
}

func TestUTCDayBounds_FromClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC))
	w := UTCDayBounds(clock)
	assert.Equal(t, "2024-02-29T00:00:00.000Z", w.StartISO())
	assert.Equal(t, "2024-03-01T00:00:00.000Z", w.EndISO())
}
