package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotsFitBeforeClosing(t *testing.T) {
	p := DefaultSlotPolicy()
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	slots, err := p.Slots(now, "10:00", "12:15", now)
	require.NoError(t, err)
	got := make([]string, 0, len(slots))
	for _, s := range slots {
		got = append(got, s.Format("15:04"))
	}
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30"}, got)
}

func TestSlotsSkipStartedOnesToday(t *testing.T) {
	p := DefaultSlotPolicy()
	now := time.Date(2026, 10, 16, 16, 10, 0, 0, time.UTC)
	slots, err := p.Slots(now, "", "", now)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "16:30", slots[0].Format("15:04"))

	late := time.Date(2026, 10, 16, 17, 45, 0, 0, time.UTC)
	slots, err = p.Slots(late, "", "", late)
	require.NoError(t, err)
	assert.Empty(t, slots)

	tomorrow, err := p.Slots(late.AddDate(0, 0, 1), "", "", late)
	require.NoError(t, err)
	assert.Len(t, tomorrow, 16)
}

func TestSlotsInVenueTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	p := DefaultSlotPolicy()
	p.Location = loc
	// 08:30 UTC is 17:30 at the venue
	now := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	slots, err := p.Slots(now, "", "", now)
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.Equal(t, loc, p.Today(now).Location())
}

func TestSlotsRejectBadClock(t *testing.T) {
	p := DefaultSlotPolicy()
	now := time.Now()
	_, err := p.Slots(now, "10", "18:00", now)
	assert.Error(t, err)
	_, err = p.Slots(now, "10:00", "18:75", now)
	assert.Error(t, err)
}

func TestCheckDate(t *testing.T) {
	p := DefaultSlotPolicy()
	now := time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC)
	assert.NoError(t, p.CheckDate(now, now))
	assert.NoError(t, p.CheckDate(time.Date(2027, 1, 16, 0, 0, 0, 0, time.UTC), now))
	assert.ErrorIs(t, p.CheckDate(time.Date(2027, 1, 17, 0, 0, 0, 0, time.UTC), now), ErrDateOutOfRange)
	assert.ErrorIs(t, p.CheckDate(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), now), ErrDateOutOfRange)

	d, err := p.ParseDate("2026-11-02")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Day())
	_, err = p.ParseDate("02/11/2026")
	assert.Error(t, err)
}
