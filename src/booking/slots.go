package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotPolicy generates the bookable time slots of a venue day.
type SlotPolicy struct {
	Granularity   time.Duration
	HorizonMonths int
	Location      *time.Location
	DefaultOpens  string
	DefaultCloses string
}

func DefaultSlotPolicy() SlotPolicy {
	return SlotPolicy{
		Granularity:   30 * time.Minute,
		HorizonMonths: 3,
		Location:      time.UTC,
		DefaultOpens:  "10:00",
		DefaultCloses: "18:00",
	}
}

func (p SlotPolicy) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p SlotPolicy) Today(now time.Time) time.Time {
	n := now.In(p.loc())
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, p.loc())
}

// ParseDate reads a YYYY-MM-DD date in the policy's location.
func (p SlotPolicy) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, p.loc())
}

// CheckDate accepts dates from today up to and including today plus the
// horizon.
func (p SlotPolicy) CheckDate(date, now time.Time) error {
	today := p.Today(now)
	day := p.Today(date)
	last := today.AddDate(0, p.HorizonMonths, 0)
	if day.Before(today) || day.After(last) {
		return ErrDateOutOfRange
	}
	return nil
}

// Slots returns the start times of every slot that fits between opening and
// closing on date. On the current day, slots that have already started are
// left out.
func (p SlotPolicy) Slots(date time.Time, opens, closes string, now time.Time) ([]time.Time, error) {
	if opens == "" {
		opens = p.DefaultOpens
	}
	if closes == "" {
		closes = p.DefaultCloses
	}
	day := p.Today(date)
	start, err := atClock(day, opens)
	if err != nil {
		return nil, err
	}
	end, err := atClock(day, closes)
	if err != nil {
		return nil, err
	}
	step := p.Granularity
	if step <= 0 {
		step = 30 * time.Minute
	}
	today := p.Today(now).Equal(day)
	slots := make([]time.Time, 0)
	for t := start; !t.Add(step).After(end); t = t.Add(step) {
		if today && !t.After(now) {
			continue
		}
		slots = append(slots, t)
	}
	return slots, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid clock time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return time.Time{}, fmt.Errorf("invalid clock time %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("invalid clock time %q", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}
