// Package reminder keeps the device's local task reminders in agreement with
// the tasks assigned to the signed-in user.
package reminder

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrInvalidPolicy = errors.New("invalid reminder policy")

const (
	DefaultLeadTime = 6 * time.Hour
	MaxLeadTime     = 48 * time.Hour

	// a daily reminder this close to the lead-time reminder replaces it
	suppressWindow = time.Hour
)

// Mode selects how the reminder trigger is derived from the due date
type Mode string

const (
	ModeLeadTime Mode = "lead"
	ModeDaily    Mode = "daily"
	ModeCombined Mode = "combined"
)

// ClockTime is a wall-clock time of day
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" in 24-hour form.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: clock time %q must be HH:MM", ErrInvalidPolicy, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Policy decides when a task's reminder fires
type Policy struct {
	Mode       Mode
	LeadTime   time.Duration
	DailyTimes []ClockTime
	Location   *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		Mode:     ModeLeadTime,
		LeadTime: DefaultLeadTime,
		DailyTimes: []ClockTime{
			{Hour: 8}, {Hour: 12}, {Hour: 17},
		},
		Location: time.Local,
	}
}

func (p Policy) Validate() error {
	switch p.Mode {
	case ModeLeadTime, ModeDaily, ModeCombined:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, p.Mode)
	}
	if p.LeadTime < 0 || p.LeadTime > MaxLeadTime {
		return fmt.Errorf("%w: lead time %s outside 0h..48h", ErrInvalidPolicy, p.LeadTime)
	}
	if p.Mode != ModeLeadTime && len(p.DailyTimes) == 0 {
		return fmt.Errorf("%w: mode %q needs at least one daily time", ErrInvalidPolicy, p.Mode)
	}
	for _, c := range p.DailyTimes {
		if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
			return fmt.Errorf("%w: clock time %s out of range", ErrInvalidPolicy, c)
		}
	}
	return nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Trigger returns the instant the reminder for a task due at due should fire.
// ok is false when no trigger strictly after now exists.
//
// In combined mode the lead-time trigger is used unless a same-day daily
// trigger falls within an hour of it, in which case the daily one replaces it.
// If the lead-time trigger has passed, a future daily trigger is used instead.
func (p Policy) Trigger(due, now time.Time) (time.Time, bool) {
	lead := due.Add(-p.LeadTime)
	leadOK := lead.After(now)

	switch p.Mode {
	case ModeDaily:
		daily, ok := p.dailyTrigger(due)
		if !ok || !daily.After(now) {
			return time.Time{}, false
		}
		return daily, true

	case ModeCombined:
		daily, ok := p.dailyTrigger(due)
		dailyOK := ok && daily.After(now)
		switch {
		case leadOK && dailyOK && withinWindow(lead, daily) && sameDay(lead, daily, p.location()):
			return daily, true
		case leadOK:
			return lead, true
		case dailyOK:
			return daily, true
		}
		return time.Time{}, false

	default:
		if !leadOK {
			return time.Time{}, false
		}
		return lead, true
	}
}

// dailyTrigger picks the latest configured clock time that is not after the
// due instant. The due date's local day is searched first; a task due before
// the day's earliest time gets the latest time of the previous day.
func (p Policy) dailyTrigger(due time.Time) (time.Time, bool) {
	if len(p.DailyTimes) == 0 {
		return time.Time{}, false
	}
	loc := p.location()
	y, m, d := due.In(loc).Date()

	for _, day := range []int{d, d - 1} {
		candidates := make([]time.Time, 0, len(p.DailyTimes))
		for _, c := range p.DailyTimes {
			// time.Date normalizes day 0 into the previous month
			at := time.Date(y, m, day, c.Hour, c.Minute, 0, 0, loc)
			if !at.After(due) {
				candidates = append(candidates, at)
			}
		}
		if len(candidates) > 0 {
			sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
			return candidates[len(candidates)-1], true
		}
	}
	return time.Time{}, false
}

func withinWindow(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < suppressWindow
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
