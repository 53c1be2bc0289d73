package policy

import (
	"fmt"
	"time"
)

// Window is the weekly interval during which the target process may run.
// Hours are inclusive on both ends: a window with EndHour=18 stays open
// through all sixty minutes of hour 18 and closes at 19:00.
type Window struct {
	Weekday   time.Weekday
	StartHour int
	EndHour   int
}

// Validate checks basic window invariants.
func (w Window) Validate() error {
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("invalid weekday: %d", w.Weekday)
	}
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("start hour out of range: %d", w.StartHour)
	}
	if w.EndHour < 0 || w.EndHour > 23 {
		return fmt.Errorf("end hour out of range: %d", w.EndHour)
	}
	if w.StartHour > w.EndHour {
		return fmt.Errorf("start hour %d after end hour %d", w.StartHour, w.EndHour)
	}
	return nil
}

// Contains reports whether now falls inside the window. Evaluated in now's
// own location; no timezone conversion is performed.
func (w Window) Contains(now time.Time) bool {
	return now.Weekday() == w.Weekday && now.Hour() >= w.StartHour && now.Hour() <= w.EndHour
}

// NextClose returns the next instant strictly after now at which the window
// stops containing time, i.e. the top of the hour following EndHour on the
// window's weekday (rolling into the next day when EndHour is 23). The
// scheduler arms its weekly check at this instant.
func (w Window) NextClose(now time.Time) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), w.EndHour, 0, 0, 0, now.Location())
	at = at.Add(time.Hour)
	days := int(w.Weekday - now.Weekday())
	if days < 0 {
		days += 7
	}
	at = at.AddDate(0, 0, days)
	if !at.After(now) {
		at = at.AddDate(0, 0, 7)
	}
	return at
}

// String implements fmt.Stringer for log lines.
func (w Window) String() string {
	return fmt.Sprintf("%s %02d:00-%02d:59", w.Weekday, w.StartHour, w.EndHour)
}
