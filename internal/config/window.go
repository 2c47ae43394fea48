package config

import (
	"errors"
	"fmt"
	"time"

	"diaries-qc/internal/dates"
)

// ErrInvalidWindow the requested date window cannot be resolved
var ErrInvalidWindow = errors.New("invalid date window")

// DefaultWindowDays length of the window used when no dates are given
const DefaultWindowDays = 30

// Window inclusive range of interview days
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on a day inside the window
func (w Window) Contains(t time.Time) bool {
	d := dates.Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return dates.Format(w.Start) + ".." + dates.Format(w.End)
}

// DefaultWindow trailing DefaultWindowDays days ending yesterday
func DefaultWindow(today time.Time) Window {
	end := dates.Day(today).AddDate(0, 0, -1)
	return Window{Start: end.AddDate(0, 0, -(DefaultWindowDays - 1)), End: end}
}

// ParseWindow builds a window from YYYY-MM-DD strings. Both empty selects DefaultWindow;
// exactly one empty, an unparseable date or start after end is ErrInvalidWindow.
func ParseWindow(start, end string, today time.Time) (Window, error) {
	if start == "" && end == "" {
		return DefaultWindow(today), nil
	}
	if start == "" || end == "" {
		return Window{}, fmt.Errorf("%w: start and end must be given together", ErrInvalidWindow)
	}
	s, err := time.Parse(dates.Layout, start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start %q: %v", ErrInvalidWindow, start, err)
	}
	e, err := time.Parse(dates.Layout, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end %q: %v", ErrInvalidWindow, end, err)
	}
	if s.After(e) {
		return Window{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidWindow, start, end)
	}
	return Window{Start: s, End: e}, nil
}

// MonthWindow whole calendar month; the current month ends yesterday.
// A month that has not started yet, or the first day of the current month, is ErrInvalidWindow.
func MonthWindow(year int, month time.Month, today time.Time) (Window, error) {
	if month < time.January || month > time.December {
		return Window{}, fmt.Errorf("%w: month %d", ErrInvalidWindow, month)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	yesterday := dates.Day(today).AddDate(0, 0, -1)
	if end.After(yesterday) {
		end = yesterday
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: no completed days in %s", ErrInvalidWindow, start.Format("2006-01"))
	}
	return Window{Start: start, End: end}, nil
}

// ParseMonth parses YYYY-MM into a MonthWindow
func ParseMonth(value string, today time.Time) (Window, error) {
	m, err := time.Parse("2006-01", value)
	if err != nil {
		return Window{}, fmt.Errorf("%w: month %q: %v", ErrInvalidWindow, value, err)
	}
	return MonthWindow(m.Year(), m.Month(), today)
}
