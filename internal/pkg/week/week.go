// Package week derives the Monday..Sunday payroll window. Every caller that needs a week
// boundary goes through this package so aggregation, load moves and locking agree.
package week

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidWeek   = errors.New("week must be between 1 and the number of ISO weeks in the year")
	ErrInvalidYear   = errors.New("year must be between 2000 and 2100")
	ErrInvalidWindow = errors.New("window must start on a Monday and end on the following Sunday")
)

// Window is one payroll week. Start is the Monday, End is the Sunday (both at 00:00 UTC).
type Window struct {
	Year  int
	Week  int
	Start time.Time
	End   time.Time
}

// FromISOWeek returns the window for ISO year/week.
func FromISOWeek(year, wk int) (Window, error) {
	if year < 2000 || year > 2100 {
		return Window{}, ErrInvalidYear
	}
	if wk < 1 || wk > WeeksInYear(year) {
		return Window{}, ErrInvalidWeek
	}

	// ISO week 1 is the week holding January 4th.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(wk-1)*7)

	return Window{
		Year:  year,
		Week:  wk,
		Start: monday,
		End:   monday.AddDate(0, 0, 6),
	}, nil
}

// Containing returns the window holding t. Only the calendar date of t is used.
func Containing(t time.Time) Window {
	day := truncate(t)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	year, wk := monday.ISOWeek()

	return Window{
		Year:  year,
		Week:  wk,
		Start: monday,
		End:   monday.AddDate(0, 0, 6),
	}
}

// FromDates validates an explicit start/end pair.
func FromDates(start, end time.Time) (Window, error) {
	start, end = truncate(start), truncate(end)
	if start.Weekday() != time.Monday || !end.Equal(start.AddDate(0, 0, 6)) {
		return Window{}, ErrInvalidWindow
	}
	return Containing(start), nil
}

// ParseDates parses YYYY-MM-DD strings and validates the window.
func ParseDates(start, end string) (Window, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start date: %w", err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end date: %w", err)
	}
	return FromDates(s, e)
}

// Range returns the windows from startWeek to endWeek inclusive.
func Range(year, startWeek, endWeek int) ([]Window, error) {
	if startWeek > endWeek {
		return nil, ErrInvalidWeek
	}
	windows := make([]Window, 0, endWeek-startWeek+1)
	for wk := startWeek; wk <= endWeek; wk++ {
		w, err := FromISOWeek(year, wk)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// WeeksInYear returns 52 or 53.
func WeeksInYear(year int) int {
	_, wk := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return wk
}

// Contains reports whether the calendar date of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	day := truncate(t)
	return !day.Before(w.Start) && !day.After(w.End)
}

// EndExclusive is the Monday after the window, for half-open range queries.
func (w Window) EndExclusive() time.Time {
	return w.End.AddDate(0, 0, 1)
}

// Equal compares the date pair only.
func (w Window) Equal(other Window) bool {
	return w.Start.Equal(other.Start) && w.End.Equal(other.End)
}

// Label formats the window as 2024-W10.
func (w Window) Label() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

func (w Window) StartDate() string { return w.Start.Format(dateLayout) }
func (w Window) EndDate() string   { return w.End.Format(dateLayout) }

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
