// Package streak derives streak, heatmap, and completion-rate figures from
// sets of calendar-day completion dates. Everything here is pure arithmetic
// over YYYY-MM-DD strings plus an explicit "today": no clocks, no I/O, so
// every view recomputes from the raw logs it has loaded.
//
// Dates are compared as local calendar days with no timezone normalization.
// That makes behavior near midnight depend on the caller's clock, which is an
// accepted limitation of the model rather than something this package tries
// to correct.
package streak

import (
	"math"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used everywhere in the system.
const DateLayout = "2006-01-02"

// Policy constants. These are fixed product decisions, not per-user knobs.
const (
	// HeatmapDays is the trailing window rendered by the heatmap, ending
	// today inclusive.
	HeatmapDays = 90
	// SeriesWeeks is the number of calendar weeks covered by WeeklySeries.
	SeriesWeeks = 8
)

// Set is a deduplicated set of completion dates. Construct with NewSet.
type Set map[string]struct{}

// NewSet builds a set from raw date strings. Malformed dates are dropped;
// duplicates collapse to one entry.
func NewSet(dates []string) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			continue
		}
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether the given date is in the set.
func (s Set) Contains(date string) bool {
	_, ok := s[date]
	return ok
}

// sorted returns the set's dates in ascending order.
func (s Set) sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DoneOn reports whether the habit was completed on the given day.
func DoneOn(s Set, date string) bool {
	return s.Contains(date)
}

// Current returns the count of consecutive completed days ending at today or
// yesterday. A streak survives today not being marked yet (one day of grace);
// two or more missed days reset it to 0.
func Current(s Set, today string) int {
	day, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}
	if !s.Contains(today) {
		day = day.AddDate(0, 0, -1)
		if !s.Contains(day.Format(DateLayout)) {
			return 0
		}
	}

	count := 0
	for s.Contains(day.Format(DateLayout)) {
		count++
		day = day.AddDate(0, 0, -1)
	}
	return count
}

// Best returns the longest run of consecutive days anywhere in the set. An
// empty set yields 0, a single date 1. Ties keep the first run found.
func Best(s Set) int {
	dates := s.sorted()
	if len(dates) == 0 {
		return 0
	}

	best, run := 1, 1
	prev, _ := time.Parse(DateLayout, dates[0])
	for _, d := range dates[1:] {
		cur, _ := time.Parse(DateLayout, d)
		if cur.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = cur
	}
	return best
}

// Cell is one day of the completion heatmap. Weekday follows Go's numbering
// (Sunday = 0).
type Cell struct {
	Date    string `json:"date"`
	Done    bool   `json:"done"`
	Weekday int    `json:"weekday"`
}

// Heatmap returns one cell per day of the trailing HeatmapDays window ending
// today inclusive, in chronological order.
func Heatmap(s Set, today string) []Cell {
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return nil
	}

	cells := make([]Cell, 0, HeatmapDays)
	day := end.AddDate(0, 0, -(HeatmapDays - 1))
	for i := 0; i < HeatmapDays; i++ {
		date := day.Format(DateLayout)
		cells = append(cells, Cell{
			Date:    date,
			Done:    s.Contains(date),
			Weekday: int(day.Weekday()),
		})
		day = day.AddDate(0, 0, 1)
	}
	return cells
}

// LeadingPad returns the number of empty cells needed before the heatmap's
// first day so its columns align to weeks starting on weekStart.
func LeadingPad(today string, weekStart time.Weekday) int {
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}
	first := end.AddDate(0, 0, -(HeatmapDays - 1))
	return (int(first.Weekday()) - int(weekStart) + 7) % 7
}

// CompletionRate returns the percentage of days in the trailing window of
// windowDays (ending today inclusive) that have a completion, rounded to the
// nearest integer. A zero or negative window yields 0.
func CompletionRate(s Set, today string, windowDays int) int {
	if windowDays <= 0 {
		return 0
	}
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}

	completed := 0
	day := end.AddDate(0, 0, -(windowDays - 1))
	for i := 0; i < windowDays; i++ {
		if s.Contains(day.Format(DateLayout)) {
			completed++
		}
		day = day.AddDate(0, 0, 1)
	}
	return roundRate(completed, windowDays)
}

// WeekPoint is one calendar week of the completion trend across a set of
// habits. Possible counts one slot per habit per elapsed day of the week;
// days after today in the current week are excluded.
type WeekPoint struct {
	WeekStart string `json:"week_start"`
	Completed int    `json:"completed"`
	Possible  int    `json:"possible"`
	Rate      int    `json:"rate"`
}

// WeeklySeries returns the SeriesWeeks most recent calendar weeks, oldest
// first, rating completion across all given habit sets. The week boundary is
// the viewer's configured week-start day.
func WeeklySeries(habitSets []Set, today string, weekStart time.Weekday) []WeekPoint {
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return nil
	}

	back := (int(end.Weekday()) - int(weekStart) + 7) % 7
	currentWeek := end.AddDate(0, 0, -back)

	series := make([]WeekPoint, 0, SeriesWeeks)
	for w := SeriesWeeks - 1; w >= 0; w-- {
		start := currentWeek.AddDate(0, 0, -7*w)
		completed, possible := 0, 0
		for i := 0; i < 7; i++ {
			day := start.AddDate(0, 0, i)
			if day.After(end) {
				break
			}
			date := day.Format(DateLayout)
			for _, s := range habitSets {
				possible++
				if s.Contains(date) {
					completed++
				}
			}
		}
		series = append(series, WeekPoint{
			WeekStart: start.Format(DateLayout),
			Completed: completed,
			Possible:  possible,
			Rate:      roundRate(completed, possible),
		})
	}
	return series
}

// ParseWeekStart maps a week-start preference to a weekday. Unknown or empty
// values default to Monday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

func roundRate(completed, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(possible)))
}
