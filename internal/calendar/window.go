// Package calendar implements the view-model behind the scrollable meal
// timeline: a growable window of days, a per-date meal cache and the
// bookkeeping that decides which dates need fetching.
package calendar

import "time"

const (
	// initialRadius is the number of days materialized on each side of
	// today when a window is created.
	initialRadius = 100
	// extendStep is the number of days added per load-more activation.
	extendStep = 30
	// dateFormat is the wire format for calendar dates. Lexicographic
	// order equals calendar order.
	dateFormat = "2006-01-02"
)

// DayKind distinguishes real calendar days from the load-more sentinels
// at the ends of the window.
type DayKind int

const (
	KindDay DayKind = iota
	KindLoadPast
	KindLoadFuture
)

// Day is one entry of the materialized timeline. The descriptor fields
// are set only for KindDay entries.
type Day struct {
	Kind DayKind
	Date string
	// Weekday is the German short weekday name
	Weekday        string
	IsToday        bool
	IsCurrentMonth bool
}

// weekdayNames is indexed by time.Weekday (Sunday first)
var weekdayNames = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// Window is the materialized day range of the timeline. It only ever
// grows; days are never evicted.
type Window struct {
	today time.Time
	first time.Time
	last  time.Time
}

// NewWindow creates a window spanning initialRadius days on each side
// of the given day
func NewWindow(today time.Time) *Window {
	today = truncateDay(today)
	return &Window{
		today: today,
		first: today.AddDate(0, 0, -initialRadius),
		last:  today.AddDate(0, 0, initialRadius),
	}
}

// Today returns the window's reference date
func (w *Window) Today() string {
	return w.today.Format(dateFormat)
}

// Days returns the current timeline: a load-past sentinel, the
// materialized days in chronological order, and a load-future sentinel.
func (w *Window) Days() []Day {
	size := int(w.last.Sub(w.first).Hours()/24) + 1
	days := make([]Day, 0, size+2)
	days = append(days, Day{Kind: KindLoadPast})
	for d := w.first; !d.After(w.last); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{
			Kind:           KindDay,
			Date:           d.Format(dateFormat),
			Weekday:        weekdayNames[d.Weekday()],
			IsToday:        d.Equal(w.today),
			IsCurrentMonth: d.Month() == w.today.Month() && d.Year() == w.today.Year(),
		})
	}
	days = append(days, Day{Kind: KindLoadFuture})
	return days
}

// Contains reports whether the date lies inside the materialized range
func (w *Window) Contains(date string) bool {
	t, err := time.Parse(dateFormat, date)
	if err != nil {
		return false
	}
	return !t.Before(w.first) && !t.After(w.last)
}

// ExtendPast grows the window by extendStep days into the past and
// returns the newly materialized dates, oldest first.
func (w *Window) ExtendPast() []string {
	newFirst := w.first.AddDate(0, 0, -extendStep)
	dates := make([]string, 0, extendStep)
	for d := newFirst; d.Before(w.first); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateFormat))
	}
	w.first = newFirst
	return dates
}

// ExtendFuture grows the window by extendStep days into the future and
// returns the newly materialized dates, oldest first.
func (w *Window) ExtendFuture() []string {
	newLast := w.last.AddDate(0, 0, extendStep)
	dates := make([]string, 0, extendStep)
	for d := w.last.AddDate(0, 0, 1); !d.After(newLast); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateFormat))
	}
	w.last = newLast
	return dates
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateRange returns the dates from first through last inclusive.
// The bounds must be valid YYYY-MM-DD strings with first <= last.
func DateRange(first, last string) ([]string, error) {
	start, err := time.Parse(dateFormat, first)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(dateFormat, last)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateFormat))
	}
	return dates, nil
}
