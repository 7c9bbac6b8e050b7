package calendar

import (
	"sort"
	"time"

	"mealplan/internal/models"
)

const (
	// seedRadius is the number of days around today assumed visible
	// before any real visibility signal arrives.
	seedRadius = 7
	// jumpThreshold is the minimum fraction of today's element that
	// must intersect the viewport before the jump-to-today affordance
	// is hidden.
	jumpThreshold = 0.8
)

// Tracker coordinates the window, the visible-date set, the loaded-date
// set and the meal cache. It is driven from a single goroutine (the UI
// event flow); it does no locking of its own.
type Tracker struct {
	window  *Window
	cache   *MealCache
	visible map[string]struct{}
	loaded  map[string]struct{}
}

// NewTracker creates a tracker seeded with today +/- seedRadius days
// marked visible
func NewTracker(today time.Time) *Tracker {
	t := &Tracker{
		window:  NewWindow(today),
		cache:   NewMealCache(),
		visible: make(map[string]struct{}),
		loaded:  make(map[string]struct{}),
	}
	day := truncateDay(today)
	for offset := -seedRadius; offset <= seedRadius; offset++ {
		t.visible[day.AddDate(0, 0, offset).Format(dateFormat)] = struct{}{}
	}
	return t
}

// Window returns the day window backing the tracker
func (t *Tracker) Window() *Window {
	return t.window
}

// Cache returns the meal cache backing the tracker
func (t *Tracker) Cache() *MealCache {
	return t.cache
}

// SetVisible replaces the visible-date set with the given dates
func (t *Tracker) SetVisible(dates []string) {
	t.visible = make(map[string]struct{}, len(dates))
	for _, date := range dates {
		t.visible[date] = struct{}{}
	}
}

// AddVisible marks additional dates visible without dropping the
// current set
func (t *Tracker) AddVisible(dates []string) {
	for _, date := range dates {
		t.visible[date] = struct{}{}
	}
}

// DatesNeedingFetch returns the visible dates that have not been loaded
// yet, sorted chronologically. An empty result means the viewport is
// fully covered.
func (t *Tracker) DatesNeedingFetch() []string {
	var dates []string
	for date := range t.visible {
		if _, ok := t.loaded[date]; !ok {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

// ApplyFetch records a completed fetch: every requested date is marked
// loaded (zero-meal dates included, so they are not re-requested) and
// the returned meals are merged into the cache.
func (t *Tracker) ApplyFetch(requestedDates []string, meals []models.MealWithDetails) {
	for _, date := range requestedDates {
		t.loaded[date] = struct{}{}
		t.cache.MarkEmpty(date)
	}
	t.cache.Merge(meals)
}

// Invalidate drops the loaded-date set and the meal cache so the next
// DatesNeedingFetch call re-requests everything visible. Used after any
// meal mutation.
func (t *Tracker) Invalidate() {
	t.loaded = make(map[string]struct{})
	t.cache.InvalidateAll()
}

// MealsFor returns the cached meals for one date
func (t *Tracker) MealsFor(date string) []models.MealWithDetails {
	meals, _ := t.cache.Get(date)
	return meals
}

// IsLoaded reports whether a date has completed a fetch since the last
// invalidation
func (t *Tracker) IsLoaded(date string) bool {
	_, ok := t.loaded[date]
	return ok
}

// ExtendPast grows the window backwards and marks the new dates visible
func (t *Tracker) ExtendPast() []string {
	dates := t.window.ExtendPast()
	t.AddVisible(dates)
	return dates
}

// ExtendFuture grows the window forwards and marks the new dates visible
func (t *Tracker) ExtendFuture() []string {
	dates := t.window.ExtendFuture()
	t.AddVisible(dates)
	return dates
}

// NeedsJumpToToday reports whether the jump-to-today affordance should
// be shown, given the fraction of today's element currently
// intersecting the viewport.
func (t *Tracker) NeedsJumpToToday(todayVisibleRatio float64) bool {
	return todayVisibleRatio < jumpThreshold
}
