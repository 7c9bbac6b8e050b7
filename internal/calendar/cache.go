package calendar

import "mealplan/internal/models"

// MealCache maps dates to the meals planned on them. Fetch responses
// are merged into it rather than replacing it, so meals already on
// screen survive while neighbouring dates load.
type MealCache struct {
	mealsByDate map[string][]models.MealWithDetails
}

// NewMealCache creates an empty cache
func NewMealCache() *MealCache {
	return &MealCache{mealsByDate: make(map[string][]models.MealWithDetails)}
}

// Get returns the cached meals for a date. The second return reports
// whether the date has an entry; a loaded date with zero meals yields
// (nil, true) once Merge has run for it.
func (c *MealCache) Get(date string) ([]models.MealWithDetails, bool) {
	meals, ok := c.mealsByDate[date]
	return meals, ok
}

// Merge upserts meals into the cache keyed by date. A meal whose ID is
// already cached for its date is replaced in place, preserving order;
// unknown IDs are appended. Merging the same response twice is a no-op.
func (c *MealCache) Merge(meals []models.MealWithDetails) {
	for _, meal := range meals {
		existing := c.mealsByDate[meal.Date]
		replaced := false
		for i := range existing {
			if existing[i].ID == meal.ID {
				existing[i] = meal
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, meal)
		}
		c.mealsByDate[meal.Date] = existing
	}
}

// MarkEmpty records that a date was fetched and holds no meals, so Get
// distinguishes "loaded, empty" from "never fetched".
func (c *MealCache) MarkEmpty(date string) {
	if _, ok := c.mealsByDate[date]; !ok {
		c.mealsByDate[date] = nil
	}
}

// InvalidateAll drops every cached entry
func (c *MealCache) InvalidateAll() {
	c.mealsByDate = make(map[string][]models.MealWithDetails)
}

// Size returns the number of dates with a cache entry
func (c *MealCache) Size() int {
	return len(c.mealsByDate)
}
