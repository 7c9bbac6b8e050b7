package models

import "time"

// Meal is one planned meal on a family calendar. Dates are plain
// YYYY-MM-DD strings so lexicographic order equals calendar order.
type Meal struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"familyId"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Portions  int       `json:"portions"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Step is one preparation step of a meal. Position is 1-based and
// unique per meal; it defines the display order.
type Step struct {
	ID               int64  `json:"id"`
	MealID           int64  `json:"mealId"`
	Position         int    `json:"position"`
	Instructions     string `json:"instructions"`
	EstimatedMinutes *int   `json:"estimatedMinutes,omitempty"`
}

// Ingredient amounts are stored per single portion and scaled by the
// meal's portion count at render time.
type Ingredient struct {
	ID               int64    `json:"id"`
	MealID           int64    `json:"mealId"`
	Name             string   `json:"name"`
	AmountPerPortion float64  `json:"amountPerPortion"`
	Unit             string   `json:"unit"`
	InStock          bool     `json:"inStock"`
	EstimatedKcal    *float64 `json:"estimatedKcal,omitempty"`
}

// MealWithDetails combines a meal with its steps (sorted by position)
// and ingredients.
type MealWithDetails struct {
	Meal
	Steps       []Step       `json:"steps"`
	Ingredients []Ingredient `json:"ingredients"`
}

// ShoppingListItem is one aggregated out-of-stock ingredient across the
// requested dates, scaled by each meal's portions.
type ShoppingListItem struct {
	Name        string  `json:"name"`
	TotalAmount float64 `json:"totalAmount"`
	Unit        string  `json:"unit"`
}
