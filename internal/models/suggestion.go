package models

import "time"

// SuggestionStep mirrors Step for machine-generated proposals that are
// not yet persisted as meals.
type SuggestionStep struct {
	Instructions     string `json:"instructions"`
	EstimatedMinutes *int   `json:"estimatedMinutes,omitempty"`
}

// SuggestionIngredient mirrors Ingredient, amounts per single portion.
type SuggestionIngredient struct {
	Name             string   `json:"name"`
	AmountPerPortion float64  `json:"amountPerPortion"`
	Unit             string   `json:"unit"`
	InStock          bool     `json:"inStock"`
	EstimatedKcal    *float64 `json:"estimatedKcal,omitempty"`
}

// Suggestion is a structured, machine-generated meal proposal.
type Suggestion struct {
	Title       string                 `json:"title"`
	Portions    int                    `json:"portions"`
	Steps       []SuggestionStep       `json:"steps"`
	Ingredients []SuggestionIngredient `json:"ingredients"`
}

// RecentMeal is a title/date pair listed in the prompt as "avoid repeating".
type RecentMeal struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// SuggestionLog is the immutable audit record of one generation attempt.
// It is written exactly once per attempt, success or failure, and never
// mutated or deleted.
type SuggestionLog struct {
	ID                    int64               `json:"id"`
	FamilyID              int64               `json:"familyId"`
	RequestedBy           int64               `json:"requestedBy"`
	MealType              string              `json:"mealType"`
	SelectedUserCount     int                 `json:"selectedUserCount"`
	ExcludeLastMealsCount int                 `json:"excludeLastMealsCount"`
	CustomHints           *string             `json:"customHints,omitempty"`
	AvailableIngredients  *string             `json:"availableIngredients,omitempty"`
	FamilyPreferences     []MemberPreferences `json:"familyPreferences"`
	RecentMeals           []RecentMeal        `json:"recentMeals"`
	GeneratedPrompt       string              `json:"generatedPrompt"`
	RawResponse           string              `json:"rawResponse"`
	ParsedSuggestion      Suggestion          `json:"parsedSuggestion"`
	Success               bool                `json:"success"`
	ErrorMessage          *string             `json:"errorMessage,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
}
