package service

import (
	"errors"
	"testing"

	"mealplan/internal/models"
)

func TestParseSuggestion(t *testing.T) {
	validJSON := `{
		"title": "Gemüsepfanne",
		"steps": [{"instructions": "Gemüse schneiden", "estimatedMinutes": 10}],
		"ingredients": [{"name": "Paprika", "amountPerPortion": 150, "unit": "g"}]
	}`

	t.Run("PlainJSON", func(t *testing.T) {
		suggestion, err := parseSuggestion(validJSON)
		if err != nil {
			t.Fatalf("parseSuggestion() error = %v", err)
		}
		if suggestion.Title != "Gemüsepfanne" {
			t.Errorf("Title = %q, want Gemüsepfanne", suggestion.Title)
		}
		if len(suggestion.Steps) != 1 || suggestion.Steps[0].Instructions != "Gemüse schneiden" {
			t.Errorf("Unexpected steps: %+v", suggestion.Steps)
		}
		if len(suggestion.Ingredients) != 1 || suggestion.Ingredients[0].Unit != "g" {
			t.Errorf("Unexpected ingredients: %+v", suggestion.Ingredients)
		}
	})

	t.Run("JSONFence", func(t *testing.T) {
		suggestion, err := parseSuggestion("```json\n" + validJSON + "\n```")
		if err != nil {
			t.Fatalf("parseSuggestion() error = %v", err)
		}
		if suggestion.Title != "Gemüsepfanne" {
			t.Errorf("Title = %q, want Gemüsepfanne", suggestion.Title)
		}
	})

	t.Run("BareFence", func(t *testing.T) {
		suggestion, err := parseSuggestion("```\n" + validJSON + "\n```")
		if err != nil {
			t.Fatalf("parseSuggestion() error = %v", err)
		}
		if suggestion.Title != "Gemüsepfanne" {
			t.Errorf("Title = %q, want Gemüsepfanne", suggestion.Title)
		}
	})

	t.Run("SurroundingWhitespace", func(t *testing.T) {
		if _, err := parseSuggestion("\n\n  ```json\n" + validJSON + "\n```  \n"); err != nil {
			t.Fatalf("parseSuggestion() error = %v", err)
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := parseSuggestion("Hier ist dein Rezept: Gemüsepfanne")
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("parseSuggestion() error = %v, want *ParseError", err)
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		tests := []struct {
			name string
			raw  string
		}{
			{"NoTitle", `{"steps": [{"instructions": "x"}], "ingredients": [{"name": "y", "amountPerPortion": 1, "unit": "g"}]}`},
			{"NoSteps", `{"title": "x", "steps": [], "ingredients": [{"name": "y", "amountPerPortion": 1, "unit": "g"}]}`},
			{"NoIngredients", `{"title": "x", "steps": [{"instructions": "z"}], "ingredients": []}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := parseSuggestion(tt.raw)
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("parseSuggestion() error = %v, want *ParseError", err)
				}
			})
		}
	})
}

func TestReconcileStock(t *testing.T) {
	newSuggestion := func(names ...string) *models.Suggestion {
		s := &models.Suggestion{Title: "Test"}
		for _, name := range names {
			s.Ingredients = append(s.Ingredients, models.SuggestionIngredient{Name: name, InStock: true})
		}
		return s
	}

	t.Run("NoAvailabilityListClearsAll", func(t *testing.T) {
		s := newSuggestion("Tomaten", "Zwiebeln")
		reconcileStock(s, "")
		for _, ing := range s.Ingredients {
			if ing.InStock {
				t.Errorf("Ingredient %q should be out of stock without an availability list", ing.Name)
			}
		}
	})

	t.Run("SubstringMatchEitherDirection", func(t *testing.T) {
		s := newSuggestion("Tomaten", "Zwiebel", "Knoblauch")
		reconcileStock(s, "Tomate, Zwiebeln")

		// "Tomate" is contained in "Tomaten", "Zwiebel" in "Zwiebeln"
		if !s.Ingredients[0].InStock {
			t.Error("Tomaten should match availability entry Tomate")
		}
		if !s.Ingredients[1].InStock {
			t.Error("Zwiebel should match availability entry Zwiebeln")
		}
		if s.Ingredients[2].InStock {
			t.Error("Knoblauch should not match any availability entry")
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		s := newSuggestion("PAPRIKA")
		reconcileStock(s, "paprika")
		if !s.Ingredients[0].InStock {
			t.Error("Matching should ignore case")
		}
	})

	t.Run("NewlineSeparatedList", func(t *testing.T) {
		s := newSuggestion("Reis", "Milch")
		reconcileStock(s, "Reis\nEier\nMilch")
		if !s.Ingredients[0].InStock || !s.Ingredients[1].InStock {
			t.Errorf("Newline separated availability list should match: %+v", s.Ingredients)
		}
	})

	t.Run("BlankEntriesIgnored", func(t *testing.T) {
		s := newSuggestion("Salz")
		reconcileStock(s, " , ,\n, ")
		if s.Ingredients[0].InStock {
			t.Error("Blank availability entries should not match anything")
		}
	})
}
