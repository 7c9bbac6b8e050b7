package service

import (
	"strings"
	"testing"

	"mealplan/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func TestBuildSuggestionPrompt(t *testing.T) {
	t.Run("LargeMealWithPreferences", func(t *testing.T) {
		preferences := []models.MemberPreferences{
			{Name: strPtr("Anna"), Preferences: strPtr("Pasta")},
			{Name: strPtr("Ben"), Allergies: strPtr("Nüsse")},
		}

		prompt := buildSuggestionPrompt(MealTypeLarge, preferences, "", "", nil, 2)

		if !strings.HasPrefix(prompt, "Erstelle einen Vorschlag für eine große Mahlzeit mit Kochen (Hauptgericht) für 2 Personen.") {
			t.Errorf("Unexpected prompt opening: %q", prompt[:80])
		}
		if !strings.Contains(prompt, "FAMILIENPRÄFERENZEN:\nAnna:\n- Mag: Pasta\n") {
			t.Error("Prompt should list Anna's preferences")
		}
		if !strings.Contains(prompt, "Ben:\n- Allergien: Nüsse\n") {
			t.Error("Prompt should list Ben's allergies")
		}
		if strings.Contains(prompt, "Mag nicht") {
			t.Error("Empty dislike lines should be omitted")
		}
		if strings.Contains(prompt, "KÜRZLICH GEKOCHT") {
			t.Error("Avoid list should be omitted when no recent meals are given")
		}
		if !strings.Contains(prompt, "Bei großen Mahlzeiten entsprechend umfangreich/einfach gestalten") {
			t.Error("Large meals should get the large scale hint")
		}
	})

	t.Run("SmallMealSinglePerson", func(t *testing.T) {
		prompt := buildSuggestionPrompt(MealTypeSmall, nil, "", "", nil, 1)

		if !strings.HasPrefix(prompt, "Erstelle einen Vorschlag für einen kleinen Snack oder eine leichte Mahlzeit für 1 Person.") {
			t.Errorf("Unexpected prompt opening: %q", prompt[:80])
		}
		if strings.Contains(prompt, "FAMILIENPRÄFERENZEN") {
			t.Error("Preferences section should be omitted when empty")
		}
		if !strings.Contains(prompt, "Bei Snacks entsprechend umfangreich/einfach gestalten") {
			t.Error("Small meals should get the snack scale hint")
		}
	})

	t.Run("FallbackMemberNames", func(t *testing.T) {
		preferences := []models.MemberPreferences{
			{Preferences: strPtr("Reis")},
			{Name: strPtr(""), Dislikes: strPtr("Fisch")},
		}

		prompt := buildSuggestionPrompt(MealTypeLarge, preferences, "", "", nil, 2)

		if !strings.Contains(prompt, "Person 1:\n- Mag: Reis\n") {
			t.Error("Members without a name should fall back to Person 1")
		}
		if !strings.Contains(prompt, "Person 2:\n- Mag nicht: Fisch\n") {
			t.Error("Members with an empty name should fall back to Person 2")
		}
	})

	t.Run("HintsIngredientsAndRecentMeals", func(t *testing.T) {
		recentMeals := []models.RecentMeal{
			{Title: "Spaghetti Bolognese", Date: "2025-01-10"},
			{Title: "Kartoffelsuppe", Date: "2025-01-09"},
		}

		prompt := buildSuggestionPrompt(MealTypeLarge, nil, "schnell und vegetarisch", "Tomaten, Zwiebeln", recentMeals, 3)

		if !strings.Contains(prompt, "SPEZIELLE WÜNSCHE: schnell und vegetarisch\n") {
			t.Error("Custom hints should appear in the prompt")
		}
		if !strings.Contains(prompt, "VERFÜGBARE ZUTATEN (sollten verwendet werden): Tomaten, Zwiebeln\n") {
			t.Error("Available ingredients should appear in the prompt")
		}
		if !strings.Contains(prompt, "KÜRZLICH GEKOCHT (bitte vermeiden):\n- Spaghetti Bolognese (2025-01-10)\n- Kartoffelsuppe (2025-01-09)\n") {
			t.Error("Recent meals should be listed with their dates")
		}
	})

	t.Run("ResponseFormatAlwaysPresent", func(t *testing.T) {
		prompt := buildSuggestionPrompt(MealTypeSmall, nil, "", "", nil, 1)

		for _, fragment := range []string{
			"ANTWORTFORMAT:",
			`"amountPerPortion": 200`,
			"Alle Mengen sind PRO PORTION angegeben",
		} {
			if !strings.Contains(prompt, fragment) {
				t.Errorf("Prompt should contain %q", fragment)
			}
		}
	})
}
