package service

import (
	"fmt"

	"mealplan/internal/models"
)

// MealTypeLarge and MealTypeSmall are the two supported suggestion kinds
const (
	MealTypeLarge = "large"
	MealTypeSmall = "small"
)

// buildSuggestionPrompt assembles the recipe request sent to the model.
// Empty sections are omitted entirely so the model only sees constraints
// that actually apply.
func buildSuggestionPrompt(mealType string, familyPreferences []models.MemberPreferences, customHints, availableIngredients string, recentMeals []models.RecentMeal, portionCount int) string {
	mealTypeText := "einen kleinen Snack oder eine leichte Mahlzeit"
	if mealType == MealTypeLarge {
		mealTypeText = "eine große Mahlzeit mit Kochen (Hauptgericht)"
	}

	personWord := "Personen"
	if portionCount == 1 {
		personWord = "Person"
	}

	prompt := fmt.Sprintf("Erstelle einen Vorschlag für %s für %d %s.\n\n", mealTypeText, portionCount, personWord)

	if len(familyPreferences) > 0 {
		prompt += "FAMILIENPRÄFERENZEN:\n"
		for i, member := range familyPreferences {
			name := fmt.Sprintf("Person %d", i+1)
			if member.Name != nil && *member.Name != "" {
				name = *member.Name
			}
			prompt += name + ":\n"
			if member.Preferences != nil && *member.Preferences != "" {
				prompt += fmt.Sprintf("- Mag: %s\n", *member.Preferences)
			}
			if member.Dislikes != nil && *member.Dislikes != "" {
				prompt += fmt.Sprintf("- Mag nicht: %s\n", *member.Dislikes)
			}
			if member.Allergies != nil && *member.Allergies != "" {
				prompt += fmt.Sprintf("- Allergien: %s\n", *member.Allergies)
			}
			prompt += "\n"
		}
	}

	if customHints != "" {
		prompt += fmt.Sprintf("SPEZIELLE WÜNSCHE: %s\n\n", customHints)
	}

	if availableIngredients != "" {
		prompt += fmt.Sprintf("VERFÜGBARE ZUTATEN (sollten verwendet werden): %s\n\n", availableIngredients)
	}

	if len(recentMeals) > 0 {
		prompt += "KÜRZLICH GEKOCHT (bitte vermeiden):\n"
		for _, meal := range recentMeals {
			prompt += fmt.Sprintf("- %s (%s)\n", meal.Title, meal.Date)
		}
		prompt += "\n"
	}

	scaleHint := "Snacks"
	if mealType == MealTypeLarge {
		scaleHint = "großen Mahlzeiten"
	}

	prompt += `ANTWORTFORMAT:
Antworte mit einem gültigen JSON-Objekt in diesem exakten Format:

{
  "title": "Name des Gerichts",
  "steps": [
    {
      "instructions": "Detaillierte Anweisung für diesen Schritt",
      "estimatedMinutes": 15
    }
  ],
  "ingredients": [
    {
      "name": "Zutat",
      "amountPerPortion": 200,
      "unit": "g",
      "estimatedKcal": 150
    }
  ]
}

WICHTIGE HINWEISE:
- Alle Mengen sind PRO PORTION angegeben
- estimatedMinutes ist optional, aber hilfreich für Zeitplanung
- estimatedKcal ist optional, aber hilfreich für Nährwertinfo
- Verwende realistische deutsche Zutaten und Einheiten (g, ml, Stück, TL, EL, etc.)
- Schritte sollen klar und verständlich sein
- Bei ` + scaleHint + ` entsprechend umfangreich/einfach gestalten`

	return prompt
}
