package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"mealplan/internal/database"
	"mealplan/internal/models"
)

// SuggestionLogRepository persists the immutable audit trail of
// suggestion-generation attempts. Rows are inserted once and never
// updated or deleted.
type SuggestionLogRepository struct {
	db *database.DB
}

// NewSuggestionLogRepository creates a new suggestion log repository
func NewSuggestionLogRepository(db *database.DB) *SuggestionLogRepository {
	return &SuggestionLogRepository{db: db}
}

// Insert writes one audit record and returns its ID
func (r *SuggestionLogRepository) Insert(log *models.SuggestionLog) (int64, error) {
	familyPreferences, err := json.Marshal(log.FamilyPreferences)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal family preferences: %w", err)
	}
	recentMeals, err := json.Marshal(log.RecentMeals)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal recent meals: %w", err)
	}
	parsedSuggestion, err := json.Marshal(log.ParsedSuggestion)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal parsed suggestion: %w", err)
	}

	query := `
		INSERT INTO suggestion_logs (
			family_id, requested_by, meal_type, selected_user_count, exclude_last_meals_count,
			custom_hints, available_ingredients, family_preferences, recent_meals,
			generated_prompt, raw_response, parsed_suggestion, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		log.FamilyID, log.RequestedBy, log.MealType, log.SelectedUserCount, log.ExcludeLastMealsCount,
		log.CustomHints, log.AvailableIngredients, string(familyPreferences), string(recentMeals),
		log.GeneratedPrompt, log.RawResponse, string(parsedSuggestion), log.Success, log.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert suggestion log: %w", err)
	}
	return id, nil
}

// ListByFamily returns a family's audit records, newest first
func (r *SuggestionLogRepository) ListByFamily(familyID int64, limit int) ([]models.SuggestionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, family_id, requested_by, meal_type, selected_user_count, exclude_last_meals_count,
			custom_hints, available_ingredients, family_preferences, recent_meals,
			generated_prompt, raw_response, parsed_suggestion, success, error_message, created_at
		FROM suggestion_logs
		WHERE family_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, familyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestion logs: %w", err)
	}
	defer rows.Close()

	var logs []models.SuggestionLog
	for rows.Next() {
		var log models.SuggestionLog
		var customHints, availableIngredients, errorMessage sql.NullString
		var familyPreferences, recentMeals, parsedSuggestion string

		if err := rows.Scan(
			&log.ID, &log.FamilyID, &log.RequestedBy, &log.MealType,
			&log.SelectedUserCount, &log.ExcludeLastMealsCount,
			&customHints, &availableIngredients, &familyPreferences, &recentMeals,
			&log.GeneratedPrompt, &log.RawResponse, &parsedSuggestion,
			&log.Success, &errorMessage, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion log: %w", err)
		}

		if customHints.Valid {
			log.CustomHints = &customHints.String
		}
		if availableIngredients.Valid {
			log.AvailableIngredients = &availableIngredients.String
		}
		if errorMessage.Valid {
			log.ErrorMessage = &errorMessage.String
		}
		if err := json.Unmarshal([]byte(familyPreferences), &log.FamilyPreferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal family preferences: %w", err)
		}
		if err := json.Unmarshal([]byte(recentMeals), &log.RecentMeals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recent meals: %w", err)
		}
		if err := json.Unmarshal([]byte(parsedSuggestion), &log.ParsedSuggestion); err != nil {
			return nil, fmt.Errorf("failed to unmarshal parsed suggestion: %w", err)
		}

		logs = append(logs, log)
	}
	return logs, rows.Err()
}
