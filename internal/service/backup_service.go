package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"mealplan/internal/database"
)

// BackupData represents the complete database backup structure.
// Sessions are ephemeral and not backed up.
type BackupData struct {
	Version        string                `json:"version"`
	ExportedAt     time.Time             `json:"exported_at"`
	DatabaseType   string                `json:"database_type"`
	Users          []UserBackup          `json:"users"`
	Families       []FamilyBackup        `json:"families"`
	Meals          []MealBackup          `json:"meals"`
	Steps          []StepBackup          `json:"steps"`
	Ingredients    []IngredientBackup    `json:"ingredients"`
	SuggestionLogs []SuggestionLogBackup `json:"suggestion_logs"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	FamilyID      *int64    `json:"family_id"`
	Preferences   string    `json:"preferences"`
	Dislikes      string    `json:"dislikes"`
	Allergies     string    `json:"allergies"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FamilyBackup represents a family record for backup. Invite codes are
// short-lived and deliberately not exported.
type FamilyBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MealBackup represents a meal record for backup
type MealBackup struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Portions  int       `json:"portions"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// StepBackup represents a preparation step for backup
type StepBackup struct {
	ID               int64  `json:"id"`
	MealID           int64  `json:"meal_id"`
	Position         int    `json:"position"`
	Instructions     string `json:"instructions"`
	EstimatedMinutes *int   `json:"estimated_minutes"`
}

// IngredientBackup represents an ingredient for backup
type IngredientBackup struct {
	ID               int64    `json:"id"`
	MealID           int64    `json:"meal_id"`
	Name             string   `json:"name"`
	AmountPerPortion float64  `json:"amount_per_portion"`
	Unit             string   `json:"unit"`
	InStock          bool     `json:"in_stock"`
	EstimatedKcal    *float64 `json:"estimated_kcal"`
}

// SuggestionLogBackup represents a suggestion audit record for backup.
// The serialized JSON columns are carried verbatim.
type SuggestionLogBackup struct {
	ID                    int64     `json:"id"`
	FamilyID              int64     `json:"family_id"`
	RequestedBy           int64     `json:"requested_by"`
	MealType              string    `json:"meal_type"`
	SelectedUserCount     int       `json:"selected_user_count"`
	ExcludeLastMealsCount int       `json:"exclude_last_meals_count"`
	CustomHints           string    `json:"custom_hints"`
	AvailableIngredients  string    `json:"available_ingredients"`
	FamilyPreferences     string    `json:"family_preferences"`
	RecentMeals           string    `json:"recent_meals"`
	GeneratedPrompt       string    `json:"generated_prompt"`
	RawResponse           string    `json:"raw_response"`
	ParsedSuggestion      string    `json:"parsed_suggestion"`
	Success               bool      `json:"success"`
	ErrorMessage          string    `json:"error_message"`
	CreatedAt             time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// GetDB returns the database connection for direct queries
func (s *BackupService) GetDB() *database.DB {
	return s.db
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		DatabaseType: "universal",
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportMeals(backup); err != nil {
		return fmt.Errorf("failed to export meals: %w", err)
	}
	if err := s.exportSteps(backup); err != nil {
		return fmt.Errorf("failed to export steps: %w", err)
	}
	if err := s.exportIngredients(backup); err != nil {
		return fmt.Errorf("failed to export ingredients: %w", err)
	}
	if err := s.exportSuggestionLogs(backup); err != nil {
		return fmt.Errorf("failed to export suggestion logs: %w", err)
	}

	log.Printf("Exported: %d users, %d families, %d meals, %d steps, %d ingredients, %d suggestion logs",
		len(backup.Users), len(backup.Families), len(backup.Meals),
		len(backup.Steps), len(backup.Ingredients), len(backup.SuggestionLogs))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader (for file uploads)
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importMeals(backup.Meals); err != nil {
		return fmt.Errorf("failed to import meals: %w", err)
	}
	if err := s.importSteps(backup.Steps); err != nil {
		return fmt.Errorf("failed to import steps: %w", err)
	}
	if err := s.importIngredients(backup.Ingredients); err != nil {
		return fmt.Errorf("failed to import ingredients: %w", err)
	}
	if err := s.importSuggestionLogs(backup.SuggestionLogs); err != nil {
		return fmt.Errorf("failed to import suggestion logs: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `SELECT id, COALESCE(email, ''), password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		family_id, COALESCE(preferences, ''), COALESCE(dislikes, ''), COALESCE(allergies, ''),
		created_at, updated_at FROM users ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var familyID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject,
			&familyID, &u.Preferences, &u.Dislikes, &u.Allergies, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		if familyID.Valid {
			u.FamilyID = &familyID.Int64
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	query := "SELECT id, name, created_at FROM families ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportMeals(backup *BackupData) error {
	query := "SELECT id, family_id, date, title, portions, created_by, created_at FROM meals ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MealBackup
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.Date, &m.Title, &m.Portions, &m.CreatedBy, &m.CreatedAt); err != nil {
			return err
		}
		backup.Meals = append(backup.Meals, m)
	}
	return rows.Err()
}

func (s *BackupService) exportSteps(backup *BackupData) error {
	query := "SELECT id, meal_id, position, instructions, estimated_minutes FROM steps ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st StepBackup
		var estimatedMinutes sql.NullInt64
		if err := rows.Scan(&st.ID, &st.MealID, &st.Position, &st.Instructions, &estimatedMinutes); err != nil {
			return err
		}
		if estimatedMinutes.Valid {
			minutes := int(estimatedMinutes.Int64)
			st.EstimatedMinutes = &minutes
		}
		backup.Steps = append(backup.Steps, st)
	}
	return rows.Err()
}

func (s *BackupService) exportIngredients(backup *BackupData) error {
	query := "SELECT id, meal_id, name, amount_per_portion, unit, in_stock, estimated_kcal FROM ingredients ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ing IngredientBackup
		var estimatedKcal sql.NullFloat64
		if err := rows.Scan(&ing.ID, &ing.MealID, &ing.Name, &ing.AmountPerPortion, &ing.Unit, &ing.InStock, &estimatedKcal); err != nil {
			return err
		}
		if estimatedKcal.Valid {
			ing.EstimatedKcal = &estimatedKcal.Float64
		}
		backup.Ingredients = append(backup.Ingredients, ing)
	}
	return rows.Err()
}

func (s *BackupService) exportSuggestionLogs(backup *BackupData) error {
	query := `SELECT id, family_id, requested_by, meal_type, selected_user_count, exclude_last_meals_count,
		COALESCE(custom_hints, ''), COALESCE(available_ingredients, ''),
		family_preferences, recent_meals, generated_prompt, raw_response, parsed_suggestion,
		success, COALESCE(error_message, ''), created_at FROM suggestion_logs ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sl SuggestionLogBackup
		if err := rows.Scan(&sl.ID, &sl.FamilyID, &sl.RequestedBy, &sl.MealType,
			&sl.SelectedUserCount, &sl.ExcludeLastMealsCount,
			&sl.CustomHints, &sl.AvailableIngredients,
			&sl.FamilyPreferences, &sl.RecentMeals, &sl.GeneratedPrompt,
			&sl.RawResponse, &sl.ParsedSuggestion,
			&sl.Success, &sl.ErrorMessage, &sl.CreatedAt); err != nil {
			return err
		}
		backup.SuggestionLogs = append(backup.SuggestionLogs, sl)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		var familyID interface{} = nil
		if u.FamilyID != nil {
			familyID = *u.FamilyID
		}
		query := `INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject,
			family_id, preferences, dislikes, allergies, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, u.ID, nullIfEmpty(u.Email), u.PasswordHash, u.Name,
			nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), familyID,
			nullIfEmpty(u.Preferences), nullIfEmpty(u.Dislikes), nullIfEmpty(u.Allergies),
			u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	log.Printf("Importing %d families...", len(families))
	for _, f := range families {
		query := "INSERT INTO families (id, name, created_at) VALUES (?, ?, ?)"
		if _, err := s.db.Exec(query, f.ID, f.Name, f.CreatedAt); err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMeals(meals []MealBackup) error {
	log.Printf("Importing %d meals...", len(meals))
	for _, m := range meals {
		query := "INSERT INTO meals (id, family_id, date, title, portions, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, m.ID, m.FamilyID, m.Date, m.Title, m.Portions, m.CreatedBy, m.CreatedAt); err != nil {
			return fmt.Errorf("failed to import meal %d: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSteps(steps []StepBackup) error {
	log.Printf("Importing %d steps...", len(steps))
	for _, st := range steps {
		var estimatedMinutes interface{} = nil
		if st.EstimatedMinutes != nil {
			estimatedMinutes = *st.EstimatedMinutes
		}
		query := "INSERT INTO steps (id, meal_id, position, instructions, estimated_minutes) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, st.ID, st.MealID, st.Position, st.Instructions, estimatedMinutes); err != nil {
			return fmt.Errorf("failed to import step %d: %w", st.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importIngredients(ingredients []IngredientBackup) error {
	log.Printf("Importing %d ingredients...", len(ingredients))
	for _, ing := range ingredients {
		var estimatedKcal interface{} = nil
		if ing.EstimatedKcal != nil {
			estimatedKcal = *ing.EstimatedKcal
		}
		query := "INSERT INTO ingredients (id, meal_id, name, amount_per_portion, unit, in_stock, estimated_kcal) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, ing.ID, ing.MealID, ing.Name, ing.AmountPerPortion, ing.Unit, ing.InStock, estimatedKcal); err != nil {
			return fmt.Errorf("failed to import ingredient %d: %w", ing.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSuggestionLogs(logs []SuggestionLogBackup) error {
	log.Printf("Importing %d suggestion logs...", len(logs))
	for _, sl := range logs {
		query := `INSERT INTO suggestion_logs (id, family_id, requested_by, meal_type,
			selected_user_count, exclude_last_meals_count, custom_hints, available_ingredients,
			family_preferences, recent_meals, generated_prompt, raw_response, parsed_suggestion,
			success, error_message, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, sl.ID, sl.FamilyID, sl.RequestedBy, sl.MealType,
			sl.SelectedUserCount, sl.ExcludeLastMealsCount,
			nullIfEmpty(sl.CustomHints), nullIfEmpty(sl.AvailableIngredients),
			sl.FamilyPreferences, sl.RecentMeals, sl.GeneratedPrompt,
			sl.RawResponse, sl.ParsedSuggestion,
			sl.Success, nullIfEmpty(sl.ErrorMessage), sl.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import suggestion log %d: %w", sl.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
