package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"mealplan/internal/database"
	"mealplan/internal/models"
)

// MealRepository handles database operations for meals with their steps
// and ingredients
type MealRepository struct {
	db *database.DB
}

// NewMealRepository creates a new meal repository
func NewMealRepository(db *database.DB) *MealRepository {
	return &MealRepository{db: db}
}

// CreateMeal inserts a meal with its steps and ingredients in one
// transaction. Step positions are assigned 1..n in the given order.
func (r *MealRepository) CreateMeal(familyID, createdBy int64, date, title string, portions int,
	steps []models.SuggestionStep, ingredients []models.SuggestionIngredient) (int64, error) {

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO meals (family_id, date, title, portions, created_by) VALUES (?, ?, ?, ?, ?)"
	mealID, err := tx.ExecReturningID(query, familyID, date, title, portions, createdBy)
	if err != nil {
		return 0, fmt.Errorf("failed to create meal: %w", err)
	}

	for i, step := range steps {
		query := "INSERT INTO steps (meal_id, position, instructions, estimated_minutes) VALUES (?, ?, ?, ?)"
		if _, err := tx.Exec(query, mealID, i+1, step.Instructions, step.EstimatedMinutes); err != nil {
			return 0, fmt.Errorf("failed to create step: %w", err)
		}
	}

	for _, ingredient := range ingredients {
		query := `INSERT INTO ingredients (meal_id, name, amount_per_portion, unit, in_stock, estimated_kcal)
			VALUES (?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query, mealID, ingredient.Name, ingredient.AmountPerPortion,
			ingredient.Unit, ingredient.InStock, ingredient.EstimatedKcal)
		if err != nil {
			return 0, fmt.Errorf("failed to create ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return mealID, nil
}

// GetMealsForDates retrieves all meals of a family on the given dates,
// each with its steps sorted by position and its ingredients.
func (r *MealRepository) GetMealsForDates(familyID int64, dates []string) ([]models.MealWithDetails, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(dates)), ", ")
	query := `
		SELECT id, family_id, date, title, portions, created_by, created_at
		FROM meals
		WHERE family_id = ? AND date IN (` + placeholders + `)
		ORDER BY date ASC, id ASC
	`

	args := make([]interface{}, 0, len(dates)+1)
	args = append(args, familyID)
	for _, date := range dates {
		args = append(args, date)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []models.MealWithDetails
	for rows.Next() {
		var meal models.Meal
		if err := rows.Scan(&meal.ID, &meal.FamilyID, &meal.Date, &meal.Title,
			&meal.Portions, &meal.CreatedBy, &meal.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, models.MealWithDetails{Meal: meal})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}

	for i := range meals {
		if err := r.loadDetails(&meals[i]); err != nil {
			return nil, err
		}
	}

	return meals, nil
}

// GetMealByID retrieves a single meal with steps and ingredients,
// or nil when it does not exist.
func (r *MealRepository) GetMealByID(mealID int64) (*models.MealWithDetails, error) {
	query := `
		SELECT id, family_id, date, title, portions, created_by, created_at
		FROM meals WHERE id = ?
	`
	var meal models.Meal
	err := r.db.QueryRow(query, mealID).Scan(&meal.ID, &meal.FamilyID, &meal.Date,
		&meal.Title, &meal.Portions, &meal.CreatedBy, &meal.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}

	details := &models.MealWithDetails{Meal: meal}
	if err := r.loadDetails(details); err != nil {
		return nil, err
	}
	return details, nil
}

// loadDetails fills in the steps (sorted by position) and ingredients of a meal
func (r *MealRepository) loadDetails(meal *models.MealWithDetails) error {
	stepRows, err := r.db.Query(
		"SELECT id, meal_id, position, instructions, estimated_minutes FROM steps WHERE meal_id = ?",
		meal.ID)
	if err != nil {
		return fmt.Errorf("failed to query steps: %w", err)
	}
	defer stepRows.Close()

	meal.Steps = []models.Step{}
	for stepRows.Next() {
		var step models.Step
		var estimatedMinutes sql.NullInt64
		if err := stepRows.Scan(&step.ID, &step.MealID, &step.Position,
			&step.Instructions, &estimatedMinutes); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		if estimatedMinutes.Valid {
			minutes := int(estimatedMinutes.Int64)
			step.EstimatedMinutes = &minutes
		}
		meal.Steps = append(meal.Steps, step)
	}
	if err := stepRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate steps: %w", err)
	}
	sort.Slice(meal.Steps, func(i, j int) bool {
		return meal.Steps[i].Position < meal.Steps[j].Position
	})

	ingredientRows, err := r.db.Query(
		"SELECT id, meal_id, name, amount_per_portion, unit, in_stock, estimated_kcal FROM ingredients WHERE meal_id = ?",
		meal.ID)
	if err != nil {
		return fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer ingredientRows.Close()

	meal.Ingredients = []models.Ingredient{}
	for ingredientRows.Next() {
		var ingredient models.Ingredient
		var estimatedKcal sql.NullFloat64
		if err := ingredientRows.Scan(&ingredient.ID, &ingredient.MealID, &ingredient.Name,
			&ingredient.AmountPerPortion, &ingredient.Unit, &ingredient.InStock, &estimatedKcal); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		if estimatedKcal.Valid {
			ingredient.EstimatedKcal = &estimatedKcal.Float64
		}
		meal.Ingredients = append(meal.Ingredients, ingredient)
	}
	return ingredientRows.Err()
}

// UpdateMeal updates the provided fields of a meal
func (r *MealRepository) UpdateMeal(mealID int64, title *string, portions *int) error {
	if title != nil {
		if _, err := r.db.Exec("UPDATE meals SET title = ? WHERE id = ?", *title, mealID); err != nil {
			return fmt.Errorf("failed to update title: %w", err)
		}
	}
	if portions != nil {
		if _, err := r.db.Exec("UPDATE meals SET portions = ? WHERE id = ?", *portions, mealID); err != nil {
			return fmt.Errorf("failed to update portions: %w", err)
		}
	}
	return nil
}

// DeleteMeal removes a meal and all of its steps and ingredients. The
// deletes run explicitly in one transaction so no orphans remain even
// without foreign key enforcement.
func (r *MealRepository) DeleteMeal(mealID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM steps WHERE meal_id = ?", mealID); err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM ingredients WHERE meal_id = ?", mealID); err != nil {
		return fmt.Errorf("failed to delete ingredients: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM meals WHERE id = ?", mealID); err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRecentMeals returns the most recent meals of a family with date on
// or before the given date, newest first, limited to count. YYYY-MM-DD
// strings compare lexicographically in calendar order.
func (r *MealRepository) GetRecentMeals(familyID int64, beforeDate string, count int) ([]models.RecentMeal, error) {
	if count <= 0 {
		return nil, nil
	}

	query := `
		SELECT title, date FROM meals
		WHERE family_id = ? AND date <= ?
		ORDER BY date DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, familyID, beforeDate, count)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent meals: %w", err)
	}
	defer rows.Close()

	var meals []models.RecentMeal
	for rows.Next() {
		var meal models.RecentMeal
		if err := rows.Scan(&meal.Title, &meal.Date); err != nil {
			return nil, fmt.Errorf("failed to scan recent meal: %w", err)
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

// GetIngredient retrieves an ingredient together with its meal's family
// for authorization checks, or nil when it does not exist.
func (r *MealRepository) GetIngredient(ingredientID int64) (*models.Ingredient, int64, error) {
	query := `
		SELECT i.id, i.meal_id, i.name, i.amount_per_portion, i.unit, i.in_stock, i.estimated_kcal, m.family_id
		FROM ingredients i
		INNER JOIN meals m ON i.meal_id = m.id
		WHERE i.id = ?
	`
	var ingredient models.Ingredient
	var estimatedKcal sql.NullFloat64
	var familyID int64
	err := r.db.QueryRow(query, ingredientID).Scan(&ingredient.ID, &ingredient.MealID,
		&ingredient.Name, &ingredient.AmountPerPortion, &ingredient.Unit,
		&ingredient.InStock, &estimatedKcal, &familyID)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get ingredient: %w", err)
	}
	if estimatedKcal.Valid {
		ingredient.EstimatedKcal = &estimatedKcal.Float64
	}
	return &ingredient, familyID, nil
}

// UpdateIngredientStock toggles the in-stock flag of an ingredient
func (r *MealRepository) UpdateIngredientStock(ingredientID int64, inStock bool) error {
	if _, err := r.db.Exec("UPDATE ingredients SET in_stock = ? WHERE id = ?", inStock, ingredientID); err != nil {
		return fmt.Errorf("failed to update ingredient stock: %w", err)
	}
	return nil
}

// GetShoppingList aggregates the out-of-stock ingredients of a family's
// meals on the given dates, scaled by each meal's portion count.
func (r *MealRepository) GetShoppingList(familyID int64, dates []string) ([]models.ShoppingListItem, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(dates)), ", ")
	query := `
		SELECT i.name, i.unit, SUM(i.amount_per_portion * m.portions)
		FROM ingredients i
		INNER JOIN meals m ON i.meal_id = m.id
		WHERE m.family_id = ? AND m.date IN (` + placeholders + `) AND i.in_stock = ?
		GROUP BY i.name, i.unit
		ORDER BY i.name ASC
	`

	args := make([]interface{}, 0, len(dates)+2)
	args = append(args, familyID)
	for _, date := range dates {
		args = append(args, date)
	}
	args = append(args, false)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping list: %w", err)
	}
	defer rows.Close()

	var items []models.ShoppingListItem
	for rows.Next() {
		var item models.ShoppingListItem
		if err := rows.Scan(&item.Name, &item.Unit, &item.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
