package service

import (
	"mealplan/internal/models"
	"mealplan/internal/repository"
	"mealplan/internal/validation"
)

// MealService wraps meal persistence with family authorization checks
type MealService struct {
	mealRepo      *repository.MealRepository
	familyService *FamilyService
}

// NewMealService creates a new meal service
func NewMealService(mealRepo *repository.MealRepository, familyService *FamilyService) *MealService {
	return &MealService{
		mealRepo:      mealRepo,
		familyService: familyService,
	}
}

// CreateMeal stores a meal with its steps and ingredients on the given
// date. Step order follows the slice order.
func (s *MealService) CreateMeal(userID, familyID int64, date, title string, portions int,
	steps []models.SuggestionStep, ingredients []models.SuggestionIngredient) (*models.MealWithDetails, error) {

	if err := s.familyService.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, err
	}
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(title); err != nil {
		return nil, err
	}
	if err := validation.ValidatePortions(portions); err != nil {
		return nil, err
	}

	mealID, err := s.mealRepo.CreateMeal(familyID, userID, date, title, portions, steps, ingredients)
	if err != nil {
		return nil, err
	}

	return s.mealRepo.GetMealByID(mealID)
}

// GetMealsForDates returns the family's meals on the given dates with
// full details, ordered by date then creation.
func (s *MealService) GetMealsForDates(userID, familyID int64, dates []string) ([]models.MealWithDetails, error) {
	if err := s.familyService.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, err
	}
	for _, date := range dates {
		if err := validation.ValidateDate(date); err != nil {
			return nil, err
		}
	}
	return s.mealRepo.GetMealsForDates(familyID, dates)
}

// GetMeal returns a single meal the user is allowed to see
func (s *MealService) GetMeal(userID, mealID int64) (*models.MealWithDetails, error) {
	meal, err := s.mealRepo.GetMealByID(mealID)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, ErrMealNotFound
	}
	if err := s.familyService.VerifyFamilyAccess(userID, meal.FamilyID); err != nil {
		return nil, err
	}
	return meal, nil
}

// UpdateMeal changes title and/or portions of a meal; nil fields are
// left untouched
func (s *MealService) UpdateMeal(userID, mealID int64, title *string, portions *int) (*models.MealWithDetails, error) {
	meal, err := s.mealRepo.GetMealByID(mealID)
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, ErrMealNotFound
	}
	if err := s.familyService.VerifyFamilyAccess(userID, meal.FamilyID); err != nil {
		return nil, err
	}

	if title != nil {
		if err := validation.ValidateName(*title); err != nil {
			return nil, err
		}
	}
	if portions != nil {
		if err := validation.ValidatePortions(*portions); err != nil {
			return nil, err
		}
	}

	if err := s.mealRepo.UpdateMeal(mealID, title, portions); err != nil {
		return nil, err
	}
	return s.mealRepo.GetMealByID(mealID)
}

// DeleteMeal removes a meal together with its steps and ingredients
func (s *MealService) DeleteMeal(userID, mealID int64) error {
	meal, err := s.mealRepo.GetMealByID(mealID)
	if err != nil {
		return err
	}
	if meal == nil {
		return ErrMealNotFound
	}
	if err := s.familyService.VerifyFamilyAccess(userID, meal.FamilyID); err != nil {
		return err
	}
	return s.mealRepo.DeleteMeal(mealID)
}

// ToggleIngredientStock flips the in-stock flag of one ingredient
func (s *MealService) ToggleIngredientStock(userID, ingredientID int64, inStock bool) error {
	ingredient, familyID, err := s.mealRepo.GetIngredient(ingredientID)
	if err != nil {
		return err
	}
	if ingredient == nil {
		return ErrIngredientNotFound
	}
	if err := s.familyService.VerifyFamilyAccess(userID, familyID); err != nil {
		return err
	}
	return s.mealRepo.UpdateIngredientStock(ingredientID, inStock)
}

// GetShoppingList aggregates the out-of-stock ingredients of the
// family's meals on the given dates
func (s *MealService) GetShoppingList(userID, familyID int64, dates []string) ([]models.ShoppingListItem, error) {
	if err := s.familyService.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, err
	}
	for _, date := range dates {
		if err := validation.ValidateDate(date); err != nil {
			return nil, err
		}
	}
	return s.mealRepo.GetShoppingList(familyID, dates)
}
