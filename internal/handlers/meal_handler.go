package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"mealplan/internal/models"
	"mealplan/internal/service"
)

// MealHandler handles meal CRUD, ingredient stock and the shopping list
type MealHandler struct {
	mealService *service.MealService
}

// NewMealHandler creates a new meal handler
func NewMealHandler(mealService *service.MealService) *MealHandler {
	return &MealHandler{mealService: mealService}
}

type createMealRequest struct {
	Date        string                        `json:"date"`
	Title       string                        `json:"title"`
	Portions    int                           `json:"portions"`
	Steps       []models.SuggestionStep       `json:"steps"`
	Ingredients []models.SuggestionIngredient `json:"ingredients"`
}

type updateMealRequest struct {
	Title    *string `json:"title"`
	Portions *int    `json:"portions"`
}

type stockRequest struct {
	InStock bool `json:"inStock"`
}

// Create handles POST /api/meals
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user.FamilyID == nil {
		respondServiceError(w, service.ErrNoFamily)
		return
	}

	var req createMealRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode create meal request", err)
		return
	}

	meal, err := h.mealService.CreateMeal(user.ID, *user.FamilyID, req.Date, req.Title,
		req.Portions, req.Steps, req.Ingredients)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, meal)
}

// ListByDates handles GET /api/meals?dates=2025-01-01,2025-01-02
func (h *MealHandler) ListByDates(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user.FamilyID == nil {
		respondServiceError(w, service.ErrNoFamily)
		return
	}

	dates := splitDates(r.URL.Query().Get("dates"))
	if len(dates) == 0 {
		respondWithError(w, http.StatusBadRequest, "Mindestens ein Datum angeben", "", nil)
		return
	}

	meals, err := h.mealService.GetMealsForDates(user.ID, *user.FamilyID, dates)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if meals == nil {
		meals = []models.MealWithDetails{}
	}
	respondJSON(w, http.StatusOK, meals)
}

// Get handles GET /api/meals/{id}
func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	mealID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Mahlzeiten-ID", "", nil)
		return
	}

	meal, err := h.mealService.GetMeal(user.ID, mealID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meal)
}

// Update handles PATCH /api/meals/{id}
func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	mealID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Mahlzeiten-ID", "", nil)
		return
	}

	var req updateMealRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode update meal request", err)
		return
	}

	meal, err := h.mealService.UpdateMeal(user.ID, mealID, req.Title, req.Portions)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meal)
}

// Delete handles DELETE /api/meals/{id}
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	mealID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Mahlzeiten-ID", "", nil)
		return
	}

	if err := h.mealService.DeleteMeal(user.ID, mealID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ToggleStock handles PATCH /api/ingredients/{id}/stock
func (h *MealHandler) ToggleStock(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	ingredientID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Zutaten-ID", "", nil)
		return
	}

	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode stock request", err)
		return
	}

	if err := h.mealService.ToggleIngredientStock(user.ID, ingredientID, req.InStock); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ShoppingList handles GET /api/shopping-list?dates=...
func (h *MealHandler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user.FamilyID == nil {
		respondServiceError(w, service.ErrNoFamily)
		return
	}

	dates := splitDates(r.URL.Query().Get("dates"))
	if len(dates) == 0 {
		respondWithError(w, http.StatusBadRequest, "Mindestens ein Datum angeben", "", nil)
		return
	}

	items, err := h.mealService.GetShoppingList(user.ID, *user.FamilyID, dates)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if items == nil {
		items = []models.ShoppingListItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// splitDates parses a comma-separated date list, dropping empty entries
func splitDates(raw string) []string {
	var dates []string
	for _, date := range strings.Split(raw, ",") {
		date = strings.TrimSpace(date)
		if date != "" {
			dates = append(dates, date)
		}
	}
	return dates
}

// pathID parses a numeric path value from the route pattern
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
