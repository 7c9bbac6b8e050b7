package handlers

import (
	"net/http"
	"strconv"

	"mealplan/internal/models"
	"mealplan/internal/service"
)

// SuggestionHandler handles suggestion generation and the audit trail
type SuggestionHandler struct {
	suggestionService *service.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionService *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// Generate handles POST /api/suggestions
func (h *SuggestionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user.FamilyID == nil {
		respondServiceError(w, service.ErrNoFamily)
		return
	}

	var req service.SuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode suggestion request", err)
		return
	}
	req.FamilyID = *user.FamilyID

	suggestion, err := h.suggestionService.Generate(r.Context(), user.ID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestion)
}

// Logs handles GET /api/suggestions/logs?limit=50
func (h *SuggestionHandler) Logs(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user.FamilyID == nil {
		respondServiceError(w, service.ErrNoFamily)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Ungültiges Limit", "", nil)
			return
		}
		limit = parsed
	}

	logs, err := h.suggestionService.ListLogs(user.ID, *user.FamilyID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if logs == nil {
		logs = []models.SuggestionLog{}
	}
	respondJSON(w, http.StatusOK, logs)
}
