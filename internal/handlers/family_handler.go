package handlers

import (
	"net/http"
	"time"

	"mealplan/internal/models"
	"mealplan/internal/service"
)

// FamilyHandler handles family membership, invite codes and preferences
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

type joinFamilyRequest struct {
	InviteCode string `json:"inviteCode"`
}

type inviteCodeResponse struct {
	InviteCode string    `json:"inviteCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type sendInviteRequest struct {
	Email string `json:"email"`
}

type updatePreferencesRequest struct {
	Preferences *string `json:"preferences"`
	Dislikes    *string `json:"dislikes"`
	Allergies   *string `json:"allergies"`
}

// Create handles POST /api/families
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req createFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode create family request", err)
		return
	}

	family, err := h.familyService.CreateFamily(user.ID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, family)
}

// GenerateInviteCode handles POST /api/families/invite-code
func (h *FamilyHandler) GenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	code, expiresAt, err := h.familyService.GenerateInviteCode(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inviteCodeResponse{InviteCode: code, ExpiresAt: expiresAt})
}

// Join handles POST /api/families/join
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req joinFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode join request", err)
		return
	}

	family, err := h.familyService.JoinFamily(user.ID, req.InviteCode)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// Leave handles POST /api/families/leave
func (h *FamilyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.familyService.LeaveFamily(user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SendInvite handles POST /api/families/invite-email
func (h *FamilyHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req sendInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode invite email request", err)
		return
	}

	if err := h.familyService.SendInviteEmail(r.Context(), user.ID, req.Email); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// FamilyPreferences handles GET /api/families/preferences
func (h *FamilyHandler) FamilyPreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user.FamilyID == nil {
		respondServiceError(w, service.ErrNoFamily)
		return
	}

	preferences, err := h.familyService.GetFamilyPreferences(user.ID, *user.FamilyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if preferences == nil {
		preferences = []models.MemberPreferences{}
	}
	respondJSON(w, http.StatusOK, preferences)
}

// GetPreferences handles GET /api/preferences
func (h *FamilyHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	preferences, err := h.familyService.GetPreferences(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preferences)
}

// UpdatePreferences handles PUT /api/preferences
func (h *FamilyHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req updatePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Ungültige Anfrage", "failed to decode preferences request", err)
		return
	}

	if err := h.familyService.UpdatePreferences(user.ID, req.Preferences, req.Dislikes, req.Allergies); err != nil {
		respondServiceError(w, err)
		return
	}

	preferences, err := h.familyService.GetPreferences(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preferences)
}
