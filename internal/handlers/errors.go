package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mealplan/internal/service"
	"mealplan/internal/validation"
)

// errorResponse is the JSON body of every failed API call
type errorResponse struct {
	Error string `json:"error"`
}

// respondWithError writes the error body and logs the underlying cause
// when one is given
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondServiceError maps a service-layer error to its HTTP status and
// renders the error message verbatim
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.Error
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message})
		return
	}

	var upstreamErr *service.UpstreamError
	if errors.As(err, &upstreamErr) {
		status := http.StatusBadGateway
		if upstreamErr.Status == http.StatusTooManyRequests {
			status = http.StatusTooManyRequests
		}
		log.Printf("Completion endpoint failure: %v (detail: %s)", upstreamErr, upstreamErr.Detail)
		respondJSON(w, status, errorResponse{Error: upstreamErr.Error()})
		return
	}

	var parseErr *service.ParseError
	if errors.As(err, &parseErr) {
		log.Printf("Completion parse failure: %s", parseErr.Reason)
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: parseErr.Error()})
		return
	}

	status := http.StatusInternalServerError
	message := "Interner Serverfehler"

	switch {
	case errors.Is(err, service.ErrNotAuthenticated),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrNotFamilyMember):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrMealNotFound),
		errors.Is(err, service.ErrIngredientNotFound),
		errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrAlreadyInFamily),
		errors.Is(err, service.ErrInvalidInviteCode),
		errors.Is(err, service.ErrInviteCodeExpired),
		errors.Is(err, service.ErrNoFamily),
		errors.Is(err, service.ErrEmailTaken):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		log.Printf("Unhandled service error: %v", err)
	}

	respondJSON(w, status, errorResponse{Error: message})
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}
