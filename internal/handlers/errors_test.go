package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mealplan/internal/service"
	"mealplan/internal/validation"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body.Error
}

func TestRespondWithError(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, http.StatusTeapot, "Teekanne", "", nil)

	if recorder.Code != http.StatusTeapot {
		t.Fatalf("Status = %d, want 418", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if msg := decodeError(t, recorder); msg != "Teekanne" {
		t.Errorf("Error = %q, want Teekanne", msg)
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Validation", validation.Error{Field: "date", Message: "Datum muss im Format JJJJ-MM-TT sein"}, http.StatusBadRequest},
		{"InvalidCredentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"SessionExpired", service.ErrSessionExpired, http.StatusUnauthorized},
		{"NotFamilyMember", service.ErrNotFamilyMember, http.StatusForbidden},
		{"MealNotFound", service.ErrMealNotFound, http.StatusNotFound},
		{"IngredientNotFound", service.ErrIngredientNotFound, http.StatusNotFound},
		{"AlreadyInFamily", service.ErrAlreadyInFamily, http.StatusBadRequest},
		{"InvalidInviteCode", service.ErrInvalidInviteCode, http.StatusBadRequest},
		{"InviteCodeExpired", service.ErrInviteCodeExpired, http.StatusBadRequest},
		{"EmailTaken", service.ErrEmailTaken, http.StatusBadRequest},
		{"Upstream", &service.UpstreamError{Status: 500}, http.StatusBadGateway},
		{"UpstreamRateLimited", &service.UpstreamError{Status: 429}, http.StatusTooManyRequests},
		{"Parse", &service.ParseError{Reason: "invalid JSON"}, http.StatusUnprocessableEntity},
		{"Unknown", assertError("kaputt"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			respondServiceError(recorder, tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if msg := decodeError(t, recorder); msg == "" {
				t.Error("Expected a non-empty error message")
			}
		})
	}
}

func TestRespondServiceErrorHidesInternalDetails(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondServiceError(recorder, assertError("database exploded at row 7"))

	if msg := decodeError(t, recorder); msg != "Interner Serverfehler" {
		t.Errorf("Internal errors must not leak details, got %q", msg)
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
