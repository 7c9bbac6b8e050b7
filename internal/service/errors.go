package service

import (
	"errors"
	"fmt"
)

// User-facing errors. Messages are in the application's display language
// and rendered verbatim by the handlers.
var (
	ErrNotAuthenticated   = errors.New("Nicht authentifiziert")
	ErrNotFamilyMember    = errors.New("Nicht berechtigt für diese Familie")
	ErrNoFamily           = errors.New("Sie müssen Mitglied einer Familie sein")
	ErrAlreadyInFamily    = errors.New("Sie gehören bereits zu einer Familie. Sie können nur Mitglied einer Familie gleichzeitig sein.")
	ErrInvalidInviteCode  = errors.New("Dieser Einladungscode ist ungültig. Bitte überprüfen Sie den Code und versuchen Sie es erneut.")
	ErrInviteCodeExpired  = errors.New("Dieser Einladungscode ist abgelaufen. Bitten Sie ein Familienmitglied, einen neuen Code zu erstellen.")
	ErrFamilyNotFound     = errors.New("Familie nicht gefunden")
	ErrMealNotFound       = errors.New("Mahlzeit nicht gefunden")
	ErrIngredientNotFound = errors.New("Zutat nicht gefunden")
	ErrUserNotFound       = errors.New("Benutzer nicht gefunden")
	ErrEmailTaken         = errors.New("Diese E-Mail-Adresse wird bereits verwendet")
	ErrInvalidCredentials = errors.New("Ungültige E-Mail-Adresse oder ungültiges Passwort")
	ErrSessionNotFound    = errors.New("Sitzung nicht gefunden")
	ErrSessionExpired     = errors.New("Sitzung abgelaufen")
)

// UpstreamError reports a failed call to the external completion endpoint.
// Detail carries the upstream response body for diagnostics.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("OpenAI API Fehler: %d", e.Status)
	}
	return "Keine Antwort von OpenAI erhalten"
}

// ParseError reports an upstream reply that could not be turned into a
// structured suggestion.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "Konnte OpenAI Antwort nicht verarbeiten"
}
