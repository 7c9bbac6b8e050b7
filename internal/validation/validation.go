package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// dateRegex matches calendar dates in YYYY-MM-DD form
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Error represents a validation error on a single field
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Error{Field: "email", Message: "E-Mail-Adresse ist erforderlich"}
	}
	if !emailRegex.MatchString(email) {
		return Error{Field: "email", Message: "Ungültige E-Mail-Adresse"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return Error{Field: "password", Message: "Passwort ist erforderlich"}
	}
	if len(password) < 8 {
		return Error{Field: "password", Message: "Passwort muss mindestens 8 Zeichen lang sein"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Error{Field: "name", Message: "Name ist erforderlich"}
	}
	if len(name) < 2 {
		return Error{Field: "name", Message: "Name muss mindestens 2 Zeichen lang sein"}
	}
	return nil
}

// ValidateDate checks that a date string is in YYYY-MM-DD form
func ValidateDate(date string) error {
	if !dateRegex.MatchString(date) {
		return Error{Field: "date", Message: "Datum muss im Format JJJJ-MM-TT sein"}
	}
	return nil
}

// ValidatePortions checks the portion count invariant
func ValidatePortions(portions int) error {
	if portions < 1 {
		return Error{Field: "portions", Message: "Portionen müssen mindestens 1 sein"}
	}
	return nil
}
