package models

import "time"

// User represents an account in the system. A user belongs to at most
// one family; FamilyID is nil until they create or join one.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	FamilyID      *int64    `json:"familyId,omitempty"`
	Preferences   *string   `json:"preferences,omitempty"`
	Dislikes      *string   `json:"dislikes,omitempty"`
	Allergies     *string   `json:"allergies,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// MemberPreferences is the per-member slice of free-text food preferences
// handed to the suggestion prompt builder.
type MemberPreferences struct {
	UserID      int64   `json:"userId,omitempty"`
	Name        *string `json:"name"`
	Preferences *string `json:"preferences"`
	Dislikes    *string `json:"dislikes"`
	Allergies   *string `json:"allergies"`
}
