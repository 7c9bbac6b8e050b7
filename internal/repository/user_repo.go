package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mealplan/internal/database"
	"mealplan/internal/models"
)

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user with email/password credentials
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	query := "INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

// CreateOAuthUser creates a new user from an OAuth identity. An empty
// email is stored as NULL so it cannot collide on the unique index.
func (r *UserRepository) CreateOAuthUser(provider, subject, email, name string) (*models.User, error) {
	var storedEmail interface{}
	if email != "" {
		storedEmail = email
	}
	query := "INSERT INTO users (email, password_hash, name, oauth_provider, oauth_subject) VALUES (?, '', ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, storedEmail, name, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	return &models.User{
		ID:            id,
		Email:         email,
		Name:          name,
		OAuthProvider: provider,
		OAuthSubject:  subject,
		CreatedAt:     time.Now(),
	}, nil
}

const userColumns = `id, email, password_hash, name, oauth_provider, oauth_subject,
	family_id, preferences, dislikes, allergies, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var email sql.NullString
	var familyID sql.NullInt64
	var preferences, dislikes, allergies sql.NullString

	err := row.Scan(
		&user.ID, &email, &user.PasswordHash, &user.Name,
		&user.OAuthProvider, &user.OAuthSubject,
		&familyID, &preferences, &dislikes, &allergies,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Email = email.String
	if familyID.Valid {
		user.FamilyID = &familyID.Int64
	}
	if preferences.Valid {
		user.Preferences = &preferences.String
	}
	if dislikes.Valid {
		user.Dislikes = &dislikes.String
	}
	if allergies.Valid {
		user.Allergies = &allergies.String
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(userID int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRow(query, userID))
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRow(query, email))
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE oauth_provider = ? AND oauth_subject = ?"
	return scanUser(r.db.QueryRow(query, provider, subject))
}

// SetFamily assigns or clears the user's family membership
func (r *UserRepository) SetFamily(userID int64, familyID *int64) error {
	query := "UPDATE users SET family_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, familyID, userID); err != nil {
		return fmt.Errorf("failed to set family: %w", err)
	}
	return nil
}

// UpdatePreferences updates only the provided preference fields.
// An empty string clears the stored value.
func (r *UserRepository) UpdatePreferences(userID int64, preferences, dislikes, allergies *string) error {
	set := func(column string, value *string) error {
		if value == nil {
			return nil
		}
		var stored interface{}
		if *value != "" {
			stored = *value
		}
		query := "UPDATE users SET " + column + " = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
		if _, err := r.db.Exec(query, stored, userID); err != nil {
			return fmt.Errorf("failed to update %s: %w", column, err)
		}
		return nil
	}

	if err := set("preferences", preferences); err != nil {
		return err
	}
	if err := set("dislikes", dislikes); err != nil {
		return err
	}
	return set("allergies", allergies)
}

// GetFamilyMembers retrieves all users belonging to a family
func (r *UserRepository) GetFamilyMembers(familyID int64) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE family_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user := models.User{}
		var email sql.NullString
		var memberFamilyID sql.NullInt64
		var preferences, dislikes, allergies sql.NullString

		if err := rows.Scan(
			&user.ID, &email, &user.PasswordHash, &user.Name,
			&user.OAuthProvider, &user.OAuthSubject,
			&memberFamilyID, &preferences, &dislikes, &allergies,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}

		user.Email = email.String
		if memberFamilyID.Valid {
			user.FamilyID = &memberFamilyID.Int64
		}
		if preferences.Valid {
			user.Preferences = &preferences.String
		}
		if dislikes.Valid {
			user.Dislikes = &dislikes.String
		}
		if allergies.Valid {
			user.Allergies = &allergies.String
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// CreateSession creates a new session for a user
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetSession retrieves a session by ID
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = ?"
	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry
func (r *UserRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
