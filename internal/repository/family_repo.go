package repository

import (
	"database/sql"
	"fmt"
	"time"

	"mealplan/internal/database"
	"mealplan/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family and assigns the creator to it
func (r *FamilyRepository) CreateFamily(name string, creatorUserID int64) (*models.Family, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	familyID, err := tx.ExecReturningID("INSERT INTO families (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	query := "UPDATE users SET family_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(query, familyID, creatorUserID); err != nil {
		return nil, fmt.Errorf("failed to assign creator to family: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Family{
		ID:        familyID,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

func scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	var inviteCode sql.NullString
	var inviteCodeExpiresAt sql.NullTime

	err := row.Scan(
		&family.ID, &family.Name, &inviteCode, &inviteCodeExpiresAt,
		&family.CreatedAt, &family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan family: %w", err)
	}

	if inviteCode.Valid {
		family.InviteCode = &inviteCode.String
	}
	if inviteCodeExpiresAt.Valid {
		family.InviteCodeExpiresAt = &inviteCodeExpiresAt.Time
	}

	return family, nil
}

const familyColumns = "id, name, invite_code, invite_code_expires_at, created_at, updated_at"

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE id = ?"
	return scanFamily(r.db.QueryRow(query, familyID))
}

// GetFamilyByInviteCode retrieves a family by its current invite code.
// Expiry is not checked here; the service rejects expired codes.
func (r *FamilyRepository) GetFamilyByInviteCode(code string) (*models.Family, error) {
	query := "SELECT " + familyColumns + " FROM families WHERE invite_code = ?"
	return scanFamily(r.db.QueryRow(query, code))
}

// SetInviteCode stores a new invite code and its expiry, replacing any
// previous code so at most one is active per family.
func (r *FamilyRepository) SetInviteCode(familyID int64, code string, expiresAt time.Time) error {
	query := `
		UPDATE families
		SET invite_code = ?, invite_code_expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, code, expiresAt, familyID); err != nil {
		return fmt.Errorf("failed to set invite code: %w", err)
	}
	return nil
}
