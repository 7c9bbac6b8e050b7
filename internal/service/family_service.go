package service

import (
	"context"
	"fmt"
	"time"

	"mealplan/internal/credentials"
	"mealplan/internal/models"
	"mealplan/internal/repository"
	"mealplan/internal/validation"
)

// InviteCodeValidity is how long a generated invite code stays valid
const InviteCodeValidity = time.Hour

// FamilyService handles family membership, invite codes and member
// preference lookups
type FamilyService struct {
	familyRepo   *repository.FamilyRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, userRepo *repository.UserRepository, emailService *EmailService) *FamilyService {
	return &FamilyService{
		familyRepo:   familyRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// CreateFamily creates a new family with the user as its first member
func (s *FamilyService) CreateFamily(userID int64, name string) (*models.Family, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	family, err := s.familyRepo.CreateFamily(name, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return family, nil
}

// GetCurrentUser returns the user together with their family, if any
func (s *FamilyService) GetCurrentUser(userID int64) (*models.User, *models.Family, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	var family *models.Family
	if user.FamilyID != nil {
		family, err = s.familyRepo.GetFamilyByID(*user.FamilyID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get family: %w", err)
		}
	}

	return user, family, nil
}

// VerifyFamilyAccess checks that the user is a member of the family
func (s *FamilyService) VerifyFamilyAccess(userID, familyID int64) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to verify family access: %w", err)
	}
	if user == nil || user.FamilyID == nil || *user.FamilyID != familyID {
		return ErrNotFamilyMember
	}
	return nil
}

// GenerateInviteCode creates a fresh invite code for the user's family,
// replacing any previous one. The code expires after InviteCodeValidity.
func (s *FamilyService) GenerateInviteCode(userID int64) (string, time.Time, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.FamilyID == nil {
		return "", time.Time{}, ErrNoFamily
	}

	code, err := credentials.GenerateInviteCode()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate invite code: %w", err)
	}

	expiresAt := time.Now().Add(InviteCodeValidity)
	if err := s.familyRepo.SetInviteCode(*user.FamilyID, code, expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store invite code: %w", err)
	}

	return code, expiresAt, nil
}

// JoinFamily admits the user to the family whose current invite code
// matches. The user must not belong to a family yet; a stored but
// expired code is rejected with an expiry-specific error.
func (s *FamilyService) JoinFamily(userID int64, inviteCode string) (*models.Family, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FamilyID != nil {
		return nil, ErrAlreadyInFamily
	}

	family, err := s.familyRepo.GetFamilyByInviteCode(inviteCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if family == nil {
		return nil, ErrInvalidInviteCode
	}

	if !family.HasValidInviteCode(time.Now()) {
		return nil, ErrInviteCodeExpired
	}

	if err := s.userRepo.SetFamily(userID, &family.ID); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}

	return family, nil
}

// LeaveFamily removes the user from their current family
func (s *FamilyService) LeaveFamily(userID int64) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.FamilyID == nil {
		return ErrNoFamily
	}

	if err := s.userRepo.SetFamily(userID, nil); err != nil {
		return fmt.Errorf("failed to leave family: %w", err)
	}
	return nil
}

// SendInviteEmail mails the family's current invite code to the given
// address. The family must have a valid (unexpired) code.
func (s *FamilyService) SendInviteEmail(ctx context.Context, userID int64, toEmail string) error {
	if err := validation.ValidateEmail(toEmail); err != nil {
		return err
	}

	user, family, err := s.GetCurrentUser(userID)
	if err != nil {
		return err
	}
	if family == nil {
		return ErrNoFamily
	}
	if !family.HasValidInviteCode(time.Now()) {
		return ErrInviteCodeExpired
	}

	return s.emailService.SendInviteCode(ctx, toEmail, user.Name, family.Name, *family.InviteCode, *family.InviteCodeExpiresAt)
}

// GetFamilyPreferences returns the preference fields of every family
// member, authorization-scoped to members of the same family.
func (s *FamilyService) GetFamilyPreferences(userID, familyID int64) ([]models.MemberPreferences, error) {
	if err := s.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, err
	}

	members, err := s.userRepo.GetFamilyMembers(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}

	preferences := make([]models.MemberPreferences, 0, len(members))
	for _, member := range members {
		var name *string
		if member.Name != "" {
			n := member.Name
			name = &n
		}
		preferences = append(preferences, models.MemberPreferences{
			UserID:      member.ID,
			Name:        name,
			Preferences: member.Preferences,
			Dislikes:    member.Dislikes,
			Allergies:   member.Allergies,
		})
	}

	return preferences, nil
}

// GetPreferences returns the user's own preference fields
func (s *FamilyService) GetPreferences(userID int64) (*models.MemberPreferences, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &models.MemberPreferences{
		UserID:      user.ID,
		Preferences: user.Preferences,
		Dislikes:    user.Dislikes,
		Allergies:   user.Allergies,
	}, nil
}

// UpdatePreferences updates only the provided preference fields of the user
func (s *FamilyService) UpdatePreferences(userID int64, preferences, dislikes, allergies *string) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.UpdatePreferences(userID, preferences, dislikes, allergies); err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}
