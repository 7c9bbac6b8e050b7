package service

import (
	"path/filepath"
	"testing"
	"time"

	"mealplan/internal/database"
	"mealplan/internal/repository"
)

// testEnv wires the service layer against a throwaway SQLite database.
type testEnv struct {
	db            *database.DB
	userRepo      *repository.UserRepository
	familyRepo    *repository.FamilyRepository
	mealRepo      *repository.MealRepository
	logRepo       *repository.SuggestionLogRepository
	authService   *AuthService
	familyService *FamilyService
	mealService   *MealService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	mealRepo := repository.NewMealRepository(db)
	logRepo := repository.NewSuggestionLogRepository(db)

	emailService, err := NewEmailService("", "", "", "")
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}

	familyService := NewFamilyService(familyRepo, userRepo, emailService)

	return &testEnv{
		db:            db,
		userRepo:      userRepo,
		familyRepo:    familyRepo,
		mealRepo:      mealRepo,
		logRepo:       logRepo,
		authService:   NewAuthService(userRepo, 24*time.Hour),
		familyService: familyService,
		mealService:   NewMealService(mealRepo, familyService),
	}
}

// createUserInFamily creates a user and a family they belong to.
func (env *testEnv) createUserInFamily(t *testing.T, email, name, familyName string) (userID, familyID int64) {
	t.Helper()

	user, err := env.userRepo.CreateUser(email, "not-a-real-hash", name)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	family, err := env.familyService.CreateFamily(user.ID, familyName)
	if err != nil {
		t.Fatalf("Failed to create family: %v", err)
	}

	return user.ID, family.ID
}

// addFamilyMember creates a second user inside an existing family.
func (env *testEnv) addFamilyMember(t *testing.T, email, name string, familyID int64) int64 {
	t.Helper()

	user, err := env.userRepo.CreateUser(email, "not-a-real-hash", name)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if err := env.userRepo.SetFamily(user.ID, &familyID); err != nil {
		t.Fatalf("Failed to add user to family: %v", err)
	}

	return user.ID
}
