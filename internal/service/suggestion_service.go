package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"mealplan/internal/models"
	"mealplan/internal/repository"
	"mealplan/internal/validation"
)

// SuggestionService generates recipe proposals via the completion
// endpoint and keeps an audit record of every attempt.
type SuggestionService struct {
	mealRepo      *repository.MealRepository
	userRepo      *repository.UserRepository
	logRepo       *repository.SuggestionLogRepository
	familyService *FamilyService
	client        CompletionClient
}

// SuggestionRequest carries the parameters of one generation attempt
type SuggestionRequest struct {
	FamilyID              int64   `json:"familyId"`
	SelectedUserIDs       []int64 `json:"selectedUserIds"`
	MealType              string  `json:"mealType"`
	CustomHints           string  `json:"customHints"`
	AvailableIngredients  string  `json:"availableIngredients"`
	ExcludeLastMealsCount int     `json:"excludeLastMealsCount"`
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(mealRepo *repository.MealRepository, userRepo *repository.UserRepository,
	logRepo *repository.SuggestionLogRepository, familyService *FamilyService, client CompletionClient) *SuggestionService {
	return &SuggestionService{
		mealRepo:      mealRepo,
		userRepo:      userRepo,
		logRepo:       logRepo,
		familyService: familyService,
		client:        client,
	}
}

var ingredientSplitter = regexp.MustCompile(`[,\n]+`)

// Generate runs one suggestion attempt: it gathers the family's
// preferences and recent meals, builds the prompt, calls the model and
// normalizes the reply. Exactly one audit record is written per attempt,
// whether it succeeds or fails.
func (s *SuggestionService) Generate(ctx context.Context, userID int64, req SuggestionRequest) (suggestion *models.Suggestion, err error) {
	if err := s.familyService.VerifyFamilyAccess(userID, req.FamilyID); err != nil {
		return nil, err
	}
	if req.MealType != MealTypeLarge && req.MealType != MealTypeSmall {
		return nil, validation.Error{Field: "mealType", Message: "Ungültiger Mahlzeitentyp"}
	}
	if len(req.SelectedUserIDs) == 0 {
		return nil, validation.Error{Field: "selectedUserIds", Message: "Mindestens eine Person auswählen"}
	}

	familyPreferences, err := s.familyService.GetFamilyPreferences(userID, req.FamilyID)
	if err != nil {
		return nil, err
	}

	// Only the selected members shape the suggestion. Preferences of
	// everyone else stay out of the prompt and the audit record.
	selected := make(map[int64]bool, len(req.SelectedUserIDs))
	for _, id := range req.SelectedUserIDs {
		selected[id] = true
	}
	memberPreferences := make([]models.MemberPreferences, 0, len(req.SelectedUserIDs))
	for _, member := range familyPreferences {
		if selected[member.UserID] {
			memberPreferences = append(memberPreferences, member)
			delete(selected, member.UserID)
		}
	}
	if len(selected) > 0 {
		return nil, validation.Error{Field: "selectedUserIds", Message: "Ausgewählte Person gehört nicht zur Familie"}
	}

	var recentMeals []models.RecentMeal
	if req.ExcludeLastMealsCount > 0 {
		today := time.Now().Format("2006-01-02")
		recentMeals, err = s.mealRepo.GetRecentMeals(req.FamilyID, today, req.ExcludeLastMealsCount)
		if err != nil {
			return nil, err
		}
	}

	prompt := buildSuggestionPrompt(req.MealType, memberPreferences,
		req.CustomHints, req.AvailableIngredients, recentMeals, len(req.SelectedUserIDs))

	auditLog := &models.SuggestionLog{
		FamilyID:              req.FamilyID,
		RequestedBy:           userID,
		MealType:              req.MealType,
		SelectedUserCount:     len(req.SelectedUserIDs),
		ExcludeLastMealsCount: req.ExcludeLastMealsCount,
		FamilyPreferences:     memberPreferences,
		RecentMeals:           recentMeals,
		GeneratedPrompt:       prompt,
	}
	if req.CustomHints != "" {
		auditLog.CustomHints = &req.CustomHints
	}
	if req.AvailableIngredients != "" {
		auditLog.AvailableIngredients = &req.AvailableIngredients
	}

	// One audit row per attempt. A failed log write is reported but
	// never changes the outcome of the attempt itself.
	defer func() {
		auditLog.Success = err == nil
		if err != nil {
			message := err.Error()
			auditLog.ErrorMessage = &message
		}
		if suggestion != nil {
			auditLog.ParsedSuggestion = *suggestion
		}
		if _, logErr := s.logRepo.Insert(auditLog); logErr != nil {
			log.Printf("Failed to write suggestion log: %v", logErr)
		}
	}()

	rawResponse, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	auditLog.RawResponse = rawResponse

	suggestion, err = parseSuggestion(rawResponse)
	if err != nil {
		return nil, err
	}

	// Portions always follow the number of selected people, regardless
	// of what the model answered.
	suggestion.Portions = len(req.SelectedUserIDs)

	reconcileStock(suggestion, req.AvailableIngredients)

	return suggestion, nil
}

// parseSuggestion strips markdown fences from the model reply and
// decodes it, requiring title, steps and ingredients to be present.
func parseSuggestion(raw string) (*models.Suggestion, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = cleaned[:len(cleaned)-len("```")]
	}
	cleaned = strings.TrimSpace(cleaned)

	var suggestion models.Suggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestion); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if suggestion.Title == "" || len(suggestion.Steps) == 0 || len(suggestion.Ingredients) == 0 {
		return nil, &ParseError{Reason: "missing title, steps or ingredients"}
	}

	return &suggestion, nil
}

// reconcileStock marks each ingredient as in stock when it matches an
// entry of the comma or newline separated availability list. Matching is
// case-insensitive substring containment in either direction. Without an
// availability list every ingredient is out of stock.
func reconcileStock(suggestion *models.Suggestion, availableIngredients string) {
	if availableIngredients == "" {
		for i := range suggestion.Ingredients {
			suggestion.Ingredients[i].InStock = false
		}
		return
	}

	var available []string
	for _, entry := range ingredientSplitter.Split(strings.ToLower(availableIngredients), -1) {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			available = append(available, entry)
		}
	}

	for i := range suggestion.Ingredients {
		name := strings.ToLower(suggestion.Ingredients[i].Name)
		inStock := false
		for _, entry := range available {
			if strings.Contains(name, entry) || strings.Contains(entry, name) {
				inStock = true
				break
			}
		}
		suggestion.Ingredients[i].InStock = inStock
	}
}

// ListLogs returns the family's audit records, newest first
func (s *SuggestionService) ListLogs(userID, familyID int64, limit int) ([]models.SuggestionLog, error) {
	if err := s.familyService.VerifyFamilyAccess(userID, familyID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByFamily(familyID, limit)
}
