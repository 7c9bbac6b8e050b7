package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"mealplan/internal/database"
	"mealplan/internal/models"
	"mealplan/internal/repository"
	"mealplan/internal/security"
	"mealplan/internal/service"
)

// stubCompletion returns a fixed reply for every prompt
type stubCompletion struct {
	reply string
}

func (c *stubCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	return c.reply, nil
}

const stubReply = "```json\n" + `{
	"title": "Gemüsecurry",
	"portions": 4,
	"steps": [{"instructions": "Gemüse schneiden und anbraten", "estimatedMinutes": 15}],
	"ingredients": [{"name": "Paprika", "amountPerPortion": 100, "unit": "g"}]
}` + "\n```"

// newTestServer builds the full route table against a throwaway SQLite
// database, mirroring the server wiring.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "api.db")
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

	emailService, err := service.NewEmailService("", "", "", "")
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, 24*time.Hour)
	familyService := service.NewFamilyService(familyRepo, userRepo, emailService)
	mealService := service.NewMealService(mealRepo, familyService)
	suggestionService := service.NewSuggestionService(mealRepo, userRepo, logRepo, familyService, &stubCompletion{reply: stubReply})

	rateLimiter := security.NewRateLimiter(1000, time.Minute)
	middleware := NewMiddleware(authService, rateLimiter)
	authHandler := NewAuthHandler(authService, familyService)
	familyHandler := NewFamilyHandler(familyService)
	mealHandler := NewMealHandler(mealService)
	suggestionHandler := NewSuggestionHandler(suggestionService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.Create))
	mux.HandleFunc("POST /api/families/invite-code", middleware.RequireAuth(familyHandler.GenerateInviteCode))
	mux.HandleFunc("POST /api/families/join", middleware.RequireAuth(familyHandler.Join))
	mux.HandleFunc("POST /api/families/leave", middleware.RequireAuth(familyHandler.Leave))
	mux.HandleFunc("GET /api/families/preferences", middleware.RequireAuth(familyHandler.FamilyPreferences))
	mux.HandleFunc("GET /api/preferences", middleware.RequireAuth(familyHandler.GetPreferences))
	mux.HandleFunc("PUT /api/preferences", middleware.RequireAuth(familyHandler.UpdatePreferences))
	mux.HandleFunc("POST /api/meals", middleware.RequireAuth(mealHandler.Create))
	mux.HandleFunc("GET /api/meals", middleware.RequireAuth(mealHandler.ListByDates))
	mux.HandleFunc("GET /api/meals/{id}", middleware.RequireAuth(mealHandler.Get))
	mux.HandleFunc("PATCH /api/meals/{id}", middleware.RequireAuth(mealHandler.Update))
	mux.HandleFunc("DELETE /api/meals/{id}", middleware.RequireAuth(mealHandler.Delete))
	mux.HandleFunc("PATCH /api/ingredients/{id}/stock", middleware.RequireAuth(mealHandler.ToggleStock))
	mux.HandleFunc("GET /api/shopping-list", middleware.RequireAuth(mealHandler.ShoppingList))
	mux.HandleFunc("POST /api/suggestions", middleware.RequireAuth(suggestionHandler.Generate))
	mux.HandleFunc("GET /api/suggestions/logs", middleware.RequireAuth(suggestionHandler.Logs))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newClient returns an HTTP client with its own cookie jar
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload interface{}) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("Failed to encode payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func registerAndCreateFamily(t *testing.T, client *http.Client, baseURL, email, name, familyName string) {
	t.Helper()

	resp := doJSON(t, client, "POST", baseURL+"/api/auth/register", map[string]string{
		"email": email, "password": "geheim123", "name": name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, client, "POST", baseURL+"/api/families", map[string]string{"name": familyName})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create family status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPIAuthFlow(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	t.Run("UnauthenticatedIsRejected", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/api/auth/me")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("RegisterSetsSession", func(t *testing.T) {
		resp := doJSON(t, client, "POST", server.URL+"/api/auth/register", map[string]string{
			"email": "anna@example.com", "password": "geheim123", "name": "Anna",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Status = %d, want 201", resp.StatusCode)
		}
		resp.Body.Close()

		resp, err := client.Get(server.URL + "/api/auth/me")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		var me userResponse
		decodeBody(t, resp, &me)
		if me.User == nil || me.User.Email != "anna@example.com" {
			t.Errorf("Unexpected user: %+v", me.User)
		}
		if me.Family != nil {
			t.Error("Fresh account should have no family")
		}
	})

	t.Run("WeakPasswordRejected", func(t *testing.T) {
		resp := doJSON(t, newClient(t), "POST", server.URL+"/api/auth/register", map[string]string{
			"email": "kurz@example.com", "password": "kurz", "name": "Kurz",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("LogoutEndsSession", func(t *testing.T) {
		resp := doJSON(t, client, "POST", server.URL+"/api/auth/logout", nil)
		resp.Body.Close()

		resp, err := client.Get(server.URL + "/api/auth/me")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Status after logout = %d, want 401", resp.StatusCode)
		}
	})
}

func TestAPIFamilyFlow(t *testing.T) {
	server := newTestServer(t)

	owner := newClient(t)
	registerAndCreateFamily(t, owner, server.URL, "owner@example.com", "Owner", "Müller")

	joiner := newClient(t)
	resp := doJSON(t, joiner, "POST", server.URL+"/api/auth/register", map[string]string{
		"email": "joiner@example.com", "password": "geheim123", "name": "Joiner",
	})
	resp.Body.Close()

	t.Run("JoinWithInviteCode", func(t *testing.T) {
		resp := doJSON(t, owner, "POST", server.URL+"/api/families/invite-code", nil)
		var code inviteCodeResponse
		decodeBody(t, resp, &code)
		if code.InviteCode == "" {
			t.Fatal("Expected an invite code")
		}

		resp = doJSON(t, joiner, "POST", server.URL+"/api/families/join", map[string]string{
			"inviteCode": code.InviteCode,
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Join status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("JoinWithBadCode", func(t *testing.T) {
		third := newClient(t)
		resp := doJSON(t, third, "POST", server.URL+"/api/auth/register", map[string]string{
			"email": "third@example.com", "password": "geheim123", "name": "Third",
		})
		resp.Body.Close()

		resp = doJSON(t, third, "POST", server.URL+"/api/families/join", map[string]string{
			"inviteCode": "kein-code-0",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("FamilyPreferences", func(t *testing.T) {
		resp := doJSON(t, joiner, "PUT", server.URL+"/api/preferences", map[string]string{
			"preferences": "Pasta", "allergies": "Nüsse",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Update preferences status = %d, want 200", resp.StatusCode)
		}
		resp.Body.Close()

		resp, err := owner.Get(server.URL + "/api/families/preferences")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		var members []models.MemberPreferences
		decodeBody(t, resp, &members)
		if len(members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(members))
		}
	})
}

func TestAPIMealFlow(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)
	registerAndCreateFamily(t, client, server.URL, "koch@example.com", "Koch", "Fischer")

	var created models.MealWithDetails

	t.Run("Create", func(t *testing.T) {
		resp := doJSON(t, client, "POST", server.URL+"/api/meals", map[string]interface{}{
			"date":     "2025-06-01",
			"title":    "Lasagne",
			"portions": 4,
			"steps": []map[string]interface{}{
				{"instructions": "Sauce kochen", "estimatedMinutes": 30},
				{"instructions": "Schichten und backen", "estimatedMinutes": 45},
			},
			"ingredients": []map[string]interface{}{
				{"name": "Lasagneplatten", "amountPerPortion": 80, "unit": "g"},
				{"name": "Hackfleisch", "amountPerPortion": 120, "unit": "g"},
			},
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Status = %d, want 201", resp.StatusCode)
		}
		decodeBody(t, resp, &created)
		if created.ID == 0 || len(created.Steps) != 2 || len(created.Ingredients) != 2 {
			t.Fatalf("Unexpected meal: %+v", created)
		}
	})

	t.Run("ListByDates", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/api/meals?dates=2025-06-01,2025-06-02")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		var meals []models.MealWithDetails
		decodeBody(t, resp, &meals)
		if len(meals) != 1 || meals[0].Title != "Lasagne" {
			t.Errorf("Unexpected meals: %+v", meals)
		}
	})

	t.Run("MissingDatesParam", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/api/meals")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("ToggleIngredientStock", func(t *testing.T) {
		url := fmt.Sprintf("%s/api/ingredients/%d/stock", server.URL, created.Ingredients[0].ID)
		resp := doJSON(t, client, "PATCH", url, map[string]bool{"inStock": true})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("ShoppingListSkipsStocked", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/api/shopping-list?dates=2025-06-01")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		var items []models.ShoppingListItem
		decodeBody(t, resp, &items)
		if len(items) != 1 || items[0].Name != "Hackfleisch" {
			t.Errorf("Unexpected shopping list: %+v", items)
		}
		// 4 portions * 120g
		if len(items) == 1 && items[0].TotalAmount != 480 {
			t.Errorf("TotalAmount = %v, want 480", items[0].TotalAmount)
		}
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		url := fmt.Sprintf("%s/api/meals/%d", server.URL, created.ID)

		resp := doJSON(t, client, "PATCH", url, map[string]interface{}{"portions": 6})
		var updated models.MealWithDetails
		decodeBody(t, resp, &updated)
		if updated.Portions != 6 {
			t.Errorf("Portions = %d, want 6", updated.Portions)
		}

		req, _ := http.NewRequest("DELETE", url, nil)
		deleteResp, err := client.Do(req)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		deleteResp.Body.Close()

		getResp, err := client.Get(url)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusNotFound {
			t.Errorf("Status after delete = %d, want 404", getResp.StatusCode)
		}
	})

	t.Run("ForeignMealHidden", func(t *testing.T) {
		stranger := newClient(t)
		registerAndCreateFamily(t, stranger, server.URL, "fremd@example.com", "Fremd", "Andere")

		resp := doJSON(t, client, "POST", server.URL+"/api/meals", map[string]interface{}{
			"date": "2025-06-05", "title": "Privat", "portions": 2,
		})
		var meal models.MealWithDetails
		decodeBody(t, resp, &meal)

		getResp, err := stranger.Get(fmt.Sprintf("%s/api/meals/%d", server.URL, meal.ID))
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer getResp.Body.Close()
		if getResp.StatusCode != http.StatusForbidden {
			t.Errorf("Status = %d, want 403", getResp.StatusCode)
		}
	})
}

func TestAPISuggestionFlow(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)
	registerAndCreateFamily(t, client, server.URL, "chef@example.com", "Chef", "Weber")

	var me userResponse
	resp, err := client.Get(server.URL + "/api/auth/me")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	decodeBody(t, resp, &me)

	t.Run("Generate", func(t *testing.T) {
		resp := doJSON(t, client, "POST", server.URL+"/api/suggestions", map[string]interface{}{
			"mealType":             "large",
			"selectedUserIds":      []int64{me.User.ID},
			"availableIngredients": "Paprika, Zucchini",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Status = %d, want 200", resp.StatusCode)
		}
		var suggestion models.Suggestion
		decodeBody(t, resp, &suggestion)
		if suggestion.Title != "Gemüsecurry" {
			t.Errorf("Title = %q, want Gemüsecurry", suggestion.Title)
		}
		if suggestion.Portions != 1 {
			t.Errorf("Portions = %d, want 1 (one selected person)", suggestion.Portions)
		}
		if !suggestion.Ingredients[0].InStock {
			t.Error("Paprika is on the availability list and should be in stock")
		}
	})

	t.Run("InvalidMealType", func(t *testing.T) {
		resp := doJSON(t, client, "POST", server.URL+"/api/suggestions", map[string]interface{}{
			"mealType":        "medium",
			"selectedUserIds": []int64{me.User.ID},
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("Logs", func(t *testing.T) {
		resp, err := client.Get(server.URL + "/api/suggestions/logs?limit=10")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		var logs []models.SuggestionLog
		decodeBody(t, resp, &logs)
		if len(logs) != 1 {
			t.Fatalf("Expected 1 audit record, got %d", len(logs))
		}
		if !logs[0].Success {
			t.Error("Audit record should be successful")
		}
	})
}
