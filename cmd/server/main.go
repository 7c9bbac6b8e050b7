package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealplan/internal/config"
	"mealplan/internal/database"
	"mealplan/internal/handlers"
	"mealplan/internal/repository"
	"mealplan/internal/security"
	"mealplan/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	mealRepo := repository.NewMealRepository(db)
	suggestionLogRepo := repository.NewSuggestionLogRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	familyService := service.NewFamilyService(familyRepo, userRepo, emailService)
	mealService := service.NewMealService(mealRepo, familyService)

	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not configured, suggestion generation will fail")
	}
	completionClient := service.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	suggestionService := service.NewSuggestionService(mealRepo, userRepo, suggestionLogRepo, familyService, completionClient)

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	middleware := handlers.NewMiddleware(authService, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService, familyService)
	oauthHandler := handlers.NewOAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBaseURL)
	familyHandler := handlers.NewFamilyHandler(familyService)
	mealHandler := handlers.NewMealHandler(mealService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /auth/google/start", oauthHandler.Start)
	mux.HandleFunc("GET /auth/google/callback", oauthHandler.Callback)

	// Family routes
	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.Create))
	mux.HandleFunc("POST /api/families/invite-code", middleware.RequireAuth(familyHandler.GenerateInviteCode))
	mux.HandleFunc("POST /api/families/invite-email", middleware.RequireAuth(familyHandler.SendInvite))
	mux.HandleFunc("POST /api/families/join", middleware.RequireAuth(familyHandler.Join))
	mux.HandleFunc("POST /api/families/leave", middleware.RequireAuth(familyHandler.Leave))
	mux.HandleFunc("GET /api/families/preferences", middleware.RequireAuth(familyHandler.FamilyPreferences))

	// Preference routes
	mux.HandleFunc("GET /api/preferences", middleware.RequireAuth(familyHandler.GetPreferences))
	mux.HandleFunc("PUT /api/preferences", middleware.RequireAuth(familyHandler.UpdatePreferences))

	// Meal routes
	mux.HandleFunc("POST /api/meals", middleware.RequireAuth(mealHandler.Create))
	mux.HandleFunc("GET /api/meals", middleware.RequireAuth(mealHandler.ListByDates))
	mux.HandleFunc("GET /api/meals/{id}", middleware.RequireAuth(mealHandler.Get))
	mux.HandleFunc("PATCH /api/meals/{id}", middleware.RequireAuth(mealHandler.Update))
	mux.HandleFunc("DELETE /api/meals/{id}", middleware.RequireAuth(mealHandler.Delete))
	mux.HandleFunc("PATCH /api/ingredients/{id}/stock", middleware.RequireAuth(mealHandler.ToggleStock))
	mux.HandleFunc("GET /api/shopping-list", middleware.RequireAuth(mealHandler.ShoppingList))

	// Suggestion routes
	mux.HandleFunc("POST /api/suggestions", middleware.RequireAuth(middleware.RateLimit(suggestionHandler.Generate)))
	mux.HandleFunc("GET /api/suggestions/logs", middleware.RequireAuth(suggestionHandler.Logs))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Failed to cleanup expired sessions: %v", err)
		}
	}
}
