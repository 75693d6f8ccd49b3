package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deckdrill/internal/config"
	"deckdrill/internal/database"
	"deckdrill/internal/engine"
	"deckdrill/internal/handlers"
	"deckdrill/internal/logger"
	"deckdrill/internal/models"
	"deckdrill/internal/repository"
	"deckdrill/internal/security"
	"deckdrill/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	log.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("migrations completed")

	repos := engine.NewRepos(db)
	registry, err := engine.NewRegistry(
		engine.NewLinearEngine(models.ModeReview, repos),
		engine.NewLinearEngine(models.ModeGuess, repos),
		engine.NewLinearEngine(models.ModeRecall, repos),
		engine.NewLinearEngine(models.ModeFill, repos),
		engine.NewMatchEngine(repos),
	)
	if err != nil {
		log.Fatal("failed to build engine registry", zap.Error(err))
	}

	studyService := service.NewStudyService(db, registry, log)
	flashcardRepo := repository.NewFlashcardRepository(db)

	tokens := security.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	limiter := security.NewRateLimiter(cfg.EventRateLimit, cfg.EventRateWin)
	middleware := handlers.NewMiddleware(tokens, limiter, log)
	studyHandler := handlers.NewStudyHandler(studyService, flashcardRepo, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", studyHandler.Health)
	mux.HandleFunc("GET /api/decks/{id}/flashcards", middleware.RequireAuth(studyHandler.ListDeckFlashcards))
	mux.HandleFunc("POST /api/sessions", middleware.RequireAuth(studyHandler.StartSession))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.RequireAuth(studyHandler.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/events", middleware.RequireAuth(middleware.RateLimit(studyHandler.SubmitEvent)))
	mux.HandleFunc("POST /api/sessions/{id}/complete", middleware.RequireAuth(studyHandler.CompleteSession))

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
