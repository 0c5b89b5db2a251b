package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"catalog-core/internal/access"
	"catalog-core/internal/auth"
	"catalog-core/internal/config"
	"catalog-core/internal/database"
	"catalog-core/internal/handlers"
	"catalog-core/internal/logger"
	"catalog-core/internal/middleware"
	"catalog-core/internal/models"
	"catalog-core/internal/repository"
	"catalog-core/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
	)

	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Repositories
	accountRepo := repository.NewAccountRepository(db.DB)
	grantRepo := repository.NewRoleGrantRepository(db.DB)
	requestRepo := repository.NewRoleRequestRepository(db.DB)
	taskRepo := repository.NewReviewTaskRepository(db.DB)
	roundRepo := repository.NewRoundRepository(db.DB)
	historyRepo := repository.NewHistoryRepository(db.DB)
	adoptionRepo := repository.NewAdoptionRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)

	// Services
	authService := auth.NewService(&cfg.JWT)
	resolver := service.NewRoleResolver(grantRepo, sessionRepo)
	requestService := service.NewRoleRequestService(requestRepo, grantRepo, accountRepo, adoptionRepo, sessionRepo, resolver)
	assignmentService := service.NewAssignmentService(taskRepo, roundRepo, historyRepo, resolver)

	// Middleware
	authMW := middleware.NewAuthMiddleware(authService, sessionRepo, resolver)
	guard := middleware.NewGuardMiddleware()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, accountRepo, sessionRepo, &cfg.Session)
	roleHandler := handlers.NewRoleHandler(resolver)
	requestHandler := handlers.NewRoleRequestHandler(requestService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMW.Authenticate)
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/roles", roleHandler.GetMyRoles).Methods(http.MethodGet)
	protected.HandleFunc("/role-requests", requestHandler.Submit).Methods(http.MethodPost)
	protected.HandleFunc("/role-requests/{id:[0-9]+}", requestHandler.Get).Methods(http.MethodGet)

	// The role-selection entry point stays reachable for accounts that
	// still have to pick their active role.
	selection := api.NewRoute().Subrouter()
	selection.Use(authMW.Authenticate)
	selection.Use(guard.Require(access.Requirement{RequireAuth: true, AtRoleSelection: true}))
	selection.HandleFunc("/session/role", roleHandler.SelectActiveRole).Methods(http.MethodPost)

	admin := api.NewRoute().Subrouter()
	admin.Use(authMW.Authenticate)
	admin.Use(guard.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/role-requests/pending", requestHandler.ListPending).Methods(http.MethodGet)
	admin.HandleFunc("/role-requests/{id:[0-9]+}/approve", requestHandler.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/role-requests/{id:[0-9]+}/reject", requestHandler.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/admin/grants", requestHandler.Grant).Methods(http.MethodPost)
	admin.HandleFunc("/admin/grants", requestHandler.Revoke).Methods(http.MethodDelete)
	admin.HandleFunc("/review-tasks", assignmentHandler.Assign).Methods(http.MethodPost)
	admin.HandleFunc("/review-tasks/quick-assign", assignmentHandler.QuickAssign).Methods(http.MethodPost)
	admin.HandleFunc("/review-tasks/{id:[0-9]+}/reassign", assignmentHandler.Reassign).Methods(http.MethodPost)
	admin.HandleFunc("/review-tasks/{id:[0-9]+}", assignmentHandler.Remove).Methods(http.MethodDelete)
	admin.HandleFunc("/review-rounds", assignmentHandler.CreateRound).Methods(http.MethodPost)
	admin.HandleFunc("/review-rounds/{id:[0-9]+}/close", assignmentHandler.CloseRound).Methods(http.MethodPost)

	review := api.NewRoute().Subrouter()
	review.Use(authMW.Authenticate)
	review.Use(guard.RequireRole(models.RoleReviewer, models.RoleAdmin))
	review.HandleFunc("/review-tasks/{id:[0-9]+}/status", assignmentHandler.AdvanceStatus).Methods(http.MethodPost)
	review.HandleFunc("/reviewers/{id:[0-9]+}/workload", assignmentHandler.Workload).Methods(http.MethodGet)
	review.HandleFunc("/reviewers/{id:[0-9]+}/tasks", assignmentHandler.TasksByReviewer).Methods(http.MethodGet)
	review.HandleFunc("/reviewers/suggestions", assignmentHandler.Suggestions).Methods(http.MethodGet)
	review.HandleFunc("/review-rounds/{id:[0-9]+}/tasks", assignmentHandler.RoundTasks).Methods(http.MethodGet)
	review.HandleFunc("/history/rounds/{id:[0-9]+}", assignmentHandler.HistoryByRound).Methods(http.MethodGet)
	review.HandleFunc("/history/products/{id:[0-9]+}", assignmentHandler.HistoryByProduct).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	go func() {
		slog.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
