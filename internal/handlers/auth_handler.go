package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"catalog-core/internal/auth"
	"catalog-core/internal/config"
	"catalog-core/internal/middleware"
	"catalog-core/internal/models"
	"catalog-core/internal/repository"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *auth.Service
	accountRepo *repository.AccountRepository
	sessionRepo *repository.SessionRepository
	sessionCfg  *config.SessionConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *auth.Service,
	accountRepo *repository.AccountRepository,
	sessionRepo *repository.SessionRepository,
	sessionCfg *config.SessionConfig,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		sessionCfg:  sessionCfg,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

// Login authenticates an account and opens a session
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	account, err := h.accountRepo.GetByEmail(req.Email)
	if err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	if !account.IsActive {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Account is deactivated"})
		return
	}
	if err := h.authService.VerifyPassword(account.PasswordHash, req.Password); err != nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	token, jti, err := h.authService.GenerateToken(account.ID, account.Email)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
		return
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		JTI:       jti,
		ExpiresAt: time.Now().Add(h.sessionCfg.Timeout),
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	if err := h.sessionRepo.Create(session); err != nil {
		slog.Error("Failed to create session", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create session"})
		return
	}

	slog.Info("Account logged in", "account_id", account.ID)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Account: account})
}

// Logout deletes the current session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	if err := h.sessionRepo.Delete(session.ID); err != nil {
		slog.Error("Failed to delete session", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to log out"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
