package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"catalog-core/internal/access"
	"catalog-core/internal/auth"
	"catalog-core/internal/models"
	"catalog-core/internal/repository"
	"catalog-core/internal/service"
)

type contextKey string

const (
	actorKey   contextKey = "actor"
	sessionKey contextKey = "session"
)

// AuthMiddleware validates JWT tokens and resolves the caller's roles
type AuthMiddleware struct {
	authService *auth.Service
	sessionRepo *repository.SessionRepository
	resolver    *service.RoleResolver
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service, sessionRepo *repository.SessionRepository, resolver *service.RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		sessionRepo: sessionRepo,
		resolver:    resolver,
	}
}

// Authenticate validates the bearer token, checks the session is still
// live, and puts the resolved actor (roles plus the session's active-role
// selection) on the request context for the guard.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		session, err := m.sessionRepo.GetByJTI(claims.ID)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Token has been invalidated")
			return
		}

		actor, err := m.resolver.ActorFor(session.AccountID, session.ActiveRole)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to resolve roles")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		ctx = context.WithValue(ctx, sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor retrieves the resolved actor from the request context
func GetActor(r *http.Request) (access.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(access.Actor)
	return actor, ok
}

// GetSession retrieves the session from the request context
func GetSession(r *http.Request) (*models.Session, bool) {
	session, ok := r.Context().Value(sessionKey).(*models.Session)
	return session, ok
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
