package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"civic-portal/internal/domain"
	"civic-portal/internal/response"
	"civic-portal/internal/service"
	"civic-portal/internal/token"
	"civic-portal/internal/xerrors"

	"go.uber.org/zap"
)

// Auth resolves an inbound bearer credential to a canonical user. Session
// tokens resolve by user id; identity-provider tokens (when a provider
// verifier is configured) resolve-or-create through the auth service.
type Auth struct {
	sessions *token.Verifier
	provider token.ProviderVerifier
	auth     *service.AuthService
	logger   *zap.Logger
}

func NewAuth(sessions *token.Verifier, provider token.ProviderVerifier, auth *service.AuthService, logger *zap.Logger) *Auth {
	return &Auth{sessions: sessions, provider: provider, auth: auth, logger: logger}
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// Websocket clients can't set headers from the browser.
	if q := r.URL.Query().Get("token"); q != "" {
		return q
	}
	return ""
}

func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			response.Error(w, http.StatusUnauthorized, "No authorization token provided.")
			return
		}

		user, department, ok := a.resolve(w, r, raw)
		if !ok {
			return
		}
		next.ServeHTTP(w, setContextValues(r, user, department))
	})
}

func (a *Auth) resolve(w http.ResponseWriter, r *http.Request, raw string) (*domain.User, string, bool) {
	ctx := r.Context()

	claims, err := a.sessions.ParseAndValidate(raw)
	if err == nil {
		user, lookupErr := a.auth.Profile(ctx, claims.UserID)
		if lookupErr != nil {
			if errors.Is(lookupErr, xerrors.ErrNotFound) {
				response.Error(w, http.StatusUnauthorized, "Unauthorized. Token verification failed.")
			} else {
				a.logger.Error("user lookup failed during auth", zap.Error(lookupErr))
				response.Error(w, http.StatusInternalServerError, "Internal server error")
			}
			return nil, "", false
		}
		return user, claims.Department, true
	}
	if errors.Is(err, xerrors.ErrExpiredToken) {
		response.ErrorCode(w, http.StatusUnauthorized, "Token expired.", "TOKEN_EXPIRED")
		return nil, "", false
	}

	// Not one of ours; try the identity provider.
	if a.provider != nil {
		pc, perr := a.provider.Verify(ctx, raw)
		if perr == nil {
			user, resolveErr := a.auth.ResolveProvider(ctx, pc)
			if resolveErr != nil {
				a.logger.Error("provider identity resolution failed", zap.Error(resolveErr))
				response.Error(w, http.StatusInternalServerError, "Internal server error")
				return nil, "", false
			}
			return user, "", true
		}
		if errors.Is(perr, xerrors.ErrExpiredToken) {
			response.ErrorCode(w, http.StatusUnauthorized, "Token expired.", "TOKEN_EXPIRED")
			return nil, "", false
		}
	}

	response.ErrorCode(w, http.StatusUnauthorized, "Invalid token.", "TOKEN_INVALID")
	return nil, "", false
}

func setContextValues(r *http.Request, user *domain.User, department string) *http.Request {
	if department == "" {
		department = user.Department
	}
	ctx := context.WithValue(r.Context(), ContextUserID, user.ID)
	ctx = context.WithValue(ctx, ContextUser, user)
	ctx = context.WithValue(ctx, ContextRole, string(user.Role))
	ctx = context.WithValue(ctx, ContextDepartment, department)
	ctx = context.WithValue(ctx, ContextIsAdmin, user.IsAdmin())
	ctx = context.WithValue(ctx, ContextIsStaff, user.IsStaff())
	return r.WithContext(ctx)
}
