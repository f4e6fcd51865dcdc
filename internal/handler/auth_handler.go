package handler

import (
	"errors"
	"net/http"
	"strings"

	"civic-portal/internal/middleware"
	"civic-portal/internal/response"
	"civic-portal/internal/service"
	"civic-portal/internal/token"
	"civic-portal/internal/xerrors"

	"go.uber.org/zap"
)

type AuthHandler struct {
	auth     *service.AuthService
	provider token.ProviderVerifier
	logger   *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, provider token.ProviderVerifier, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, provider: provider, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Department string `json:"department"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.StaffLogin(r.Context(), in.Email, in.Password, in.Department)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// Verify exchanges an identity-provider token for a portal session token,
// provisioning the citizen account on first sight.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifyProvider(w, r)
	if !ok {
		return
	}

	res, err := h.auth.ProviderLogin(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// VerifyStaff is Verify for staff consoles: the resolved account must already
// hold a staff or admin role.
func (h *AuthHandler) VerifyStaff(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifyProvider(w, r)
	if !ok {
		return
	}

	var in struct {
		Department string `json:"department"`
	}
	// Body is optional here.
	_ = decodeJSON(r, &in)

	res, err := h.auth.ProviderStaffLogin(r.Context(), claims, in.Department)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) verifyProvider(w http.ResponseWriter, r *http.Request) (*token.ProviderClaims, bool) {
	if h.provider == nil {
		response.Error(w, http.StatusNotImplemented, "Identity provider sign-in is not configured.")
		return nil, false
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Error(w, http.StatusUnauthorized, "No authorization token provided.")
		return nil, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	claims, err := h.provider.Verify(r.Context(), raw)
	if err != nil {
		if errors.Is(err, xerrors.ErrExpiredToken) {
			response.ErrorCode(w, http.StatusUnauthorized, "Token expired.", "TOKEN_EXPIRED")
		} else {
			response.ErrorCode(w, http.StatusUnauthorized, "Invalid token.", "TOKEN_INVALID")
		}
		return nil, false
	}
	return claims, true
}
