package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brunovale/catalog-backend/internal/service/authn"
)

// loginService defines the minimal interface needed by AuthHandler.
type loginService interface {
	Login(ctx context.Context, input authn.LoginInput) (*authn.LoginResult, error)
}

// recoveryService defines the password-recovery operations.
type recoveryService interface {
	Issue(ctx context.Context, email string) error
	Reset(ctx context.Context, token, newPassword string) error
}

// AuthHandler serves login and password-recovery REST endpoints.
type AuthHandler struct {
	login    loginService
	recovery recoveryService
	log      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(login loginService, recovery recoveryService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{login: login, recovery: recovery, log: logger.With("handler", "auth")}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type recoverTokenRequest struct {
	Email string `json:"email"`
}

type newPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.login.Login(r.Context(), authn.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
	})
}

// RecoverToken handles POST /auth/recover-token. An unknown email comes
// back as 404; existence disclosure is part of the endpoint's contract.
func (h *AuthHandler) RecoverToken(w http.ResponseWriter, r *http.Request) {
	var req recoverTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.recovery.Issue(r.Context(), req.Email); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NewPassword handles PUT /auth/new-password. A token that is unknown,
// expired, or already consumed comes back as 400.
func (h *AuthHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req newPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.recovery.Reset(r.Context(), req.Token, req.Password); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
