package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/talent-match/internal/config"
	"go.uber.org/zap"
)

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
}

// TokenResponse is the issued access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthHandler exchanges API client credentials for access tokens.
type AuthHandler struct {
	clients    map[string]string // client id -> bcrypt hash
	secrets    *config.SecretConfig
	jwtService *JWTService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(clients map[string]string, secrets *config.SecretConfig, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		clients:    clients,
		secrets:    secrets,
		jwtService: jwtService,
		validator:  validator.New(),
		logger:     logger,
	}
}

// IssueToken handles client credential exchange.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.logger, extractValidationErrors(err))
		return
	}

	hash, ok := h.clients[req.ClientID]
	if !ok || !h.secrets.VerifySecret(req.ClientSecret, hash) {
		h.logger.Warn("rejected client credentials", zap.String("client_id", req.ClientID))
		writeError(w, h.logger, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(req.ClientID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

// extractValidationErrors converts the first validator failure into an ErrValidation.
func extractValidationErrors(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: fmt.Sprintf("failed %q", ve.Tag())}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}
