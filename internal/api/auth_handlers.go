package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/example/minishop/internal/auth"
)

// AuthHandlers serves the admin login used by the order-management
// endpoints. There is a single admin identity configured via environment
// variables; customers never authenticate.
type AuthHandlers struct {
	jwtService *auth.JWTService
	adminEmail string
	adminHash  string
}

func NewAuthHandlers(jwtService *auth.JWTService, adminEmail, adminHash string) *AuthHandlers {
	return &AuthHandlers{
		jwtService: jwtService,
		adminEmail: adminEmail,
		adminHash:  adminHash,
	}
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid login payload", http.StatusBadRequest)
		return
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), h.adminEmail) ||
		!auth.CheckPassword(req.Password, h.adminHash) {
		respondError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(h.adminEmail, "admin")
	if err != nil {
		respondError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expiresAt.Format(time.RFC3339),
		"role":      "admin",
	})
}
