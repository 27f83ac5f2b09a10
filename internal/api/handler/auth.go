package handler

import (
	"net/http"
	"time"

	"github.com/Rrens/opsflow/internal/api/middleware"
	"github.com/Rrens/opsflow/internal/api/response"
	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService   *service.AuthService
	refreshTTL    time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. secureCookies marks the refresh
// cookie Secure and should be set in production.
func NewAuthHandler(authService *service.AuthService, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// Register handles principal registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if !decode(w, r, &input) {
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// Login handles credential login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if !decode(w, r, &input) {
		return
	}

	session, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	response.OK(w, session)
}

// Refresh exchanges the refresh cookie, or a refresh_token body field, for a new pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(refreshCookieName); err == nil {
		token = c.Value
	}
	if token == "" && r.ContentLength != 0 {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if !decode(w, r, &input) {
			return
		}
		token = input.RefreshToken
	}
	if token == "" {
		response.Unauthorized(w, "refresh token required")
		return
	}

	session, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		h.clearRefreshCookie(w)
		writeError(w, r, err)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken)
	response.OK(w, session)
}

// Logout clears the refresh cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	response.OK(w, map[string]string{"message": "logged out"})
}

// Me returns the authenticated principal
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	response.OK(w, user)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
