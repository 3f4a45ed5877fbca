package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"nightlog/internal/config"
	"nightlog/internal/httputil"
	"nightlog/internal/model"
	"nightlog/internal/service"
	"nightlog/internal/transport/http/middleware"
)

// AuthHandler serves registration, login and session endpoints. The session
// token travels in an httpOnly cookie; it is also echoed in the response body
// for non-browser clients.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	config      *config.Config
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		config:      cfg,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		httputil.WriteValidationErrors(w, errs)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already registered")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already taken")
		default:
			log.Printf("[ERROR] Register handler: %v", err)
			httputil.WriteInternalError(w, "Failed to create account")
		}
		return
	}

	if !h.issueSession(w, user) {
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Account created", httputil.Fields{
		"user": user.Public(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		httputil.WriteValidationErrors(w, errs)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			// Same message whether the email is unknown or the password is
			// wrong; the response must not reveal which.
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		log.Printf("[ERROR] Login handler: %v", err)
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	if !h.issueSession(w, user) {
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Logged in", httputil.Fields{
		"user": user.Public(),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	httputil.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}

// Me returns the authenticated user's identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Token outlived the account
			h.clearSessionCookie(w)
			httputil.WriteUnauthorized(w, "Account no longer exists")
			return
		}
		log.Printf("[ERROR] Me handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load user")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Fields{
		"user": user.Public(),
	})
}

// Refresh reissues the session cookie with a fresh expiry.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			h.clearSessionCookie(w)
			httputil.WriteUnauthorized(w, "Account no longer exists")
			return
		}
		log.Printf("[ERROR] Refresh handler: %v", err)
		httputil.WriteInternalError(w, "Failed to refresh session")
		return
	}

	if !h.issueSession(w, user) {
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Session refreshed", httputil.Fields{
		"user": user.Public(),
	})
}

// issueSession signs a token and sets the session cookie. Writes a 500 and
// returns false on signing failure.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user *model.User) bool {
	token, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Printf("[ERROR] Failed to sign session token: %v", err)
		httputil.WriteInternalError(w, "Failed to create session")
		return false
	}
	h.setSessionCookie(w, token)
	return true
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.config.CookieMaxAge,
		HttpOnly: true,
		Secure:   !h.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}
