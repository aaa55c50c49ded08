package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/async-tournament/middleware"
	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/services"
)

const (
	stateCookieName = "async_oauth_state"
	nextCookieName  = "async_login_next"
	stateCookieTTL  = 10 * time.Minute
	defaultLanding  = "/me"
)

// LoginFlow is the Discord OAuth2 handshake.
type LoginFlow interface {
	LoginURL(state string) (string, error)
	CompleteLogin(ctx context.Context, code string) (*models.DiscordIdentity, error)
}

type AuthHandler struct {
	login         LoginFlow
	tokens        *middleware.SessionTokens
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(login LoginFlow, tokens *middleware.SessionTokens, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		login:         login,
		tokens:        tokens,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Login sends the browser to Discord's consent page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	target, err := h.login.LoginURL(state)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.setCookie(w, stateCookieName, state, stateCookieTTL)
	if next := r.URL.Query().Get("next"); isLocalPath(next) {
		h.setCookie(w, nextCookieName, next, stateCookieTTL)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Callback completes the OAuth2 handshake and starts a session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
		mapServiceErrorToHTTP(w, r, services.ErrOAuthStateMismatch)
		return
	}
	h.clearCookie(w, stateCookieName)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		unauthorizedResponse(w, r, "discord login was cancelled: "+errParam)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		badRequestResponse(w, r, errors.New("authorization code is required"))
		return
	}

	identity, err := h.login.CompleteLogin(r.Context(), code)
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationFailed) {
			h.logger.WarnContext(r.Context(), "discord login failed", slog.Any("error", err))
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, expires, err := h.tokens.Issue(*identity)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.InfoContext(r.Context(), "discord user logged in",
		slog.Int64("discord_user_id", identity.ID),
		slog.String("name", identity.Name),
	)

	landing := defaultLanding
	if next, err := r.Cookie(nextCookieName); err == nil && isLocalPath(next.Value) {
		landing = next.Value
		h.clearCookie(w, nextCookieName)
	}
	http.Redirect(w, r, landing, http.StatusFound)
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, middleware.SessionCookieName)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Me reports the identity behind the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	response := jsonResponse{
		"discord_user_id": identity.ID,
		"name":            identity.Name,
		"known_user":      user != nil,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// isLocalPath accepts only same-site absolute paths as redirect targets.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
