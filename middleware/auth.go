package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/services"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	userContextKey     contextKey = "user"
	apiKeyContextKey   contextKey = "api_key"
)

// UserResolver maps a session identity to a stored user.
type UserResolver interface {
	CurrentUser(ctx context.Context, identity *models.DiscordIdentity) (*models.User, error)
}

// APIKeyVerifier checks a raw API key against a scope.
type APIKeyVerifier interface {
	VerifyAPIKey(ctx context.Context, raw, scope string) (*models.APIKey, error)
}

// Authenticate requires a valid session cookie and redirects to the login
// page otherwise, remembering where the visitor wanted to go.
func Authenticate(tokens *SessionTokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				redirectToLogin(w, r)
				return
			}
			identity, err := tokens.Parse(cookie.Value)
			if err != nil {
				slog.Debug("rejected session cookie", slog.Any("error", err))
				redirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// LoadUser resolves the stored user for the authenticated identity.
// Visitors the bot has never seen continue as anonymous.
func LoadUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.CurrentUser(r.Context(), IdentityFromContext(r.Context()))
			if err != nil {
				slog.Error("failed to resolve session user", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if user != nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIKey authorizes requests bearing an API key with scope.
func RequireAPIKey(verifier APIKeyVerifier, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing api key")
				return
			}

			key, err := verifier.VerifyAPIKey(r.Context(), raw, scope)
			switch {
			case err == nil:
			case errors.Is(err, services.ErrInvalidAPIKey):
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			case errors.Is(err, services.ErrAPIKeyScope):
				writeError(w, http.StatusForbidden, err.Error())
				return
			default:
				slog.Error("failed to verify api key", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, identity *models.DiscordIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func IdentityFromContext(ctx context.Context) *models.DiscordIdentity {
	identity, _ := ctx.Value(identityContextKey).(*models.DiscordIdentity)
	return identity
}

// UserFromContext returns the signed-in user, or nil for anonymous visitors.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

func APIKeyFromContext(ctx context.Context) *models.APIKey {
	key, _ := ctx.Value(apiKeyContextKey).(*models.APIKey)
	return key
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
