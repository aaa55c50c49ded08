package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// APIScopeAsyncTournament grants read access to the async tournament API.
const APIScopeAsyncTournament = "asynctournament"

const apiKeySecretBytes = 24

type DiscordOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type AuthService struct {
	apiKeyRepo repositories.APIKeyRepository
	userRepo   repositories.UserRepository
	identity   IdentityProvider
	oauth      *oauth2.Config
}

func NewAuthService(
	apiKeyRepo repositories.APIKeyRepository,
	userRepo repositories.UserRepository,
	identity IdentityProvider,
	discord DiscordOAuthConfig,
) *AuthService {
	s := &AuthService{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
		identity:   identity,
	}
	if discord.ClientID != "" && discord.ClientSecret != "" && discord.RedirectURL != "" {
		s.oauth = &oauth2.Config{
			ClientID:     discord.ClientID,
			ClientSecret: discord.ClientSecret,
			RedirectURL:  discord.RedirectURL,
			Endpoint:     endpoints.Discord,
			Scopes:       []string{"identify"},
		}
	}
	return s
}

// LoginURL returns the Discord consent page carrying state.
func (s *AuthService) LoginURL(state string) (string, error) {
	if s.oauth == nil {
		return "", ErrLoginNotConfigured
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// CompleteLogin exchanges an authorization code for the caller's Discord identity.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*models.DiscordIdentity, error) {
	if s.oauth == nil {
		return nil, ErrLoginNotConfigured
	}
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", ErrAuthenticationFailed, err)
	}
	identity, err := s.identity.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return identity, nil
}

// CurrentUser maps a session identity to a known user.
// It returns nil without error when the bot has never seen the account.
func (s *AuthService) CurrentUser(ctx context.Context, identity *models.DiscordIdentity) (*models.User, error) {
	if identity == nil {
		return nil, nil
	}
	user, err := s.userRepo.GetByDiscordID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// VerifyAPIKey checks a "<id>.<secret>" key and that it carries scope.
func (s *AuthService) VerifyAPIKey(ctx context.Context, raw, scope string) (*models.APIKey, error) {
	idPart, secret, ok := strings.Cut(raw, ".")
	if !ok || secret == "" {
		return nil, ErrInvalidAPIKey
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return nil, ErrInvalidAPIKey
	}

	key, err := s.apiKeyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAPIKeyNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to compare api key hash: %w", err)
	}

	if !key.HasScope(scope) {
		return nil, ErrAPIKeyScope
	}
	return key, nil
}

// HashAPIKeySecret hashes the secret half of a new API key for storage.
func HashAPIKeySecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}

// IssueAPIKey creates a key with the given scopes and returns it in its
// presentable "<id>.<secret>" form. The secret is not recoverable afterwards.
func (s *AuthService) IssueAPIKey(ctx context.Context, name string, scopes []string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("api key name is required")
	}
	buf := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	hash, err := HashAPIKeySecret(secret)
	if err != nil {
		return "", err
	}
	key := &models.APIKey{Name: name, KeyHash: hash, Scopes: scopes}
	if err := s.apiKeyRepo.Create(ctx, key); err != nil {
		return "", err
	}
	return strconv.Itoa(key.ID) + "." + secret, nil
}
