package services_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
	"github.com/Dosada05/async-tournament/services"
	"github.com/Dosada05/async-tournament/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(s *testutil.Store, discord services.DiscordOAuthConfig) *services.AuthService {
	return services.NewAuthService(s.APIKeys(), s.Users(), nil, discord)
}

func TestIssueAndVerifyAPIKey(t *testing.T) {
	s := testutil.NewStore()
	svc := newAuthService(s, services.DiscordOAuthConfig{})
	ctx := context.Background()

	raw, err := svc.IssueAPIKey(ctx, "stats bot", []string{services.APIScopeAsyncTournament})
	require.NoError(t, err)

	key, err := svc.VerifyAPIKey(ctx, raw, services.APIScopeAsyncTournament)
	require.NoError(t, err)
	assert.Equal(t, "stats bot", key.Name)

	_, err = svc.VerifyAPIKey(ctx, raw, "racetime")
	assert.ErrorIs(t, err, services.ErrAPIKeyScope)

	id, _, _ := strings.Cut(raw, ".")
	_, err = svc.VerifyAPIKey(ctx, id+".wrong", services.APIScopeAsyncTournament)
	assert.ErrorIs(t, err, services.ErrInvalidAPIKey)

	_, err = svc.IssueAPIKey(ctx, "stats bot", nil)
	assert.ErrorIs(t, err, repositories.ErrAPIKeyNameConflict)
}

func TestVerifyAPIKeyMalformed(t *testing.T) {
	s := testutil.NewStore()
	svc := newAuthService(s, services.DiscordOAuthConfig{})

	for _, raw := range []string{"", "nodot", "abc.secret", "0.secret", "-1.secret", "1.", "99.secret"} {
		_, err := svc.VerifyAPIKey(context.Background(), raw, services.APIScopeAsyncTournament)
		assert.ErrorIs(t, err, services.ErrInvalidAPIKey, raw)
	}
}

func TestVerifyAPIKeyAgainstStoredHash(t *testing.T) {
	s := testutil.NewStore()
	hash, err := services.HashAPIKeySecret("s3cret")
	require.NoError(t, err)
	key := s.AddAPIKey(models.APIKey{Name: "legacy", KeyHash: hash, Scopes: []string{"asynctournament"}})
	svc := newAuthService(s, services.DiscordOAuthConfig{})

	got, err := svc.VerifyAPIKey(context.Background(), itoa(key.ID)+".s3cret", services.APIScopeAsyncTournament)
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)
}

func TestCurrentUser(t *testing.T) {
	f := testutil.NewReviewFixture()
	svc := newAuthService(f.Store, services.DiscordOAuthConfig{})
	ctx := context.Background()

	user, err := svc.CurrentUser(ctx, &models.DiscordIdentity{ID: *f.Mod.DiscordUserID, Name: "mod"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, f.Mod.ID, user.ID)

	user, err = svc.CurrentUser(ctx, &models.DiscordIdentity{ID: 1})
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.CurrentUser(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestLoginURL(t *testing.T) {
	s := testutil.NewStore()

	_, err := newAuthService(s, services.DiscordOAuthConfig{}).LoginURL("state")
	assert.ErrorIs(t, err, services.ErrLoginNotConfigured)

	_, err = newAuthService(s, services.DiscordOAuthConfig{}).CompleteLogin(context.Background(), "code")
	assert.ErrorIs(t, err, services.ErrLoginNotConfigured)

	svc := newAuthService(s, services.DiscordOAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://async.example.com/callback",
	})
	raw, err := svc.LoginURL("xyz")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "discord.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
	assert.Equal(t, "identify", u.Query().Get("scope"))
	assert.Equal(t, "https://async.example.com/callback", u.Query().Get("redirect_uri"))
}
