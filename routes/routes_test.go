package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/async-tournament/feed"
	"github.com/Dosada05/async-tournament/handlers"
	"github.com/Dosada05/async-tournament/middleware"
	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/routes"
	"github.com/Dosada05/async-tournament/services"
	"github.com/Dosada05/async-tournament/testutil"
	"github.com/Dosada05/async-tournament/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type app struct {
	router   http.Handler
	fixture  *testutil.ReviewFixture
	sessions *middleware.SessionTokens
	apiKey   string
}

func newApp(t *testing.T) *app {
	t.Helper()
	return newAppWithLimiter(t, middleware.NewRateLimiter(100, 100))
}

func newAppWithLimiter(t *testing.T, limiter *middleware.RateLimiter) *app {
	t.Helper()
	f := testutil.NewReviewFixture()
	s := f.Store
	logger := testutil.DiscardLogger()

	loader := services.NewLoader(s.Tournaments(), s.Pools(), s.Permalinks(), s.Users())
	policy := services.NewAccessPolicy(s.Permissions())
	auth := services.NewAuthService(s.APIKeys(), s.Users(), nil, services.DiscordOAuthConfig{})
	apiKey, err := auth.IssueAPIKey(context.Background(), "stats", []string{services.APIScopeAsyncTournament})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := feed.NewHub(logger)
	go hub.Run(ctx)

	pages, err := web.NewRenderer()
	require.NoError(t, err)
	sessions := middleware.NewSessionTokens("test-secret", time.Hour)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		routes.Security{
			Sessions:    sessions,
			Users:       auth,
			APIKeys:     auth,
			RateLimiter: limiter,
		},
		handlers.NewAPIHandler(services.NewTournamentService(s.Tournaments(), s.Pools(), s.Permalinks(), s.Races(), s.Whitelist(), loader)),
		handlers.NewReviewHandler(services.NewReviewService(s.Tournaments(), s.Races(), policy, loader, services.QueueFilterParser{}, hub, logger), pages, logger),
		handlers.NewAuthHandler(auth, sessions, false, logger),
		handlers.NewFeedHandler(hub, policy, nil, logger),
		handlers.NewHealthHandler(okPinger{}),
	)
	return &app{router: router, fixture: f, sessions: sessions, apiKey: apiKey}
}

func (a *app) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *app) asUser(t *testing.T, req *http.Request, u models.User) *http.Request {
	t.Helper()
	token, _, err := a.sessions.Issue(models.DiscordIdentity{ID: *u.DiscordUserID, Name: u.Name()})
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	return req
}

func TestAPIRequiresKey(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, httptest.NewRequest(http.MethodGet, "/api/tournaments", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tournaments", nil)
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	rec = a.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Spring Async")
}

func TestAPIThrottlesBadSecrets(t *testing.T) {
	a := newAppWithLimiter(t, middleware.NewRateLimiter(0.001, 2))
	keyID, _, ok := strings.Cut(a.apiKey, ".")
	require.True(t, ok)

	codes := map[int]int{}
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/tournaments", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		req.Header.Set("Authorization", "Bearer "+keyID+".wrongsecret"+strconv.Itoa(i))
		codes[a.do(t, req).Code]++
	}
	assert.Equal(t, map[int]int{http.StatusUnauthorized: 2, http.StatusTooManyRequests: 4}, codes)

	req := httptest.NewRequest(http.MethodGet, "/api/tournaments", nil)
	req.RemoteAddr = "198.51.100.7:5000"
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	assert.Equal(t, http.StatusOK, a.do(t, req).Code)
}

func TestAPINonNumericIDIsNotFound(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tournaments/abc", nil)
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	assert.Equal(t, http.StatusNotFound, a.do(t, req).Code)
}

func TestReviewPagesRequireSession(t *testing.T) {
	a := newApp(t)
	target := "/races/" + strconv.Itoa(a.fixture.Tournament.ID) + "/"

	rec := a.do(t, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?next=")

	rec = a.do(t, a.asUser(t, httptest.NewRequest(http.MethodGet, target, nil), a.fixture.Mod))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Review Queue")

	rec = a.do(t, a.asUser(t, httptest.NewRequest(http.MethodGet, target, nil), a.fixture.Runner))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMeReportsSession(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, a.asUser(t, httptest.NewRequest(http.MethodGet, "/me", nil), a.fixture.Admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"known_user": true`)
}

func TestLoginWithoutDiscordConfig(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, http.StatusOK, a.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}
