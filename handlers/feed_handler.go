package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Dosada05/async-tournament/feed"
	"github.com/Dosada05/async-tournament/middleware"
	"github.com/Dosada05/async-tournament/models"
	"github.com/gorilla/websocket"
)

// ReviewAuthorizer decides who may watch a tournament's review feed.
type ReviewAuthorizer interface {
	CanReview(ctx context.Context, tournamentID int, user *models.User) (bool, error)
}

// FeedHandler upgrades authorised reviewers to the live review feed.
type FeedHandler struct {
	hub      *feed.Hub
	policy   ReviewAuthorizer
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewFeedHandler(hub *feed.Hub, policy ReviewAuthorizer, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		hub:    hub,
		policy: policy,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// ServeWs subscribes the reviewer to /races/{tournament_id}/feed.
func (h *FeedHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournament_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	user := middleware.UserFromContext(r.Context())

	ok, err := h.policy.CanReview(r.Context(), tournamentID, user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if !ok {
		forbiddenResponse(w, r, "you are not authorized to view this tournament")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.WarnContext(r.Context(), "feed upgrade failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	room := feed.RoomForTournament(tournamentID)
	h.hub.Subscribe(conn, room, user.ID)
	h.logger.InfoContext(r.Context(), "reviewer joined feed", slog.String("room", room), slog.Int("reviewer_id", user.ID))
}

// originChecker allows same-host requests and the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
