package feed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Subscribe(conn, r.URL.Query().Get("room"), 1)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hub.done
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestRoomForTournament(t *testing.T) {
	assert.Equal(t, "tournament_7", RoomForTournament(7))
}

func TestBroadcastReachesOnlyRoom(t *testing.T) {
	hub, srv := startHub(t)
	a := dial(t, srv, "tournament_1")
	b := dial(t, srv, "tournament_2")
	require.Eventually(t, func() bool {
		return hub.RoomSize("tournament_1") == 1 && hub.RoomSize("tournament_2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom("tournament_1", Message{Type: "PING", RoomID: "tournament_1"})

	msg := readMessage(t, a)
	assert.Equal(t, "PING", msg.Type)

	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "other rooms receive nothing")
}

func TestNotifyReview(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, RoomForTournament(3))
	require.Eventually(t, func() bool { return hub.RoomSize(RoomForTournament(3)) == 1 }, 2*time.Second, 10*time.Millisecond)

	race := &models.Race{ID: 11, TournamentID: 3, ReviewStatus: models.ReviewStatusApproved}
	hub.NotifyReview(context.Background(), services.ReviewEvent{
		Type:         services.EventRaceReviewed,
		TournamentID: 3,
		Race:         race,
		Reviewer:     &models.User{ID: 2},
	})

	msg := readMessage(t, conn)
	assert.Equal(t, string(services.EventRaceReviewed), msg.Type)
	assert.Equal(t, "tournament_3", msg.RoomID)

	raw, err := json.Marshal(msg.Payload)
	require.NoError(t, err)
	var payload struct {
		Race     map[string]any `json:"race"`
		Reviewer map[string]any `json:"reviewer"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, float64(11), payload.Race["id"])
	assert.Equal(t, "approved", payload.Race["review_status"])
	assert.Equal(t, float64(2), payload.Reviewer["id"])
}

func TestDisconnectLeavesRoom(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "tournament_1")
	require.Eventually(t, func() bool { return hub.RoomSize("tournament_1") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize("tournament_1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Subscribe(conn, "tournament_1", 1)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.RoomSize("tournament_1"))
}
