package testutil

import (
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/async-tournament/models"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// DiscardLogger swallows everything logged during a test.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ReviewFixture is one tournament with a pool, a permalink and a cast of
// users holding the different roles.
type ReviewFixture struct {
	Store      *Store
	Tournament models.Tournament
	Pool       models.PermalinkPool
	Permalink  models.Permalink

	Admin    models.User
	Mod      models.User
	OtherMod models.User
	Runner   models.User
	Public   models.User
	Outsider models.User
}

func NewReviewFixture() *ReviewFixture {
	s := NewStore()
	f := &ReviewFixture{Store: s}

	f.Tournament = s.AddTournament(models.Tournament{
		Name:              "Spring Async",
		Active:            true,
		GuildID:           111,
		ChannelID:         222,
		OwnerID:           333,
		AllowedReattempts: 1,
		CreatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	f.Pool = s.AddPool(models.PermalinkPool{TournamentID: f.Tournament.ID, Name: "Pool A"})
	f.Permalink = s.AddPermalink(models.Permalink{PoolID: f.Pool.ID, URL: "https://alttpr.com/h/abc"})

	f.Admin = s.AddUser(user(1001, "admin"))
	f.Mod = s.AddUser(user(1002, "mod"))
	f.OtherMod = s.AddUser(user(1003, "other mod"))
	f.Runner = s.AddUser(user(1004, "runner"))
	f.Public = s.AddUser(user(1005, "public"))
	f.Outsider = s.AddUser(user(1006, "outsider"))

	s.Grant(f.Tournament.ID, f.Admin.ID, models.RoleAdmin)
	s.Grant(f.Tournament.ID, f.Mod.ID, models.RoleMod)
	s.Grant(f.Tournament.ID, f.OtherMod.ID, models.RoleMod)
	s.Grant(f.Tournament.ID, f.Public.ID, models.RolePublic)

	return f
}

func user(discordID int64, name string) models.User {
	return models.User{DiscordUserID: Ptr(discordID), DisplayName: Ptr(name)}
}

// FinishedRace stores a finished, unreviewed, async race by runner.
// Options adjust the race before it is stored.
func (f *ReviewFixture) FinishedRace(runner models.User, opts ...func(*models.Race)) models.Race {
	start := time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Minute)
	r := models.Race{
		TournamentID: f.Tournament.ID,
		UserID:       runner.ID,
		PermalinkID:  f.Permalink.ID,
		ThreadID:     Ptr(int64(555)),
		StartTime:    &start,
		EndTime:      &end,
		Status:       models.RaceStatusFinished,
		ReviewStatus: models.ReviewStatusPending,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return f.Store.AddRace(r)
}
