package services_test

import (
	"context"
	"testing"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
	"github.com/Dosada05/async-tournament/services"
	"github.com/Dosada05/async-tournament/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentService(s *testutil.Store) *services.TournamentService {
	return services.NewTournamentService(s.Tournaments(), s.Pools(), s.Permalinks(), s.Races(), s.Whitelist(), newLoader(s))
}

func TestListTournamentsActiveFilter(t *testing.T) {
	f := testutil.NewReviewFixture()
	inactive := f.Store.AddTournament(models.Tournament{Name: "Old"})
	svc := newTournamentService(f.Store)

	all, err := svc.ListTournaments(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListTournaments(context.Background(), testutil.Ptr(true))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, f.Tournament.ID, active[0].ID)

	closed, err := svc.ListTournaments(context.Background(), testutil.Ptr(false))
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, inactive.ID, closed[0].ID)
}

func TestGetTournamentNotFound(t *testing.T) {
	svc := newTournamentService(testutil.NewStore())
	_, err := svc.GetTournament(context.Background(), 1)
	assert.ErrorIs(t, err, services.ErrTournamentNotFound)
}

func TestListRacesIncludesReattempted(t *testing.T) {
	f := testutil.NewReviewFixture()
	f.FinishedRace(f.Runner)
	f.FinishedRace(f.Runner, func(r *models.Race) { r.Reattempted = true })
	svc := newTournamentService(f.Store)

	races, err := svc.ListRaces(context.Background(), repositories.RaceFilter{TournamentID: f.Tournament.ID})
	require.NoError(t, err)
	require.Len(t, races, 2)
	for _, r := range races {
		assert.True(t, r.Tournament.IsLoaded())
		assert.True(t, r.Permalink.IsLoaded())
		assert.True(t, r.User.IsLoaded())
		assert.True(t, r.ReviewedBy.IsLoaded())
	}
}

func TestListRacesByDiscordUserAndPool(t *testing.T) {
	f := testutil.NewReviewFixture()
	otherPool := f.Store.AddPool(models.PermalinkPool{TournamentID: f.Tournament.ID, Name: "Pool B"})
	otherPermalink := f.Store.AddPermalink(models.Permalink{PoolID: otherPool.ID, URL: "https://alttpr.com/h/def"})
	want := f.FinishedRace(f.Runner, func(r *models.Race) { r.PermalinkID = otherPermalink.ID })
	f.FinishedRace(f.Runner)
	f.FinishedRace(f.Outsider, func(r *models.Race) { r.PermalinkID = otherPermalink.ID })
	svc := newTournamentService(f.Store)

	races, err := svc.ListRaces(context.Background(), repositories.RaceFilter{
		TournamentID:  f.Tournament.ID,
		DiscordUserID: f.Runner.DiscordUserID,
		PoolName:      testutil.Ptr("Pool B"),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{want.ID}, raceIDs(races))
}

func TestPoolsAndPermalinks(t *testing.T) {
	f := testutil.NewReviewFixture()
	other := f.Store.AddTournament(models.Tournament{Name: "Other"})
	otherPool := f.Store.AddPool(models.PermalinkPool{TournamentID: other.ID, Name: "Elsewhere"})
	otherPermalink := f.Store.AddPermalink(models.Permalink{PoolID: otherPool.ID, URL: "https://x"})
	svc := newTournamentService(f.Store)
	ctx := context.Background()

	pools, err := svc.ListPools(ctx, f.Tournament.ID)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.True(t, pools[0].Tournament.IsLoaded())

	pool, err := svc.GetPool(ctx, f.Tournament.ID, f.Pool.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pool A", pool.Name)

	_, err = svc.GetPool(ctx, f.Tournament.ID, otherPool.ID)
	assert.ErrorIs(t, err, services.ErrPoolNotFound)

	permalink, err := svc.GetPermalink(ctx, f.Tournament.ID, f.Permalink.ID)
	require.NoError(t, err)
	permalinkPool, ok := permalink.Pool.Get()
	require.True(t, ok)
	assert.True(t, permalinkPool.Tournament.IsLoaded())

	_, err = svc.GetPermalink(ctx, f.Tournament.ID, otherPermalink.ID)
	assert.ErrorIs(t, err, services.ErrPermalinkNotFound)

	permalinks, err := svc.ListPermalinks(ctx, services.ParsePermalinkAPIFilter(f.Tournament.ID, nil))
	require.NoError(t, err)
	require.Len(t, permalinks, 1)
	assert.Equal(t, f.Permalink.ID, permalinks[0].ID)
}

func TestListWhitelist(t *testing.T) {
	f := testutil.NewReviewFixture()
	f.Store.AddWhitelist(f.Tournament.ID, f.Runner.ID)
	f.Store.AddWhitelist(f.Tournament.ID, 9999)
	svc := newTournamentService(f.Store)

	entries, err := svc.ListWhitelist(context.Background(), f.Tournament.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	user, ok := entries[0].User.Get()
	require.True(t, ok)
	assert.Equal(t, f.Runner.ID, user.ID)
	assert.True(t, entries[0].Tournament.IsLoaded())

	assert.True(t, entries[1].User.IsLoaded())
	_, ok = entries[1].User.Get()
	assert.False(t, ok)
}
