package services_test

import (
	"context"
	"testing"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/services"
	"github.com/Dosada05/async-tournament/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(s *testutil.Store) *services.Loader {
	return services.NewLoader(s.Tournaments(), s.Pools(), s.Permalinks(), s.Users())
}

func TestLoadRacesBatchesLookups(t *testing.T) {
	f := testutil.NewReviewFixture()
	f.FinishedRace(f.Runner)
	f.FinishedRace(f.Outsider, func(r *models.Race) { r.ReviewedByID = &f.Mod.ID })
	f.FinishedRace(f.Runner)

	races, err := f.Store.Races().List(context.Background(), services.ParseRaceAPIFilter(f.Tournament.ID, nil))
	require.NoError(t, err)
	require.Len(t, races, 3)

	require.NoError(t, newLoader(f.Store).LoadRaces(context.Background(), races, services.AllRaceRelations))

	assert.Equal(t, 1, f.Store.Calls["tournaments.GetByIDs"])
	assert.Equal(t, 1, f.Store.Calls["permalinks.GetByIDs"])
	assert.Equal(t, 1, f.Store.Calls["pools.GetByIDs"])
	assert.Equal(t, 1, f.Store.Calls["users.GetByIDs"])

	for _, race := range races {
		tournament, ok := race.Tournament.Get()
		require.True(t, ok)
		assert.Equal(t, f.Tournament.ID, tournament.ID)

		permalink, ok := race.Permalink.Get()
		require.True(t, ok)
		pool, ok := permalink.Pool.Get()
		require.True(t, ok)
		poolTournament, ok := pool.Tournament.Get()
		require.True(t, ok)
		assert.Equal(t, f.Tournament.ID, poolTournament.ID)

		runner, ok := race.User.Get()
		require.True(t, ok)
		assert.Equal(t, race.UserID, runner.ID)
		assert.True(t, race.ReviewedBy.IsLoaded())
	}

	reviewer, ok := races[1].ReviewedBy.Get()
	require.True(t, ok)
	assert.Equal(t, f.Mod.ID, reviewer.ID)
}

func TestLoadRacesMissingRowsAreLoadedAsAbsent(t *testing.T) {
	f := testutil.NewReviewFixture()
	races := []models.Race{{ID: 1, TournamentID: f.Tournament.ID, UserID: 4242, PermalinkID: 4343}}

	require.NoError(t, newLoader(f.Store).LoadRaces(context.Background(), races, services.AllRaceRelations))

	race := races[0]
	for _, loaded := range []bool{race.User.IsLoaded(), race.Permalink.IsLoaded(), race.ReviewedBy.IsLoaded()} {
		assert.True(t, loaded)
	}
	_, ok := race.User.Get()
	assert.False(t, ok)
	_, ok = race.Permalink.Get()
	assert.False(t, ok)
}

func TestLoadRacesOnlyRequestedRelations(t *testing.T) {
	f := testutil.NewReviewFixture()
	race := f.FinishedRace(f.Runner)

	require.NoError(t, newLoader(f.Store).LoadRace(context.Background(), &race, services.RelUser))

	assert.True(t, race.User.IsLoaded())
	assert.False(t, race.Tournament.IsLoaded())
	assert.False(t, race.Permalink.IsLoaded())
	assert.False(t, race.ReviewedBy.IsLoaded())
	assert.Zero(t, f.Store.Calls["tournaments.GetByIDs"])
}

func TestLoadRacesEmpty(t *testing.T) {
	s := testutil.NewStore()
	require.NoError(t, newLoader(s).LoadRaces(context.Background(), nil, services.AllRaceRelations))
	assert.Empty(t, s.Calls)
}

func TestLoadPermalinks(t *testing.T) {
	f := testutil.NewReviewFixture()
	permalinks := []models.Permalink{f.Permalink}

	require.NoError(t, newLoader(f.Store).LoadPermalinks(context.Background(), permalinks, false))
	pool, ok := permalinks[0].Pool.Get()
	require.True(t, ok)
	assert.False(t, pool.Tournament.IsLoaded())

	require.NoError(t, newLoader(f.Store).LoadPermalinks(context.Background(), permalinks, true))
	pool, ok = permalinks[0].Pool.Get()
	require.True(t, ok)
	assert.True(t, pool.Tournament.IsLoaded())
}
