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

func TestCanReview(t *testing.T) {
	f := testutil.NewReviewFixture()
	policy := services.NewAccessPolicy(f.Store.Permissions())

	tests := []struct {
		name string
		user models.User
		want bool
	}{
		{"admin", f.Admin, true},
		{"mod", f.Mod, true},
		{"public role", f.Public, false},
		{"no grant", f.Outsider, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			ok, err := policy.CanReview(context.Background(), f.Tournament.ID, &user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCanReviewIsScopedToTournament(t *testing.T) {
	f := testutil.NewReviewFixture()
	other := f.Store.AddTournament(models.Tournament{Name: "Other"})
	policy := services.NewAccessPolicy(f.Store.Permissions())

	ok, err := policy.CanReview(context.Background(), other.ID, &f.Admin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanReviewAnonymousSkipsStore(t *testing.T) {
	f := testutil.NewReviewFixture()
	policy := services.NewAccessPolicy(f.Store.Permissions())

	ok, err := policy.CanReview(context.Background(), f.Tournament.ID, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f.Store.Calls["permissions.HasRole"])
}

func TestRequire(t *testing.T) {
	f := testutil.NewReviewFixture()
	policy := services.NewAccessPolicy(f.Store.Permissions())

	assert.NoError(t, policy.Require(context.Background(), f.Tournament.ID, &f.Mod, services.CapabilityReviewRaces))
	assert.ErrorIs(t, policy.Require(context.Background(), f.Tournament.ID, &f.Runner, services.CapabilityReviewRaces), services.ErrNotAuthorized)
	assert.ErrorIs(t, policy.Require(context.Background(), f.Tournament.ID, &f.Admin, services.Capability("unknown")), services.ErrNotAuthorized)
}

func TestRolesFor(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.PermissionRole{models.RoleAdmin, models.RoleMod},
		services.RolesFor(services.CapabilityReviewRaces),
	)
	assert.Empty(t, services.RolesFor(services.Capability("unknown")))
}
