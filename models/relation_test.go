package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef(t *testing.T) {
	var r Ref[User]
	assert.False(t, r.IsLoaded())
	_, ok := r.Get()
	assert.False(t, ok)
	assert.Nil(t, r.Value())

	r.Set(nil)
	assert.True(t, r.IsLoaded())
	_, ok = r.Get()
	assert.False(t, ok)

	u := &User{ID: 7}
	r = Loaded(u)
	got, ok := r.Get()
	assert.True(t, ok)
	assert.Same(t, u, got)
	assert.Same(t, u, r.Value())

	r.Reset()
	assert.False(t, r.IsLoaded())
}

func TestUserName(t *testing.T) {
	name := "Synack"
	assert.Equal(t, "Synack", (&User{ID: 1, DisplayName: &name}).Name())
	assert.Equal(t, "user #2", (&User{ID: 2}).Name())
	assert.Equal(t, "unknown", (*User)(nil).Name())
}

func TestRaceHelpers(t *testing.T) {
	reviewer := 9
	r := Race{UserID: 1, ReviewedByID: &reviewer}

	assert.True(t, r.IsRunner(&User{ID: 1}))
	assert.False(t, r.IsRunner(nil))
	assert.True(t, r.IsReviewedBy(&User{ID: 9}))
	assert.False(t, r.IsReviewedBy(&User{ID: 1}))

	_, ok := r.Elapsed()
	assert.False(t, ok)
}
