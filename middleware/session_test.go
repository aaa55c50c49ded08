package middleware

import (
	"testing"
	"time"

	"github.com/Dosada05/async-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokensRoundTrip(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	identity := models.DiscordIdentity{ID: 185198185990324225, Name: "runner"}

	raw, expires, err := tokens.Issue(identity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, identity, *got)
}

func TestSessionTokensRejectsExpired(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, _, err := tokens.Issue(models.DiscordIdentity{ID: 1})
	require.NoError(t, err)

	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionTokensRejectsForeignSignature(t *testing.T) {
	raw, _, err := NewSessionTokens("other", time.Hour).Issue(models.DiscordIdentity{ID: 1})
	require.NoError(t, err)

	_, err = NewSessionTokens("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = NewSessionTokens("secret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
