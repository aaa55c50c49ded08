package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScopes(t *testing.T) {
	got, err := parseScopes(" asynctournament , ,stats ")
	require.NoError(t, err)
	assert.Equal(t, []string{"asynctournament", "stats"}, got)

	for _, raw := range []string{"", ",", " , "} {
		_, err := parseScopes(raw)
		assert.Error(t, err, "scopes %q", raw)
	}
}
