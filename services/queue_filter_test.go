package services_test

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
	"github.com/Dosada05/async-tournament/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFilterDefaults(t *testing.T) {
	filter, err := services.QueueFilterParser{}.Parse(7, url.Values{}, nil)
	require.NoError(t, err)

	require.NotNil(t, filter.Status)
	assert.Equal(t, models.RaceStatusFinished, *filter.Status)
	require.NotNil(t, filter.ReviewStatus)
	assert.Equal(t, models.ReviewStatusPending, *filter.ReviewStatus)
	require.NotNil(t, filter.ThreadIsNull)
	assert.False(t, *filter.ThreadIsNull)
	assert.Equal(t, repositories.ReviewerAny, filter.Reviewer)
	assert.True(t, filter.ExcludeReattempted)
	assert.Equal(t, 7, filter.TournamentID)
}

func TestQueueFilterAllDisablesFilters(t *testing.T) {
	params := url.Values{
		"status":        {"all"},
		"reviewed_by":   {"all"},
		"review_status": {"all"},
		"live":          {"all"},
	}
	filter, err := services.QueueFilterParser{}.Parse(1, params, nil)
	require.NoError(t, err)

	assert.Nil(t, filter.Status)
	assert.Nil(t, filter.ReviewStatus)
	assert.Nil(t, filter.ThreadIsNull)
	assert.Equal(t, repositories.ReviewerAny, filter.Reviewer)
	assert.True(t, filter.ExcludeReattempted)
}

func TestQueueFilterReviewer(t *testing.T) {
	requester := &models.User{ID: 42}

	tests := []struct {
		name      string
		params    url.Values
		requester *models.User
		match     repositories.ReviewerMatch
		id        int
	}{
		{"unreviewed", url.Values{"reviewed_by": {"unreviewed"}}, requester, repositories.ReviewerNone, 0},
		{"me", url.Values{"reviewed_by": {"me"}}, requester, repositories.ReviewerIs, 42},
		{"me anonymous matches nobody", url.Values{"reviewed_by": {"me"}}, nil, repositories.ReviewerIs, 0},
		{"numeric", url.Values{"reviewed_by": {"17"}}, requester, repositories.ReviewerIs, 17},
		{"legacy key", url.Values{"reviewed": {"17"}}, requester, repositories.ReviewerIs, 17},
		{"reviewed_by wins over legacy key", url.Values{"reviewed_by": {"me"}, "reviewed": {"17"}}, requester, repositories.ReviewerIs, 42},
		{"garbage ignored", url.Values{"reviewed_by": {"bob"}}, requester, repositories.ReviewerAny, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := services.QueueFilterParser{}.Parse(1, tt.params, tt.requester)
			require.NoError(t, err)
			assert.Equal(t, tt.match, filter.Reviewer)
			assert.Equal(t, tt.id, filter.ReviewerID)
		})
	}
}

func TestQueueFilterStrictRejectsGarbage(t *testing.T) {
	_, err := services.QueueFilterParser{Strict: true}.Parse(1, url.Values{"reviewed_by": {"bob"}}, nil)
	assert.ErrorIs(t, err, services.ErrInvalidFilter)
}

func TestQueueFilterUnknownReviewStatus(t *testing.T) {
	params := url.Values{"review_status": {"maybe"}}

	_, err := services.QueueFilterParser{Strict: true}.Parse(1, params, nil)
	assert.ErrorIs(t, err, services.ErrInvalidFilter)

	filter, err := services.QueueFilterParser{}.Parse(1, params, nil)
	require.NoError(t, err)
	assert.Nil(t, filter.ReviewStatus)

	filter, err = services.QueueFilterParser{Strict: true}.Parse(1, url.Values{"review_status": {"approved"}}, nil)
	require.NoError(t, err)
	require.NotNil(t, filter.ReviewStatus)
	assert.Equal(t, models.ReviewStatusApproved, *filter.ReviewStatus)
}

func TestQueueFilterLive(t *testing.T) {
	filter, err := services.QueueFilterParser{}.Parse(1, url.Values{"live": {"true"}}, nil)
	require.NoError(t, err)
	require.NotNil(t, filter.ThreadIsNull)
	assert.True(t, *filter.ThreadIsNull)

	filter, err = services.QueueFilterParser{}.Parse(1, url.Values{"live": {"yes"}}, nil)
	require.NoError(t, err)
	require.NotNil(t, filter.ThreadIsNull)
	assert.False(t, *filter.ThreadIsNull)
}

func TestQueueParamsEchoesEffectiveValues(t *testing.T) {
	params := services.QueueFilterParser{}.Params(url.Values{"reviewed": {"me"}, "status": {"all"}})
	assert.Equal(t, services.QueueParams{
		Status:       "all",
		ReviewedBy:   "me",
		ReviewStatus: "pending",
		Live:         "false",
	}, params)
}

func TestParseRaceAPIFilter(t *testing.T) {
	params := url.Values{
		"id":              {"3"},
		"discord_user_id": {"123456789012345678"},
		"permalink_id":    {"x"},
		"pool_id":         {"9"},
		"pool_name":       {"Pool A"},
		"status":          {"finished"},
	}
	filter := services.ParseRaceAPIFilter(5, params)

	assert.Equal(t, 5, filter.TournamentID)
	require.NotNil(t, filter.ID)
	assert.Equal(t, 3, *filter.ID)
	require.NotNil(t, filter.DiscordUserID)
	assert.Equal(t, int64(123456789012345678), *filter.DiscordUserID)
	assert.Nil(t, filter.PermalinkID, "non-numeric values are ignored")
	require.NotNil(t, filter.PoolID)
	assert.Equal(t, 9, *filter.PoolID)
	require.NotNil(t, filter.PoolName)
	assert.Equal(t, "Pool A", *filter.PoolName)
	require.NotNil(t, filter.Status)
	assert.Equal(t, models.RaceStatusFinished, *filter.Status)
	assert.False(t, filter.ExcludeReattempted)
}

func TestParsePermalinkAPIFilter(t *testing.T) {
	filter := services.ParsePermalinkAPIFilter(5, url.Values{"permalink": {"https://x"}, "id": {"nope"}})
	assert.Equal(t, 5, filter.TournamentID)
	assert.Nil(t, filter.ID)
	assert.Nil(t, filter.PoolID)
	require.NotNil(t, filter.URL)
	assert.Equal(t, "https://x", *filter.URL)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
