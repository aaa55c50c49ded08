package repositories

import (
	"strings"
	"testing"

	"github.com/Dosada05/async-tournament/models"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilderNumbersPlaceholders(t *testing.T) {
	var b whereBuilder
	assert.Empty(t, b.sql())

	b.add("a = ?", 1)
	b.add("b IS NULL")
	b.add("c BETWEEN ? AND ?", 2, 3)

	assert.Equal(t, " WHERE a = $1 AND b IS NULL AND c BETWEEN $2 AND $3", b.sql())
	assert.Equal(t, []interface{}{1, 2, 3}, b.args)
}

func TestBuildRaceListQueryMinimal(t *testing.T) {
	query, args := buildRaceListQuery(RaceFilter{TournamentID: 4})

	assert.Contains(t, query, "WHERE r.tournament_id = $1 ORDER BY r.created, r.id")
	assert.Equal(t, []interface{}{4}, args)
}

func TestBuildRaceListQueryReviewQueue(t *testing.T) {
	status := models.RaceStatusFinished
	review := models.ReviewStatusPending
	live := false

	query, args := buildRaceListQuery(RaceFilter{
		TournamentID:       4,
		Status:             &status,
		ReviewStatus:       &review,
		ThreadIsNull:       &live,
		Reviewer:           ReviewerIs,
		ReviewerID:         9,
		ExcludeReattempted: true,
	})

	where := query[strings.Index(query, "WHERE"):]
	assert.Equal(t,
		"WHERE r.tournament_id = $1 AND r.reattempted = FALSE AND r.status = $2 AND r.review_status = $3"+
			" AND r.reviewed_by_id = $4 AND r.thread_id IS NOT NULL ORDER BY r.created, r.id",
		where)
	assert.Equal(t, []interface{}{4, "finished", "pending", 9}, args)
}

func TestBuildRaceListQueryAPIFilters(t *testing.T) {
	id, permalinkID, poolID := 1, 2, 3
	discordID := int64(185198185990324225)
	poolName := "Pool A"

	query, args := buildRaceListQuery(RaceFilter{
		TournamentID:  4,
		ID:            &id,
		DiscordUserID: &discordID,
		PermalinkID:   &permalinkID,
		PoolID:        &poolID,
		PoolName:      &poolName,
		Reviewer:      ReviewerNone,
	})

	assert.Contains(t, query, "u.discord_user_id = $3")
	assert.Contains(t, query, "pp.name = $6")
	assert.Contains(t, query, "r.reviewed_by_id IS NULL")
	assert.NotContains(t, query, "reattempted =")
	assert.Equal(t, []interface{}{4, 1, discordID, 2, 3, "Pool A"}, args)
}

func TestBuildPermalinkListQuery(t *testing.T) {
	url := "https://alttpr.com/h/abc"
	query, args := buildPermalinkListQuery(ListPermalinksFilter{TournamentID: 4, URL: &url})

	assert.Contains(t, query, "WHERE pp.tournament_id = $1 AND p.url = $2 ORDER BY p.id")
	assert.Equal(t, []interface{}{4, url}, args)
}
