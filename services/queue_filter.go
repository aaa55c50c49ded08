package services

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
)

const filterAll = "all"

// Queue filter defaults, applied when a key is absent from the request.
const (
	DefaultQueueStatus       = string(models.RaceStatusFinished)
	DefaultQueueReviewedBy   = filterAll
	DefaultQueueReviewStatus = string(models.ReviewStatusPending)
	DefaultQueueLive         = "false"
)

// QueueFilterParser turns review queue query parameters into a RaceFilter.
//
// In lenient mode (Strict == false) a malformed value disables its filter
// instead of failing the request.
type QueueFilterParser struct {
	Strict bool
}

// QueueParams echoes the effective filter values back to the view.
type QueueParams struct {
	Status       string
	ReviewedBy   string
	ReviewStatus string
	Live         string
}

func paramOr(params url.Values, key, def string) string {
	if params.Has(key) {
		return params.Get(key)
	}
	return def
}

// Params resolves the effective values, honouring "reviewed" as an alias of "reviewed_by".
func (p QueueFilterParser) Params(params url.Values) QueueParams {
	reviewedBy := paramOr(params, "reviewed_by", "")
	if !params.Has("reviewed_by") {
		reviewedBy = paramOr(params, "reviewed", DefaultQueueReviewedBy)
	}
	return QueueParams{
		Status:       paramOr(params, "status", DefaultQueueStatus),
		ReviewedBy:   reviewedBy,
		ReviewStatus: paramOr(params, "review_status", DefaultQueueReviewStatus),
		Live:         paramOr(params, "live", DefaultQueueLive),
	}
}

// Parse builds the queue filter. Reattempted races are always excluded.
func (p QueueFilterParser) Parse(tournamentID int, params url.Values, requester *models.User) (repositories.RaceFilter, error) {
	qp := p.Params(params)
	filter := repositories.RaceFilter{
		TournamentID:       tournamentID,
		ExcludeReattempted: true,
	}

	if qp.Status != filterAll {
		status := models.RaceStatus(qp.Status)
		filter.Status = &status
	}

	switch qp.ReviewedBy {
	case filterAll:
	case "unreviewed":
		filter.Reviewer = repositories.ReviewerNone
	case "me":
		filter.Reviewer = repositories.ReviewerIs
		if requester != nil {
			filter.ReviewerID = requester.ID
		}
	default:
		id, err := strconv.Atoi(qp.ReviewedBy)
		if err != nil {
			if p.Strict {
				return repositories.RaceFilter{}, fmt.Errorf("%w: reviewed_by=%q", ErrInvalidFilter, qp.ReviewedBy)
			}
			break
		}
		filter.Reviewer = repositories.ReviewerIs
		filter.ReviewerID = id
	}

	if qp.ReviewStatus != filterAll {
		reviewStatus := models.ReviewStatus(qp.ReviewStatus)
		switch {
		case validReviewStatus(reviewStatus):
			filter.ReviewStatus = &reviewStatus
		case p.Strict:
			return repositories.RaceFilter{}, fmt.Errorf("%w: review_status=%q", ErrInvalidFilter, qp.ReviewStatus)
		}
	}

	if qp.Live != filterAll {
		threadIsNull := qp.Live == "true"
		filter.ThreadIsNull = &threadIsNull
	}

	return filter, nil
}

// ParseRaceAPIFilter builds the filter for the JSON race listing.
// Numeric keys that do not parse are ignored.
func ParseRaceAPIFilter(tournamentID int, params url.Values) repositories.RaceFilter {
	filter := repositories.RaceFilter{TournamentID: tournamentID}

	filter.ID = intParam(params, "id")
	filter.PermalinkID = intParam(params, "permalink_id")
	filter.PoolID = intParam(params, "pool_id")

	if raw := params.Get("discord_user_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.DiscordUserID = &v
		}
	}
	if raw := params.Get("pool_name"); raw != "" {
		filter.PoolName = &raw
	}
	if raw := params.Get("status"); raw != "" {
		status := models.RaceStatus(raw)
		filter.Status = &status
	}
	return filter
}

// ParsePermalinkAPIFilter builds the filter for the JSON permalink listing.
func ParsePermalinkAPIFilter(tournamentID int, params url.Values) repositories.ListPermalinksFilter {
	filter := repositories.ListPermalinksFilter{
		TournamentID: tournamentID,
		ID:           intParam(params, "id"),
		PoolID:       intParam(params, "pool_id"),
	}
	if raw := params.Get("permalink"); raw != "" {
		filter.URL = &raw
	}
	return filter
}

func intParam(params url.Values, key string) *int {
	raw := params.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
