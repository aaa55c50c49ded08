package services

import (
	"context"

	"github.com/Dosada05/async-tournament/models"
)

// ReviewEventType names a change in a race's review lifecycle.
type ReviewEventType string

const (
	EventRaceClaimed  ReviewEventType = "RACE_CLAIMED"
	EventRaceReviewed ReviewEventType = "RACE_REVIEWED"
)

// ReviewEvent is published after a claim or decision has been persisted.
type ReviewEvent struct {
	Type         ReviewEventType
	TournamentID int
	Race         *models.Race
	Reviewer     *models.User
}

// ReviewNotifier fans review events out to interested reviewers.
// Implementations must not block the request.
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, event ReviewEvent)
}

type nopNotifier struct{}

func (nopNotifier) NotifyReview(context.Context, ReviewEvent) {}
