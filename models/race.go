package models

import "time"

// RaceStatus mirrors the race status column.
type RaceStatus string

const (
	RaceStatusPending      RaceStatus = "pending"
	RaceStatusInProgress   RaceStatus = "in_progress"
	RaceStatusFinished     RaceStatus = "finished"
	RaceStatusForfeit      RaceStatus = "forfeit"
	RaceStatusDisqualified RaceStatus = "disqualified"
)

// ReviewStatus is a reviewer's verdict on a finished race.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Race is a single attempt by a runner at a permalink.
type Race struct {
	ID                int          `json:"id" db:"id"`
	TournamentID      int          `json:"tournament_id" db:"tournament_id"`
	UserID            int          `json:"user_id" db:"user_id"`
	PermalinkID       int          `json:"permalink_id" db:"permalink_id"`
	ThreadID          *int64       `json:"thread_id" db:"thread_id"`
	ThreadOpenTime    *time.Time   `json:"thread_open_time" db:"thread_open_time"`
	ThreadTimeoutTime *time.Time   `json:"thread_timeout_time" db:"thread_timeout_time"`
	StartTime         *time.Time   `json:"start_time" db:"start_time"`
	EndTime           *time.Time   `json:"end_time" db:"end_time"`
	Status            RaceStatus   `json:"status" db:"status"`
	LiveRace          bool         `json:"live_race" db:"live_race"`
	Reattempted       bool         `json:"reattempted" db:"reattempted"`
	RunnerNotes       *string      `json:"runner_notes" db:"runner_notes"`
	RunnerVodURL      *string      `json:"runner_vod_url" db:"runner_vod_url"`
	ReviewStatus      ReviewStatus `json:"review_status" db:"review_status"`
	ReviewedByID      *int         `json:"reviewed_by_id" db:"reviewed_by_id"`
	ReviewedAt        *time.Time   `json:"reviewed_at" db:"reviewed_at"`
	ReviewerNotes     *string      `json:"reviewer_notes" db:"reviewer_notes"`
	CreatedAt         time.Time    `json:"created" db:"created"`
	UpdatedAt         time.Time    `json:"updated" db:"updated"`

	Tournament Ref[Tournament] `json:"-" db:"-"`
	Permalink  Ref[Permalink]  `json:"-" db:"-"`
	User       Ref[User]       `json:"-" db:"-"`
	ReviewedBy Ref[User]       `json:"-" db:"-"`
}

// Elapsed returns the run duration when both timestamps are known.
func (r *Race) Elapsed() (time.Duration, bool) {
	if r.StartTime == nil || r.EndTime == nil {
		return 0, false
	}
	return r.EndTime.Sub(*r.StartTime), true
}

// IsRunner reports whether user ran this race.
func (r *Race) IsRunner(user *User) bool {
	return user != nil && r.UserID == user.ID
}

// IsReviewedBy reports whether user currently holds the review.
func (r *Race) IsReviewedBy(user *User) bool {
	return user != nil && r.ReviewedByID != nil && *r.ReviewedByID == user.ID
}
