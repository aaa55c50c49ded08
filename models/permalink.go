package models

import "time"

// PermalinkPool groups the permalinks played in one phase of a tournament.
type PermalinkPool struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created" db:"created"`
	UpdatedAt    time.Time `json:"updated" db:"updated"`

	Tournament Ref[Tournament] `json:"-" db:"-"`
}

// Permalink points at a generated seed configuration a runner can play.
type Permalink struct {
	ID        int       `json:"id" db:"id"`
	PoolID    int       `json:"pool_id" db:"pool_id"`
	URL       string    `json:"permalink" db:"url"`
	LiveRace  bool      `json:"live_race" db:"live_race"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created" db:"created"`
	UpdatedAt time.Time `json:"updated" db:"updated"`

	Pool Ref[PermalinkPool] `json:"-" db:"-"`
}
