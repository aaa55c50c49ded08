package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/async-tournament/models"
)

var ErrRaceNotFound = errors.New("race not found")

// ReviewerMatch selects how RaceFilter constrains reviewed_by_id.
type ReviewerMatch int

const (
	ReviewerAny ReviewerMatch = iota
	ReviewerNone
	ReviewerIs
)

// RaceFilter narrows races to one tournament; nil fields are ignored.
type RaceFilter struct {
	TournamentID int

	ID            *int
	DiscordUserID *int64
	PermalinkID   *int
	PoolID        *int
	PoolName      *string
	Status        *models.RaceStatus
	ReviewStatus  *models.ReviewStatus
	ThreadIsNull  *bool

	Reviewer   ReviewerMatch
	ReviewerID int

	ExcludeReattempted bool
}

// ReviewUpdate is the verdict written by a reviewer.
type ReviewUpdate struct {
	ReviewStatus  models.ReviewStatus
	ReviewerNotes *string
	ReviewedAt    time.Time
	ReviewedByID  int
}

type RaceRepository interface {
	List(ctx context.Context, filter RaceFilter) ([]models.Race, error)
	GetByID(ctx context.Context, tournamentID, raceID int) (*models.Race, error)
	// ClaimForReview sets the reviewer only if nobody holds the race yet.
	ClaimForReview(ctx context.Context, raceID, reviewerID int) (bool, error)
	SaveReview(ctx context.Context, raceID int, update ReviewUpdate) error
}

type postgresRaceRepository struct {
	db SQLExecutor
}

func NewPostgresRaceRepository(db *sql.DB) RaceRepository {
	return &postgresRaceRepository{db: db}
}

const raceColumns = `
	r.id, r.tournament_id, r.user_id, r.permalink_id, r.thread_id, r.thread_open_time,
	r.thread_timeout_time, r.start_time, r.end_time, r.status, r.live_race, r.reattempted,
	r.runner_notes, r.runner_vod_url, r.review_status, r.reviewed_by_id, r.reviewed_at,
	r.reviewer_notes, r.created, r.updated`

const raceFrom = `
	FROM async_tournament_race r
	LEFT JOIN users u ON u.id = r.user_id
	LEFT JOIN async_tournament_permalink p ON p.id = r.permalink_id
	LEFT JOIN async_tournament_permalink_pool pp ON pp.id = p.pool_id`

func scanRace(row rowScanner) (*models.Race, error) {
	var r models.Race
	err := row.Scan(
		&r.ID, &r.TournamentID, &r.UserID, &r.PermalinkID, &r.ThreadID, &r.ThreadOpenTime,
		&r.ThreadTimeoutTime, &r.StartTime, &r.EndTime, &r.Status, &r.LiveRace, &r.Reattempted,
		&r.RunnerNotes, &r.RunnerVodURL, &r.ReviewStatus, &r.ReviewedByID, &r.ReviewedAt,
		&r.ReviewerNotes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func buildRaceListQuery(filter RaceFilter) (string, []interface{}) {
	var where whereBuilder
	where.add("r.tournament_id = ?", filter.TournamentID)

	if filter.ExcludeReattempted {
		where.add("r.reattempted = FALSE")
	}
	if filter.ID != nil {
		where.add("r.id = ?", *filter.ID)
	}
	if filter.DiscordUserID != nil {
		where.add("u.discord_user_id = ?", *filter.DiscordUserID)
	}
	if filter.PermalinkID != nil {
		where.add("r.permalink_id = ?", *filter.PermalinkID)
	}
	if filter.PoolID != nil {
		where.add("p.pool_id = ?", *filter.PoolID)
	}
	if filter.PoolName != nil {
		where.add("pp.name = ?", *filter.PoolName)
	}
	if filter.Status != nil {
		where.add("r.status = ?", string(*filter.Status))
	}
	if filter.ReviewStatus != nil {
		where.add("r.review_status = ?", string(*filter.ReviewStatus))
	}
	switch filter.Reviewer {
	case ReviewerNone:
		where.add("r.reviewed_by_id IS NULL")
	case ReviewerIs:
		where.add("r.reviewed_by_id = ?", filter.ReviewerID)
	}
	if filter.ThreadIsNull != nil {
		if *filter.ThreadIsNull {
			where.add("r.thread_id IS NULL")
		} else {
			where.add("r.thread_id IS NOT NULL")
		}
	}

	return `SELECT ` + raceColumns + raceFrom + where.sql() + ` ORDER BY r.created, r.id`, where.args
}

func (r *postgresRaceRepository) List(ctx context.Context, filter RaceFilter) ([]models.Race, error) {
	query, args := buildRaceListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list races for tournament %d: %w", filter.TournamentID, err)
	}
	defer rows.Close()

	races := make([]models.Race, 0)
	for rows.Next() {
		race, scanErr := scanRace(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan race: %w", scanErr)
		}
		races = append(races, *race)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during race rows iteration: %w", err)
	}
	return races, nil
}

func (r *postgresRaceRepository) GetByID(ctx context.Context, tournamentID, raceID int) (*models.Race, error) {
	query := `SELECT ` + raceColumns + raceFrom + ` WHERE r.tournament_id = $1 AND r.id = $2`

	race, err := scanRace(r.db.QueryRowContext(ctx, query, tournamentID, raceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to get race %d: %w", raceID, err)
	}
	return race, nil
}

func (r *postgresRaceRepository) ClaimForReview(ctx context.Context, raceID, reviewerID int) (bool, error) {
	query := `
		UPDATE async_tournament_race
		SET reviewed_by_id = $1, updated = NOW()
		WHERE id = $2 AND reviewed_by_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, reviewerID, raceID)
	if err != nil {
		return false, fmt.Errorf("failed to claim race %d: %w", raceID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresRaceRepository) SaveReview(ctx context.Context, raceID int, update ReviewUpdate) error {
	query := `
		UPDATE async_tournament_race
		SET review_status = $1, reviewer_notes = $2, reviewed_at = $3, reviewed_by_id = $4, updated = NOW()
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		string(update.ReviewStatus), update.ReviewerNotes, update.ReviewedAt, update.ReviewedByID, raceID,
	)
	if err != nil {
		return fmt.Errorf("failed to save review for race %d: %w", raceID, err)
	}
	return checkAffectedRows(result, ErrRaceNotFound)
}
