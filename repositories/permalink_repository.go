package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
	"github.com/lib/pq"
)

var ErrPermalinkNotFound = errors.New("permalink not found")

// ListPermalinksFilter narrows permalinks to one tournament; nil fields are ignored.
type ListPermalinksFilter struct {
	TournamentID int
	ID           *int
	URL          *string
	PoolID       *int
}

type PermalinkRepository interface {
	List(ctx context.Context, filter ListPermalinksFilter) ([]models.Permalink, error)
	GetByID(ctx context.Context, tournamentID, permalinkID int) (*models.Permalink, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]*models.Permalink, error)
}

type postgresPermalinkRepository struct {
	db SQLExecutor
}

func NewPostgresPermalinkRepository(db *sql.DB) PermalinkRepository {
	return &postgresPermalinkRepository{db: db}
}

const permalinkColumns = `p.id, p.pool_id, p.url, p.live_race, p.notes, p.created, p.updated`

const permalinkFrom = `
	FROM async_tournament_permalink p
	JOIN async_tournament_permalink_pool pp ON pp.id = p.pool_id`

func scanPermalink(row rowScanner) (*models.Permalink, error) {
	var p models.Permalink
	if err := row.Scan(&p.ID, &p.PoolID, &p.URL, &p.LiveRace, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func buildPermalinkListQuery(filter ListPermalinksFilter) (string, []interface{}) {
	var where whereBuilder
	where.add("pp.tournament_id = ?", filter.TournamentID)
	if filter.ID != nil {
		where.add("p.id = ?", *filter.ID)
	}
	if filter.URL != nil {
		where.add("p.url = ?", *filter.URL)
	}
	if filter.PoolID != nil {
		where.add("p.pool_id = ?", *filter.PoolID)
	}
	return `SELECT ` + permalinkColumns + permalinkFrom + where.sql() + ` ORDER BY p.id`, where.args
}

func (r *postgresPermalinkRepository) List(ctx context.Context, filter ListPermalinksFilter) ([]models.Permalink, error) {
	query, args := buildPermalinkListQuery(filter)
	return r.list(ctx, query, args...)
}

func (r *postgresPermalinkRepository) GetByID(ctx context.Context, tournamentID, permalinkID int) (*models.Permalink, error) {
	query := `SELECT ` + permalinkColumns + permalinkFrom + ` WHERE pp.tournament_id = $1 AND p.id = $2`

	p, err := scanPermalink(r.db.QueryRowContext(ctx, query, tournamentID, permalinkID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPermalinkNotFound
		}
		return nil, fmt.Errorf("failed to get permalink %d: %w", permalinkID, err)
	}
	return p, nil
}

func (r *postgresPermalinkRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*models.Permalink, error) {
	permalinks := make(map[int]*models.Permalink, len(ids))
	if len(ids) == 0 {
		return permalinks, nil
	}

	query := `SELECT ` + permalinkColumns + permalinkFrom + ` WHERE p.id = ANY($1)`
	list, err := r.list(ctx, query, pq.Array(int64s(ids)))
	if err != nil {
		return nil, err
	}
	for i := range list {
		permalinks[list[i].ID] = &list[i]
	}
	return permalinks, nil
}

func (r *postgresPermalinkRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Permalink, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query permalinks: %w", err)
	}
	defer rows.Close()

	permalinks := make([]models.Permalink, 0)
	for rows.Next() {
		p, scanErr := scanPermalink(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan permalink: %w", scanErr)
		}
		permalinks = append(permalinks, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during permalink rows iteration: %w", err)
	}
	return permalinks, nil
}
