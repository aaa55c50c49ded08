package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
	"github.com/lib/pq"
)

var ErrPoolNotFound = errors.New("permalink pool not found")

type PoolRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.PermalinkPool, error)
	GetByID(ctx context.Context, tournamentID, poolID int) (*models.PermalinkPool, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]*models.PermalinkPool, error)
}

type postgresPoolRepository struct {
	db SQLExecutor
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

const poolColumns = `id, tournament_id, name, created, updated`

func scanPool(row rowScanner) (*models.PermalinkPool, error) {
	var p models.PermalinkPool
	if err := row.Scan(&p.ID, &p.TournamentID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresPoolRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.PermalinkPool, error) {
	query := `SELECT ` + poolColumns + ` FROM async_tournament_permalink_pool WHERE tournament_id = $1 ORDER BY id`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, tournamentID, poolID int) (*models.PermalinkPool, error) {
	query := `SELECT ` + poolColumns + ` FROM async_tournament_permalink_pool WHERE tournament_id = $1 AND id = $2`

	p, err := scanPool(r.db.QueryRowContext(ctx, query, tournamentID, poolID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	return p, nil
}

func (r *postgresPoolRepository) GetByIDs(ctx context.Context, ids []int) (map[int]*models.PermalinkPool, error) {
	pools := make(map[int]*models.PermalinkPool, len(ids))
	if len(ids) == 0 {
		return pools, nil
	}

	query := `SELECT ` + poolColumns + ` FROM async_tournament_permalink_pool WHERE id = ANY($1)`
	list, err := r.list(ctx, query, pq.Array(int64s(ids)))
	if err != nil {
		return nil, err
	}
	for i := range list {
		pools[list[i].ID] = &list[i]
	}
	return pools, nil
}

func (r *postgresPoolRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.PermalinkPool, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer rows.Close()

	pools := make([]models.PermalinkPool, 0)
	for rows.Next() {
		p, scanErr := scanPool(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", scanErr)
		}
		pools = append(pools, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pool rows iteration: %w", err)
	}
	return pools, nil
}
