package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
)

type WhitelistRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.WhitelistEntry, error)
}

type postgresWhitelistRepository struct {
	db SQLExecutor
}

func NewPostgresWhitelistRepository(db *sql.DB) WhitelistRepository {
	return &postgresWhitelistRepository{db: db}
}

func (r *postgresWhitelistRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.WhitelistEntry, error) {
	query := `
		SELECT id, tournament_id, user_id
		FROM async_tournament_whitelist
		WHERE tournament_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelist for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	entries := make([]models.WhitelistEntry, 0)
	for rows.Next() {
		var e models.WhitelistEntry
		if scanErr := rows.Scan(&e.ID, &e.TournamentID, &e.UserID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan whitelist entry: %w", scanErr)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during whitelist rows iteration: %w", err)
	}
	return entries, nil
}
