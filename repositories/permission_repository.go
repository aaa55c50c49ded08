package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
	"github.com/lib/pq"
)

type PermissionRepository interface {
	// HasRole reports whether the user holds any of roles on the tournament.
	HasRole(ctx context.Context, tournamentID, userID int, roles []models.PermissionRole) (bool, error)
}

type postgresPermissionRepository struct {
	db SQLExecutor
}

func NewPostgresPermissionRepository(db *sql.DB) PermissionRepository {
	return &postgresPermissionRepository{db: db}
}

func (r *postgresPermissionRepository) HasRole(ctx context.Context, tournamentID, userID int, roles []models.PermissionRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM async_tournament_permissions
			WHERE tournament_id = $1 AND user_id = $2 AND role = ANY($3)
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tournamentID, userID, pq.Array(names)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check permissions of user %d on tournament %d: %w", userID, tournamentID, err)
	}
	return exists, nil
}
