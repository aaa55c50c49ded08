package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
	"github.com/lib/pq"
)

var (
	ErrAPIKeyNotFound     = errors.New("api key not found")
	ErrAPIKeyNameConflict = errors.New("api key name already in use")
)

type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByID(ctx context.Context, id int) (*models.APIKey, error)
}

type postgresAPIKeyRepository struct {
	db SQLExecutor
}

func NewPostgresAPIKeyRepository(db *sql.DB) APIKeyRepository {
	return &postgresAPIKeyRepository{db: db}
}

func (r *postgresAPIKeyRepository) GetByID(ctx context.Context, id int) (*models.APIKey, error) {
	query := `SELECT id, name, key_hash, scopes, created FROM authorization_keys WHERE id = $1`

	var k models.APIKey
	err := r.db.QueryRowContext(ctx, query, id).Scan(&k.ID, &k.Name, &k.KeyHash, pq.Array(&k.Scopes), &k.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to get api key %d: %w", id, err)
	}
	return &k, nil
}

func (r *postgresAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	query := `
		INSERT INTO authorization_keys (name, key_hash, scopes)
		VALUES ($1, $2, $3)
		RETURNING id, created`

	err := r.db.QueryRowContext(ctx, query, key.Name, key.KeyHash, pq.Array(key.Scopes)).Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrAPIKeyNameConflict
		}
		return fmt.Errorf("failed to create api key %q: %w", key.Name, err)
	}
	return nil
}
