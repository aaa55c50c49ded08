package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates every table the service reads or writes.
// Safe to call on every boot: all statements use IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    discord_user_id BIGINT UNIQUE,
    display_name VARCHAR(200),
    rtgg_id VARCHAR(200) UNIQUE
);

CREATE TABLE IF NOT EXISTS async_tournament (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    guild_id BIGINT NOT NULL,
    channel_id BIGINT NOT NULL UNIQUE,
    owner_id BIGINT NOT NULL,
    allowed_reattempts INT NOT NULL DEFAULT 0,
    created TIMESTAMP NOT NULL DEFAULT NOW(),
    updated TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS async_tournament_permalink_pool (
    id SERIAL PRIMARY KEY,
    tournament_id INT NOT NULL REFERENCES async_tournament(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL,
    created TIMESTAMP NOT NULL DEFAULT NOW(),
    updated TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (tournament_id, name)
);

CREATE TABLE IF NOT EXISTS async_tournament_permalink (
    id SERIAL PRIMARY KEY,
    pool_id INT NOT NULL REFERENCES async_tournament_permalink_pool(id) ON DELETE CASCADE,
    url VARCHAR(200) NOT NULL,
    live_race BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT,
    created TIMESTAMP NOT NULL DEFAULT NOW(),
    updated TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_permalink_pool_id ON async_tournament_permalink(pool_id);

CREATE TABLE IF NOT EXISTS async_tournament_race (
    id SERIAL PRIMARY KEY,
    tournament_id INT NOT NULL REFERENCES async_tournament(id) ON DELETE CASCADE,
    user_id INT NOT NULL REFERENCES users(id),
    permalink_id INT NOT NULL REFERENCES async_tournament_permalink(id),
    thread_id BIGINT UNIQUE,
    thread_open_time TIMESTAMP,
    thread_timeout_time TIMESTAMP,
    start_time TIMESTAMP,
    end_time TIMESTAMP,
    status VARCHAR(45) NOT NULL DEFAULT 'pending',
    live_race BOOLEAN NOT NULL DEFAULT FALSE,
    reattempted BOOLEAN NOT NULL DEFAULT FALSE,
    runner_notes TEXT,
    runner_vod_url VARCHAR(400),
    review_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    reviewed_by_id INT REFERENCES users(id),
    reviewed_at TIMESTAMP,
    reviewer_notes TEXT,
    created TIMESTAMP NOT NULL DEFAULT NOW(),
    updated TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_race_tournament_status ON async_tournament_race(tournament_id, status, review_status);

CREATE TABLE IF NOT EXISTS async_tournament_whitelist (
    id SERIAL PRIMARY KEY,
    tournament_id INT NOT NULL REFERENCES async_tournament(id) ON DELETE CASCADE,
    user_id INT NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS async_tournament_permissions (
    id SERIAL PRIMARY KEY,
    tournament_id INT NOT NULL REFERENCES async_tournament(id) ON DELETE CASCADE,
    user_id INT NOT NULL REFERENCES users(id),
    role VARCHAR(45) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_permissions_lookup ON async_tournament_permissions(tournament_id, user_id);

CREATE TABLE IF NOT EXISTS authorization_keys (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL UNIQUE,
    key_hash VARCHAR(100) NOT NULL,
    scopes TEXT[] NOT NULL DEFAULT '{}',
    created TIMESTAMP NOT NULL DEFAULT NOW()
);
`
