package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		server_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		snapshot JSONB NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (server_id, account_id)
	);`,
	`CREATE TABLE IF NOT EXISTS presence (
		server_id TEXT NOT NULL,
		username TEXT NOT NULL,
		is_online BOOLEAN NOT NULL,
		updated_at BIGINT NOT NULL,
		PRIMARY KEY (server_id, username)
	);`,
	`CREATE TABLE IF NOT EXISTS servers (
		server_id TEXT PRIMARY KEY,
		last_heartbeat BIGINT NOT NULL
	);`,
}

func NewPostgresStore(ctx context.Context, connStr string) (Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	for _, q := range postgresSchema {
		if _, err := pool.Exec(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to create schema: %v", err)
		}
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SavePlayer(ctx context.Context, serverID string, accountID string, snapshot json.RawMessage) error {
	q := `
	INSERT INTO players (server_id, account_id, snapshot, updated_at) VALUES ($1, $2, $3, $4)
	ON CONFLICT (server_id, account_id) DO UPDATE SET snapshot = $3, updated_at = $4;
	`
	_, err := s.pool.Exec(ctx, q, serverID, accountID, snapshot, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert player: %v", err)
	}

	return nil
}

func (s *PostgresStore) LoadPlayer(ctx context.Context, serverID string, accountID string) (json.RawMessage, error) {
	q := `
	SELECT snapshot FROM players WHERE server_id = $1 AND account_id = $2;
	`
	var snapshot json.RawMessage
	if err := s.pool.QueryRow(ctx, q, serverID, accountID).Scan(&snapshot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan player: %v", err)
	}

	return snapshot, nil
}

func (s *PostgresStore) SetPresence(ctx context.Context, serverID string, username string, online bool) error {
	q := `
	INSERT INTO presence (server_id, username, is_online, updated_at) VALUES ($1, $2, $3, $4)
	ON CONFLICT (server_id, username) DO UPDATE SET is_online = $3, updated_at = $4;
	`
	_, err := s.pool.Exec(ctx, q, serverID, username, online, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update presence: %v", err)
	}

	return nil
}

func (s *PostgresStore) Heartbeat(ctx context.Context, serverID string) error {
	q := `
	INSERT INTO servers (server_id, last_heartbeat) VALUES ($1, $2)
	ON CONFLICT (server_id) DO UPDATE SET last_heartbeat = $2;
	`
	_, err := s.pool.Exec(ctx, q, serverID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update heartbeat: %v", err)
	}

	return nil
}
