package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		server_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		snapshot TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (server_id, account_id)
	);`,
	`CREATE TABLE IF NOT EXISTS presence (
		server_id TEXT NOT NULL,
		username TEXT NOT NULL,
		is_online INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (server_id, username)
	);`,
	`CREATE TABLE IF NOT EXISTS servers (
		server_id TEXT PRIMARY KEY,
		last_heartbeat INTEGER NOT NULL
	);`,
}

func NewSQLiteStore(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	for _, q := range sqliteSchema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to create schema: %v", err)
		}
	}

	return &SQLiteStore{
		db: db,
	}, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) SavePlayer(ctx context.Context, serverID string, accountID string, snapshot json.RawMessage) error {
	q := `
	INSERT OR REPLACE INTO players (server_id, account_id, snapshot, updated_at)
	VALUES (?, ?, ?, ?);
	`
	_, err := s.db.ExecContext(ctx, q, serverID, accountID, string(snapshot), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert player: %v", err)
	}

	return nil
}

func (s *SQLiteStore) LoadPlayer(ctx context.Context, serverID string, accountID string) (json.RawMessage, error) {
	q := `
	SELECT snapshot FROM players WHERE server_id = ? AND account_id = ?;
	`
	var snapshot string
	if err := s.db.QueryRowContext(ctx, q, serverID, accountID).Scan(&snapshot); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan player: %v", err)
	}

	return json.RawMessage(snapshot), nil
}

func (s *SQLiteStore) SetPresence(ctx context.Context, serverID string, username string, online bool) error {
	q := `
	INSERT OR REPLACE INTO presence (server_id, username, is_online, updated_at)
	VALUES (?, ?, ?, ?);
	`
	_, err := s.db.ExecContext(ctx, q, serverID, username, online, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update presence: %v", err)
	}

	return nil
}

func (s *SQLiteStore) Heartbeat(ctx context.Context, serverID string) error {
	q := `
	INSERT OR REPLACE INTO servers (server_id, last_heartbeat)
	VALUES (?, ?);
	`
	_, err := s.db.ExecContext(ctx, q, serverID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update heartbeat: %v", err)
	}

	return nil
}
