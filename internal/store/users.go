package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/commune/chat-app/internal/chat"
)

// UserStore manages durable user records in PostgreSQL. Records are keyed by
// unique username with an optional unique connection id; they are never
// deleted, only unbound from their connection.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a UserStore backed by the given database handle.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert creates or updates the record for username, binding it to
// connectionID and marking it online. A connection id maps to exactly one
// username at a time: any other record still holding this connection id is
// unbound first. A username already live on another connection is simply
// rebound (last-writer-wins).
func (s *UserStore) Upsert(ctx context.Context, username, connectionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin upsert: %w", err)
	}
	defer tx.Rollback()

	// Release the connection id from any record that still holds it under a
	// different username, so the unique constraint cannot trip below.
	_, err = tx.ExecContext(ctx, `
		UPDATE chat_users
		SET connection_id = NULL, online = FALSE
		WHERE connection_id = $1 AND username <> $2`,
		connectionID, username,
	)
	if err != nil {
		return fmt.Errorf("store: release connection: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_users (username, connection_id, online)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (username)
		DO UPDATE SET connection_id = EXCLUDED.connection_id, online = TRUE`,
		username, connectionID,
	)
	if err != nil {
		return fmt.Errorf("store: upsert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit upsert: %w", err)
	}
	return nil
}

// ClearConnection unbinds connectionID from whichever record holds it and
// marks that record offline. Clearing an unbound id is a no-op.
func (s *UserStore) ClearConnection(ctx context.Context, connectionID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE chat_users
		SET connection_id = NULL, online = FALSE
		WHERE connection_id = $1`,
		connectionID,
	)
	if err != nil {
		return fmt.Errorf("store: clear connection: %w", err)
	}
	return nil
}

// Get fetches a single user record by username.
func (s *UserStore) Get(ctx context.Context, username string) (*chat.User, error) {
	var (
		u      chat.User
		connID sql.NullString
		ts     time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT username, connection_id, online, created_at
		FROM chat_users
		WHERE username = $1`,
		username,
	).Scan(&u.Username, &connID, &u.Online, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	u.ConnectionID = connID.String
	u.CreatedAt = ts
	return &u, nil
}
