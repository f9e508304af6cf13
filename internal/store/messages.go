package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/commune/chat-app/internal/chat"
)

const (
	// SearchMaxResults caps the number of rows a search can return.
	SearchMaxResults = 50

	// SearchMinQueryChars is the minimum query length; shorter queries return
	// an empty result without touching the database.
	SearchMinQueryChars = 2
)

// MessageStore manages durable, append-only message records in PostgreSQL.
// Reactions are the only mutable part of a record and are stored as JSONB.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore creates a MessageStore backed by the given database handle.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append persists a new message, assigning its id and server timestamp. The
// assigned values are written back into msg. Ids are assigned nowhere else;
// they are the stable references used by reaction toggles and delivery
// acknowledgments.
func (s *MessageStore) Append(ctx context.Context, msg *chat.Message) error {
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()
	if msg.Room == "" {
		msg.Room = chat.RoomGlobal
	}
	if msg.Reactions == nil {
		msg.Reactions = []chat.Reaction{}
	}

	reactionsJSON, err := json.Marshal(msg.Reactions)
	if err != nil {
		return fmt.Errorf("store: marshal reactions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender, content, room, image, is_private, recipient, reactions, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, $9)`,
		msg.ID, msg.Sender, msg.Content, msg.Room, msg.Image,
		msg.IsPrivate, msg.Recipient, reactionsJSON, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: append message: %w", err)
	}
	return nil
}

// Get fetches a single message by id. Returns chat.ErrNotFound when no record
// exists.
func (s *MessageStore) Get(ctx context.Context, id string) (*chat.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender, content, room, COALESCE(image, ''), is_private, COALESCE(recipient, ''), reactions, created_at
		FROM messages
		WHERE id = $1`,
		id,
	)

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get message: %w", err)
	}
	return msg, nil
}

// History returns a page of public messages in ascending chronological order.
// Rows are fetched newest-first (so limit/skip page backwards through time)
// and reversed before returning. Private messages are always excluded; a
// room other than "global" additionally filters by room.
func (s *MessageStore) History(ctx context.Context, room string, limit, skip int) ([]chat.Message, error) {
	if room == "" {
		room = chat.RoomGlobal
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, content, room, COALESCE(image, ''), is_private, COALESCE(recipient, ''), reactions, created_at
		FROM messages
		WHERE is_private = FALSE AND ($1 = 'global' OR room = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		room, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("store: history query: %w", err)
	}
	defer rows.Close()

	return collectOldestFirst(rows)
}

// Search returns up to SearchMaxResults public messages whose content
// contains the query, case-insensitively, oldest-first. Queries shorter than
// SearchMinQueryChars characters yield an empty result.
func (s *MessageStore) Search(ctx context.Context, query, room string) ([]chat.Message, error) {
	if utf8.RuneCountInString(query) < SearchMinQueryChars {
		return []chat.Message{}, nil
	}
	if room == "" {
		room = chat.RoomGlobal
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, content, room, COALESCE(image, ''), is_private, COALESCE(recipient, ''), reactions, created_at
		FROM messages
		WHERE is_private = FALSE
		  AND ($1 = 'global' OR room = $1)
		  AND content ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY created_at DESC
		LIMIT $3`,
		room, escapeLike(query), SearchMaxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("store: search query: %w", err)
	}
	defer rows.Close()

	return collectOldestFirst(rows)
}

// UpdateReactions overwrites the reactions list of a message.
func (s *MessageStore) UpdateReactions(ctx context.Context, id string, reactions []chat.Reaction) error {
	if reactions == nil {
		reactions = []chat.Reaction{}
	}
	reactionsJSON, err := json.Marshal(reactions)
	if err != nil {
		return fmt.Errorf("store: marshal reactions: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET reactions = $2 WHERE id = $1`,
		id, reactionsJSON,
	)
	if err != nil {
		return fmt.Errorf("store: update reactions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// escapeLike escapes LIKE metacharacters so the query matches them literally.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*chat.Message, error) {
	var (
		msg           chat.Message
		reactionsJSON []byte
	)
	err := row.Scan(&msg.ID, &msg.Sender, &msg.Content, &msg.Room, &msg.Image,
		&msg.IsPrivate, &msg.Recipient, &reactionsJSON, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reactionsJSON, &msg.Reactions); err != nil {
		return nil, fmt.Errorf("unmarshal reactions: %w", err)
	}
	if msg.Reactions == nil {
		msg.Reactions = []chat.Reaction{}
	}
	return &msg, nil
}

// collectOldestFirst drains rows (which arrive newest-first) and reverses
// them into ascending chronological order.
func collectOldestFirst(rows *sql.Rows) ([]chat.Message, error) {
	var msgs []chat.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate messages: %w", err)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}
