// Package sqlite implements the relay store on an embedded SQLite
// database, used for local deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coginfy/relay/internal/model"
	"github.com/coginfy/relay/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// New opens the database at path, ensures the schema and returns the store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection (used by the factory and tests).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

// EnsureSchema applies the embedded DDL. All statements are idempotent.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *sqliteStore) Messages() store.Messages           { return &messages{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Conversations ---

type conversations struct{ db *sql.DB }

func (c *conversations) Create(ctx context.Context, in *model.Conversation) (*model.Conversation, error) {
	id := in.ConversationID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO conversations (conversation_id, name, created_by, last_message, last_activity_at, unread, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, id, in.Name, in.CreatedBy, in.LastMessage, now, in.Unread, now)
	if err != nil {
		return nil, err
	}
	out := *in
	out.ConversationID = id
	out.LastActivityAt = now
	out.CreationTime = now
	return &out, nil
}

func (c *conversations) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT conversation_id, name, created_by, last_message, last_activity_at, unread, creation_time
        FROM conversations WHERE conversation_id = ?
    `, conversationID)
	return scanConversation(row)
}

func (c *conversations) List(ctx context.Context) ([]*model.Conversation, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT conversation_id, name, created_by, last_message, last_activity_at, unread, creation_time
        FROM conversations ORDER BY last_activity_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Conversation
	for rows.Next() {
		cv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, cv)
	}
	return res, rows.Err()
}

func (c *conversations) Rename(ctx context.Context, conversationID, name string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE conversations SET name = ? WHERE conversation_id = ?`, name, conversationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (c *conversations) MarkRead(ctx context.Context, conversationID string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE conversations SET unread = 0 WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (c *conversations) Delete(ctx context.Context, conversationID string) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Messages ---

type messages struct{ db *sql.DB }

func (m *messages) Append(ctx context.Context, in *model.Message, preview string, unread bool) (*model.Message, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	// Summary first so a missing conversation surfaces before the insert.
	res, err := tx.ExecContext(ctx, `
        UPDATE conversations SET last_message = ?, last_activity_at = ?, unread = ?
        WHERE conversation_id = ?
    `, preview, now, unread, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	iv, ciphertext, legacy := store.BodyColumns(in.Body)
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO messages (message_id, conversation_id, author_id, iv, ciphertext, legacy_text, is_mine, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
    `, id, in.ConversationID, in.AuthorID, iv, ciphertext, legacy, in.Mine, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *in
	out.MessageID = id
	out.CreationTime = now
	return &out, nil
}

func (m *messages) List(ctx context.Context, req model.ListMessagesRequest) ([]*model.Message, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := m.db.QueryContext(ctx, `
        SELECT message_id, conversation_id, author_id, iv, ciphertext, legacy_text, is_mine, creation_time
        FROM messages WHERE conversation_id = ?
        ORDER BY creation_time DESC, message_id DESC
        LIMIT ?
    `, req.ConversationID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, msg)
	}
	return res, rows.Err()
}

// --- row helpers ---

type rowScanner interface{ Scan(dest ...any) error }

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var out model.Conversation
	err := row.Scan(&out.ConversationID, &out.Name, &out.CreatedBy, &out.LastMessage,
		&out.LastActivityAt, &out.Unread, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var out model.Message
	var iv, ciphertext, legacy sql.NullString
	err := row.Scan(&out.MessageID, &out.ConversationID, &out.AuthorID,
		&iv, &ciphertext, &legacy, &out.Mine, &out.CreationTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.Body = store.BodyFromColumns(iv, ciphertext, legacy)
	return &out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
