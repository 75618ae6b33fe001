// Package store defines the persistence contract for conversations and
// their message logs. Implementations live under internal/store/<driver>/
// (postgres, sqlite) and must keep each conversation summary transactional
// with the message append it describes.
package store

import (
	"context"

	"github.com/coginfy/relay/internal/model"
)

// Store exposes persistence operations required by the relay service.
type Store interface {
	Conversations() Conversations
	Messages() Messages
}

type Conversations interface {
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
	// List returns all conversations ordered by last activity, newest first.
	List(ctx context.Context) ([]*model.Conversation, error)
	// Rename updates the display name only; summary fields are untouched.
	Rename(ctx context.Context, conversationID, name string) error
	// MarkRead clears the unread flag.
	MarkRead(ctx context.Context, conversationID string) error
	// Delete removes the conversation and its entire message log as one
	// unit; a partial delete is a consistency violation.
	Delete(ctx context.Context, conversationID string) error
}

type Messages interface {
	// Append inserts the message and updates the owning conversation's
	// summary (last_message=preview, last_activity_at=message timestamp,
	// unread flag) in a single transaction. The driver assigns the
	// message id and timestamp. A missing conversation yields
	// model.ErrNotFound with nothing persisted.
	Append(ctx context.Context, m *model.Message, preview string, unread bool) (*model.Message, error)
	// List returns a bounded page in descending chronological order.
	List(ctx context.Context, req model.ListMessagesRequest) ([]*model.Message, error)
}
