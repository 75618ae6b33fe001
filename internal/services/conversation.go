package services

import (
	"context"
	"fmt"

	"github.com/coginfy/relay/internal/auth"
	"github.com/coginfy/relay/internal/model"
)

// CreateConversation allocates a conversation owned by the caller and
// appends the synthesized system welcome message. The welcome append uses
// the same combined commit as any other message, so the summary already
// reflects it; the conversation starts read.
func (s *RelayService) CreateConversation(ctx context.Context, name string, caller auth.Identity) (*model.Conversation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}

	wctx := context.WithoutCancel(ctx)

	conv, err := s.store.Conversations().Create(wctx, &model.Conversation{
		Name:        name,
		CreatedBy:   caller.UserID,
		LastMessage: "Conversation created",
		Unread:      false,
	})
	if err != nil {
		return nil, s.storeErr("create", "", err)
	}

	welcome := fmt.Sprintf("Welcome to %s!", name)
	env, err := s.cipher.Encrypt(welcome)
	if err != nil {
		s.log.Error().Stack().Err(err).
			Str("conversationId", conv.ConversationID).
			Str("op", "create").
			Msg("welcome message encryption failed")
		return nil, model.ErrEncryption
	}
	if _, err := s.store.Messages().Append(wctx, &model.Message{
		ConversationID: conv.ConversationID,
		AuthorID:       model.SystemAuthorID,
		Body:           model.EnvelopedBody(env),
		Mine:           false,
	}, s.previewFor(welcome), false); err != nil {
		return nil, s.storeErr("create", conv.ConversationID, err)
	}
	return conv, nil
}

// RenameConversation updates the display label only.
func (s *RelayService) RenameConversation(ctx context.Context, conversationID, name string) error {
	if conversationID == "" || name == "" {
		return fmt.Errorf("%w: conversationId and name are required", model.ErrValidation)
	}
	if err := s.store.Conversations().Rename(context.WithoutCancel(ctx), conversationID, name); err != nil {
		return s.storeErr("rename", conversationID, err)
	}
	return nil
}

// DeleteConversation removes the conversation and its entire message log
// as one unit.
func (s *RelayService) DeleteConversation(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return fmt.Errorf("%w: conversationId is required", model.ErrValidation)
	}
	if err := s.store.Conversations().Delete(context.WithoutCancel(ctx), conversationID); err != nil {
		return s.storeErr("delete", conversationID, err)
	}
	return nil
}

// ListConversations returns summaries ordered by last activity, newest
// first. Message bodies are never part of the listing.
func (s *RelayService) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	lst, err := s.store.Conversations().List(ctx)
	if err != nil {
		return nil, s.storeErr("list", "", err)
	}
	if lst == nil {
		lst = []*model.Conversation{}
	}
	return lst, nil
}
