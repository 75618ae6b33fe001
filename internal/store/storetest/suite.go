package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coginfy/relay/internal/crypto"
	"github.com/coginfy/relay/internal/model"
	"github.com/coginfy/relay/internal/store"
)

// Run exercises a conformance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Create conversation
	conv, err := s.Conversations().Create(ctx, &model.Conversation{
		Name: "Trivia Night", CreatedBy: "alice", LastMessage: "Conversation created",
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.ConversationID == "" {
		t.Fatalf("CreateConversation: empty id")
	}
	if conv.Unread {
		t.Fatalf("CreateConversation: unread should start false")
	}
	if got, err := s.Conversations().Get(ctx, conv.ConversationID); err != nil || got.Name != "Trivia Night" {
		t.Fatalf("GetConversation: got=%v err=%v", got, err)
	}

	// Append keeps summary and log in one commit
	env := crypto.Envelope{IV: "aXY=", Ciphertext: "Y3Q="}
	m1, err := s.Messages().Append(ctx, &model.Message{
		ConversationID: conv.ConversationID, AuthorID: "alice",
		Body: model.EnvelopedBody(env), Mine: true,
	}, "Encrypted message", true)
	if err != nil {
		t.Fatalf("Append m1: %v", err)
	}
	if m1.MessageID == "" || m1.CreationTime.IsZero() {
		t.Fatalf("Append m1: id/timestamp not assigned: %+v", m1)
	}
	after, err := s.Conversations().Get(ctx, conv.ConversationID)
	if err != nil {
		t.Fatalf("GetConversation after append: %v", err)
	}
	if !after.Unread {
		t.Fatalf("summary: unread should be true after append")
	}
	if after.LastMessage != "Encrypted message" {
		t.Fatalf("summary: last_message=%q", after.LastMessage)
	}
	if after.LastActivityAt.Before(m1.CreationTime) {
		t.Fatalf("summary: last_activity_at %v older than message %v", after.LastActivityAt, m1.CreationTime)
	}

	// Append to a conversation that does not exist persists nothing
	if _, err := s.Messages().Append(ctx, &model.Message{
		ConversationID: "does-not-exist", AuthorID: "alice",
		Body: model.EnvelopedBody(env), Mine: true,
	}, "x", true); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Append to missing conversation: want ErrNotFound, got %v", err)
	}

	// Descending order and body round-trip
	time.Sleep(5 * time.Millisecond) // ensure distinct creation times
	m2, err := s.Messages().Append(ctx, &model.Message{
		ConversationID: conv.ConversationID, AuthorID: model.ResponderAuthorID,
		Body: model.EnvelopedBody(crypto.Envelope{IV: "aXYy", Ciphertext: "Y3Qy"}),
	}, "Encrypted message", true)
	if err != nil {
		t.Fatalf("Append m2: %v", err)
	}
	page, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv.ConversationID, Limit: 50})
	if err != nil || len(page) != 2 {
		t.Fatalf("List: n=%d err=%v", len(page), err)
	}
	if page[0].MessageID != m2.MessageID || page[1].MessageID != m1.MessageID {
		t.Fatalf("List: not newest-first: %v, %v", page[0].MessageID, page[1].MessageID)
	}
	if page[1].Body.Kind != model.BodyEnveloped || page[1].Body.Envelope != env {
		t.Fatalf("List: envelope not round-tripped: %+v", page[1].Body)
	}
	if page[1].AuthorID != "alice" || !page[1].Mine {
		t.Fatalf("List: provenance lost: %+v", page[1])
	}

	// Limit caps the page
	if one, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv.ConversationID, Limit: 1}); err != nil || len(one) != 1 {
		t.Fatalf("List limit: n=%d err=%v", len(one), err)
	}

	// MarkRead clears the flag
	if err := s.Conversations().MarkRead(ctx, conv.ConversationID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got, _ := s.Conversations().Get(ctx, conv.ConversationID); got.Unread {
		t.Fatalf("MarkRead: unread still set")
	}
	if err := s.Conversations().MarkRead(ctx, "does-not-exist"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("MarkRead missing: want ErrNotFound, got %v", err)
	}

	// Rename touches the name only
	before, _ := s.Conversations().Get(ctx, conv.ConversationID)
	if err := s.Conversations().Rename(ctx, conv.ConversationID, "Quiz Night"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	renamed, _ := s.Conversations().Get(ctx, conv.ConversationID)
	if renamed.Name != "Quiz Night" {
		t.Fatalf("Rename: name=%q", renamed.Name)
	}
	if !renamed.LastActivityAt.Equal(before.LastActivityAt) || renamed.Unread != before.Unread {
		t.Fatalf("Rename: summary fields changed: %+v vs %+v", renamed, before)
	}
	if err := s.Conversations().Rename(ctx, "does-not-exist", "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Rename missing: want ErrNotFound, got %v", err)
	}

	// List orders by last activity descending
	conv2, err := s.Conversations().Create(ctx, &model.Conversation{Name: "Second", CreatedBy: "bob"})
	if err != nil {
		t.Fatalf("CreateConversation conv2: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := s.Messages().Append(ctx, &model.Message{
		ConversationID: conv2.ConversationID, AuthorID: "bob",
		Body: model.EnvelopedBody(env),
	}, "Encrypted message", true); err != nil {
		t.Fatalf("Append conv2: %v", err)
	}
	lst, err := s.Conversations().List(ctx)
	if err != nil || len(lst) < 2 {
		t.Fatalf("ListConversations: n=%d err=%v", len(lst), err)
	}
	if lst[0].ConversationID != conv2.ConversationID {
		t.Fatalf("ListConversations: most recently active first, got %v", lst[0].ConversationID)
	}

	// Legacy clear-text records survive the round trip
	if _, err := s.Messages().Append(ctx, &model.Message{
		ConversationID: conv2.ConversationID, AuthorID: "bob",
		Body: model.LegacyBody("plain old text"),
	}, "plain old text", true); err != nil {
		t.Fatalf("Append legacy: %v", err)
	}
	legacyPage, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv2.ConversationID})
	if err != nil || len(legacyPage) == 0 {
		t.Fatalf("List legacy: n=%d err=%v", len(legacyPage), err)
	}
	if legacyPage[0].Body.Kind != model.BodyPlainLegacy || legacyPage[0].Body.Legacy != "plain old text" {
		t.Fatalf("List legacy: body=%+v", legacyPage[0].Body)
	}

	// Concurrent appends to one conversation all commit; the log stays
	// intact and the summary reflects a committed message.
	conv3, err := s.Conversations().Create(ctx, &model.Conversation{Name: "Busy", CreatedBy: "alice"})
	if err != nil {
		t.Fatalf("CreateConversation conv3: %v", err)
	}
	const writers = 10
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.Messages().Append(ctx, &model.Message{
				ConversationID: conv3.ConversationID,
				AuthorID:       fmt.Sprintf("writer-%d", n),
				Body:           model.EnvelopedBody(env),
				Mine:           true,
			}, "Encrypted message", true)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Append: %v", err)
		}
	}
	busyPage, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv3.ConversationID, Limit: writers + 1})
	if err != nil || len(busyPage) != writers {
		t.Fatalf("concurrent Append: log has %d of %d messages, err=%v", len(busyPage), writers, err)
	}
	busySummary, err := s.Conversations().Get(ctx, conv3.ConversationID)
	if err != nil {
		t.Fatalf("Get after concurrent appends: %v", err)
	}
	if !busySummary.Unread || busySummary.LastMessage != "Encrypted message" {
		t.Fatalf("concurrent Append: summary not updated: %+v", busySummary)
	}
	if busySummary.LastActivityAt.Before(busyPage[0].CreationTime) {
		t.Fatalf("concurrent Append: summary older than newest message")
	}

	// Delete removes conversation and log as one unit
	if err := s.Conversations().Delete(ctx, conv.ConversationID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if _, err := s.Conversations().Get(ctx, conv.ConversationID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}
	if msgs, err := s.Messages().List(ctx, model.ListMessagesRequest{ConversationID: conv.ConversationID}); err != nil || len(msgs) != 0 {
		t.Fatalf("messages survived delete: n=%d err=%v", len(msgs), err)
	}
	if err := s.Conversations().Delete(ctx, "does-not-exist"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Delete missing: want ErrNotFound, got %v", err)
	}
}
