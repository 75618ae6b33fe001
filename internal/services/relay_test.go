package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coginfy/relay/internal/auth"
	"github.com/coginfy/relay/internal/crypto"
	"github.com/coginfy/relay/internal/model"
	"github.com/coginfy/relay/internal/responder"
	"github.com/coginfy/relay/internal/store"
	"github.com/coginfy/relay/internal/store/sqlite"
)

var alice = auth.Identity{UserID: "alice"}

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	key, err := crypto.ParseKey("1fe7f3a7fc258225635b3562884d46473175a913ef02c18a24b825f7e54cfb7d")
	require.NoError(t, err)
	c, err := crypto.New(key)
	require.NoError(t, err)
	return c
}

func newService(t *testing.T, opts Options) (*RelayService, store.Store) {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	opts.Log = zerolog.Nop()
	return NewRelayService(st, testCipher(t), opts), st
}

func TestSendMessageRoundTrip(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "General", alice)
	require.NoError(t, err)

	res, err := svc.SendMessage(ctx, conv.ConversationID, "Hello world", alice)
	require.NoError(t, err)
	require.Len(t, res.MessageIDs, 1)

	// Summary reflects the send: unread, redacted preview, fresh activity.
	after, err := st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.True(t, after.Unread)
	assert.Equal(t, "Encrypted message", after.LastMessage)

	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2) // sent message + welcome
	assert.Equal(t, "Hello world", page.Messages[0].Text)
	assert.True(t, page.Messages[0].Mine)
	assert.False(t, after.LastActivityAt.Before(page.Messages[0].CreationTime))

	// Fetch cleared the unread flag.
	cleared, err := st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.False(t, cleared.Unread)
}

func TestSendMessageValidation(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "", "hi", alice)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.SendMessage(ctx, "some-id", "", alice)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSendToMissingConversation(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "does-not-exist", "hi", alice)
	assert.ErrorIs(t, err, model.ErrNotFound)

	msgs, err := st.Messages().List(ctx, model.ListMessagesRequest{ConversationID: "does-not-exist"})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAutoResponderAppendsSecondMessage(t *testing.T) {
	svc, st := newService(t, Options{
		Responder:      responder.New(),
		ResponderDelay: 10 * time.Millisecond,
	})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Bot Chat", alice)
	require.NoError(t, err)

	res, err := svc.SendMessage(ctx, conv.ConversationID, "Hello", alice)
	require.NoError(t, err)
	require.Len(t, res.MessageIDs, 2)

	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(page.Messages), 3)

	bot, user := page.Messages[0], page.Messages[1]
	assert.Contains(t, responder.GreetingReplies(), bot.Text)
	assert.False(t, bot.Mine)
	assert.Equal(t, "Hello", user.Text)
	assert.True(t, bot.CreationTime.After(user.CreationTime), "bot write must be strictly after user write")

	after, err := st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.False(t, after.LastActivityAt.Before(bot.CreationTime))
}

type panickingResponder struct{}

func (panickingResponder) Reply(string) string { panic("rule table corrupted") }

func TestResponderPanicDoesNotFailUserWrite(t *testing.T) {
	svc, _ := newService(t, Options{Responder: panickingResponder{}})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Flaky Bot", alice)
	require.NoError(t, err)

	res, err := svc.SendMessage(ctx, conv.ConversationID, "are you ok?", alice)
	require.NoError(t, err)
	assert.Len(t, res.MessageIDs, 1)

	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, "are you ok?", page.Messages[0].Text)
}

func TestConcurrentSendsAllSucceed(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Busy", alice)
	require.NoError(t, err)

	const senders = 20
	errs := make(chan error, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			caller := auth.Identity{UserID: fmt.Sprintf("user-%d", n)}
			_, err := svc.SendMessage(ctx, conv.ConversationID, fmt.Sprintf("message %d", n), caller)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	assert.Len(t, page.Messages, senders+1) // sends + welcome
}

func TestFetchFreshnessMarker(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Quiet", alice)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, conv.ConversationID, "ping", alice)
	require.NoError(t, err)

	future := time.Now().UTC().Add(time.Hour)
	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, &future)
	require.NoError(t, err)
	assert.True(t, page.NotModified)
	assert.Empty(t, page.Messages)

	// The no-op fetch must not clear unread.
	after, err := st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.True(t, after.Unread)

	// An older marker returns the page and clears unread.
	past := time.Now().UTC().Add(-time.Hour)
	page, err = svc.FetchMessages(ctx, conv.ConversationID, alice, &past)
	require.NoError(t, err)
	assert.False(t, page.NotModified)
	assert.NotEmpty(t, page.Messages)

	after, err = st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.False(t, after.Unread)
}

func TestCreateConversationWelcome(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Trivia Night", alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", conv.CreatedBy)

	stored, err := st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.False(t, stored.Unread, "a fresh conversation starts read")

	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Contains(t, page.Messages[0].Text, "Trivia Night")
	assert.False(t, page.Messages[0].Mine)
}

func TestCreateConversationValidation(t *testing.T) {
	svc, _ := newService(t, Options{})
	_, err := svc.CreateConversation(context.Background(), "", alice)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPlainPreviewMode(t *testing.T) {
	svc, st := newService(t, Options{PlainPreviews: true})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Open", alice)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, conv.ConversationID, "not a secret", alice)
	require.NoError(t, err)

	after, err := st.Conversations().Get(ctx, conv.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "not a secret", after.LastMessage)
}

func TestLifecycleRenameDeleteList(t *testing.T) {
	svc, _ := newService(t, Options{})
	ctx := context.Background()

	first, err := svc.CreateConversation(ctx, "First", alice)
	require.NoError(t, err)
	second, err := svc.CreateConversation(ctx, "Second", alice)
	require.NoError(t, err)

	require.NoError(t, svc.RenameConversation(ctx, first.ConversationID, "Renamed"))
	assert.ErrorIs(t, svc.RenameConversation(ctx, "missing", "x"), model.ErrNotFound)
	assert.ErrorIs(t, svc.RenameConversation(ctx, first.ConversationID, ""), model.ErrValidation)

	// Most recent activity first.
	_, err = svc.SendMessage(ctx, first.ConversationID, "bump", alice)
	require.NoError(t, err)
	lst, err := svc.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, lst, 2)
	assert.Equal(t, first.ConversationID, lst[0].ConversationID)
	assert.Equal(t, "Renamed", lst[0].Name)

	require.NoError(t, svc.DeleteConversation(ctx, second.ConversationID))
	assert.ErrorIs(t, svc.DeleteConversation(ctx, second.ConversationID), model.ErrNotFound)

	lst, err = svc.ListConversations(ctx)
	require.NoError(t, err)
	assert.Len(t, lst, 1)
}

// tamperStore wraps a real store and corrupts one message's ciphertext on
// the way out, simulating a damaged historical record.
type tamperStore struct {
	store.Store
	corruptID string
}

func (ts *tamperStore) Messages() store.Messages {
	return &tamperMessages{Messages: ts.Store.Messages(), corruptID: ts.corruptID}
}

type tamperMessages struct {
	store.Messages
	corruptID string
}

func (tm *tamperMessages) List(ctx context.Context, req model.ListMessagesRequest) ([]*model.Message, error) {
	msgs, err := tm.Messages.List(ctx, req)
	for _, m := range msgs {
		if m.MessageID == tm.corruptID && m.Body.Kind == model.BodyEnveloped {
			m.Body.Envelope.Ciphertext = "Z2FyYmFnZWdhcmJhZ2U="
		}
	}
	return msgs, err
}

func TestCorruptRecordGetsPlaceholderWithoutFailingPage(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "History", alice)
	require.NoError(t, err)
	res, err := svc.SendMessage(ctx, conv.ConversationID, "will be corrupted", alice)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, conv.ConversationID, "still fine", alice)
	require.NoError(t, err)

	tampered := NewRelayService(&tamperStore{Store: st, corruptID: res.MessageIDs[0]}, testCipher(t), Options{Log: zerolog.Nop()})
	page, err := tampered.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	require.Len(t, page.Messages, 3)
	assert.Equal(t, "still fine", page.Messages[0].Text)
	assert.Equal(t, crypto.Placeholder, page.Messages[1].Text)
}

func TestLegacyRecordsPassThrough(t *testing.T) {
	svc, st := newService(t, Options{})
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "Old Times", alice)
	require.NoError(t, err)
	_, err = st.Messages().Append(ctx, &model.Message{
		ConversationID: conv.ConversationID,
		AuthorID:       "bob",
		Body:           model.LegacyBody("pre-encryption text"),
	}, "pre-encryption text", true)
	require.NoError(t, err)

	page, err := svc.FetchMessages(ctx, conv.ConversationID, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, "pre-encryption text", page.Messages[0].Text)
	assert.False(t, page.Messages[0].Mine)
}
