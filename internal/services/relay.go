// Package services holds the relay orchestrator: it authenticates input
// already resolved by the auth gate, drives the crypto envelope, and keeps
// conversation summaries consistent with the message log.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coginfy/relay/internal/auth"
	"github.com/coginfy/relay/internal/crypto"
	"github.com/coginfy/relay/internal/model"
	"github.com/coginfy/relay/internal/store"
)

// AutoResponder computes a reply for an inbound user message. Implementations
// must be stateless and safe for concurrent use.
type AutoResponder interface {
	Reply(text string) string
}

// Options tunes the orchestrator beyond its hard dependencies.
type Options struct {
	// Responder enables the bot path when non-nil.
	Responder AutoResponder
	// ResponderDelay is the artificial "thinking time" before the bot write.
	ResponderDelay time.Duration
	// PlainPreviews stores literal text in conversation summaries instead
	// of the redacted marker.
	PlainPreviews bool
	// PageSize bounds fetch reads; defaults to 50.
	PageSize int
	Log      zerolog.Logger
}

// redactedPreview is the generic summary marker used unless plain previews
// are explicitly enabled.
const redactedPreview = "Encrypted message"

// RelayService coordinates the envelope, the document store and the
// auto-responder for one deployment. It holds no mutable state besides the
// immutable cipher key, so one instance serves all requests concurrently.
type RelayService struct {
	store         store.Store
	cipher        *crypto.Cipher
	responder     AutoResponder
	delay         time.Duration
	plainPreviews bool
	pageSize      int
	log           zerolog.Logger
}

// NewRelayService wires the orchestrator.
func NewRelayService(s store.Store, cipher *crypto.Cipher, opts Options) *RelayService {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &RelayService{
		store:         s,
		cipher:        cipher,
		responder:     opts.Responder,
		delay:         opts.ResponderDelay,
		plainPreviews: opts.PlainPreviews,
		pageSize:      pageSize,
		log:           opts.Log,
	}
}

// SendResult reports the ids of the message(s) written by one send call.
type SendResult struct {
	MessageIDs []string `json:"messageIds"`
}

// FetchResult is one page of decrypted messages, newest first, or a
// not-modified short circuit.
type FetchResult struct {
	Messages    []model.MessageView `json:"messages"`
	NotModified bool                `json:"-"`
}

// SendMessage encrypts and appends a user message, updates the conversation
// summary in the same commit, and optionally appends an auto-response.
// A failure on the user path aborts with nothing visible; a failure on the
// bot path is logged and swallowed, the user write stands.
func (s *RelayService) SendMessage(ctx context.Context, conversationID, text string, caller auth.Identity) (*SendResult, error) {
	if conversationID == "" || text == "" {
		return nil, fmt.Errorf("%w: conversationId and text are required", model.ErrValidation)
	}

	env, err := s.cipher.Encrypt(text)
	if err != nil {
		s.log.Error().Stack().Err(err).
			Str("conversationId", conversationID).
			Str("op", "send").
			Msg("encryption failed")
		return nil, model.ErrEncryption
	}

	// Issued writes run to completion even if the caller disconnects.
	wctx := context.WithoutCancel(ctx)

	written, err := s.store.Messages().Append(wctx, &model.Message{
		ConversationID: conversationID,
		AuthorID:       caller.UserID,
		Body:           model.EnvelopedBody(env),
		Mine:           true,
	}, s.previewFor(text), true)
	if err != nil {
		return nil, s.storeErr("send", conversationID, err)
	}

	ids := []string{written.MessageID}
	if s.responder != nil {
		botID, err := s.respond(wctx, conversationID, text)
		if err != nil {
			s.log.Warn().Err(err).
				Str("conversationId", conversationID).
				Msg("auto-response failed; user message kept")
		} else {
			ids = append(ids, botID)
		}
	}
	return &SendResult{MessageIDs: ids}, nil
}

// respond runs the bot path: pick a reply, wait the configured thinking
// time, then encrypt and append. A panic anywhere in the path is converted
// to an error so it can never undo the user's write.
func (s *RelayService) respond(ctx context.Context, conversationID, inbound string) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("responder panic: %v", r)
		}
	}()

	reply := s.responder.Reply(inbound)

	if s.delay > 0 {
		// Timer-based wait: parks only this request's goroutine, no lock
		// is held and other callers proceed undisturbed.
		t := time.NewTimer(s.delay)
		defer t.Stop()
		<-t.C
	}

	env, err := s.cipher.Encrypt(reply)
	if err != nil {
		return "", err
	}
	written, err := s.store.Messages().Append(ctx, &model.Message{
		ConversationID: conversationID,
		AuthorID:       model.ResponderAuthorID,
		Body:           model.EnvelopedBody(env),
		Mine:           false,
	}, s.previewFor(reply), true)
	if err != nil {
		return "", err
	}
	return written.MessageID, nil
}

// FetchMessages returns the newest page of a conversation, decrypting each
// record and tolerating per-record failures. When since is set and nothing
// newer exists the fetch short-circuits without clearing the unread flag.
func (s *RelayService) FetchMessages(ctx context.Context, conversationID string, caller auth.Identity, since *time.Time) (*FetchResult, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversationId is required", model.ErrValidation)
	}

	msgs, err := s.store.Messages().List(ctx, model.ListMessagesRequest{
		ConversationID: conversationID,
		Limit:          s.pageSize,
	})
	if err != nil {
		return nil, s.storeErr("fetch", conversationID, err)
	}

	if since != nil && (len(msgs) == 0 || !msgs[0].CreationTime.After(*since)) {
		// A no-op fetch must not clear unread.
		return &FetchResult{Messages: []model.MessageView{}, NotModified: true}, nil
	}

	views := make([]model.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, model.MessageView{
			MessageID:    m.MessageID,
			Text:         s.textFor(m),
			CreationTime: m.CreationTime,
			Mine:         m.AuthorID == caller.UserID || m.Mine,
		})
	}

	if err := s.store.Conversations().MarkRead(context.WithoutCancel(ctx), conversationID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		// The page was read successfully; a failed unread-clear is not
		// worth failing the fetch over.
		s.log.Warn().Err(err).
			Str("conversationId", conversationID).
			Msg("mark-read failed after fetch")
	}
	return &FetchResult{Messages: views}, nil
}

// textFor resolves a message body to display text. Decrypt failures are
// logged and replaced with the placeholder; they never abort the page.
func (s *RelayService) textFor(m *model.Message) string {
	switch m.Body.Kind {
	case model.BodyEnveloped:
		text, err := s.cipher.Decrypt(m.Body.Envelope)
		if err != nil {
			s.log.Warn().Err(err).
				Str("conversationId", m.ConversationID).
				Str("messageId", m.MessageID).
				Msg("decrypt failed; placeholder substituted")
			return crypto.Placeholder
		}
		return text
	case model.BodyPlainLegacy:
		return m.Body.Legacy
	default:
		return crypto.Placeholder
	}
}

func (s *RelayService) previewFor(text string) string {
	if s.plainPreviews {
		return text
	}
	return redactedPreview
}

// storeErr passes not-found through and collapses everything else into the
// generic relay failure after logging the cause. Message bodies are never
// part of the log entry.
func (s *RelayService) storeErr(op, conversationID string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return err
	}
	s.log.Error().Stack().Err(err).
		Str("op", op).
		Str("conversationId", conversationID).
		Msg("store operation failed")
	return model.ErrRelay
}
