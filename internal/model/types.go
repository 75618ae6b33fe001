package model

import (
	"time"

	"github.com/coginfy/relay/internal/crypto"
)

// Reserved author identities for non-human messages.
const (
	// ResponderAuthorID marks messages written by the auto-responder.
	ResponderAuthorID = "relay-bot"
	// SystemAuthorID marks synthesized messages such as the welcome message.
	SystemAuthorID = "system"
)

// Conversation is a named message log plus its denormalized summary.
// LastMessage and LastActivityAt always describe a message that was
// actually committed to the log.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	Name           string    `json:"name"`
	CreatedBy      string    `json:"createdBy"`
	LastMessage    string    `json:"lastMessage"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	Unread         bool      `json:"unread"`
	CreationTime   time.Time `json:"creationTime"`
}

// BodyKind discriminates the two message body representations.
type BodyKind int

const (
	// BodyEnveloped is an encrypted (IV, ciphertext) pair.
	BodyEnveloped BodyKind = iota
	// BodyPlainLegacy is clear text from records created before
	// encryption was introduced. Read-only; never written anew.
	BodyPlainLegacy
)

// Body is a tagged variant: exactly one of Envelope or Legacy is
// meaningful, selected by Kind.
type Body struct {
	Kind     BodyKind
	Envelope crypto.Envelope
	Legacy   string
}

// EnvelopedBody wraps an encrypted envelope.
func EnvelopedBody(env crypto.Envelope) Body {
	return Body{Kind: BodyEnveloped, Envelope: env}
}

// LegacyBody wraps pre-encryption clear text.
func LegacyBody(text string) Body {
	return Body{Kind: BodyPlainLegacy, Legacy: text}
}

// Message is one immutable record in a conversation's log. Mine is the
// flag stored at write time; the caller-relative value is computed on read.
type Message struct {
	MessageID      string
	ConversationID string
	AuthorID       string
	Body           Body
	Mine           bool
	CreationTime   time.Time
}

// MessageView is the read-path projection of a message after decryption.
type MessageView struct {
	MessageID    string    `json:"id"`
	Text         string    `json:"text"`
	CreationTime time.Time `json:"timestamp"`
	Mine         bool      `json:"isMine"`
}

// ListMessagesRequest bounds a descending-time page read.
type ListMessagesRequest struct {
	ConversationID string
	Limit          int
}
