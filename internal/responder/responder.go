// Package responder implements the stateless auto-responder: ordered
// keyword rules with first-match-wins semantics and a random generic
// acknowledgement when nothing matches.
package responder

import (
	"math/rand/v2"
	"strings"
)

// rule maps keyword containment on the normalized input to a reply.
type rule struct {
	keywords []string
	reply    string
}

// Rules are checked in order; the first keyword hit wins.
var rules = []rule{
	{keywords: []string{"hello", "hi ", "hey"}, reply: "Hello there! How can I help you today?"},
	{keywords: []string{"how are you", "how's it going", "hows it going"}, reply: "I'm doing great, thanks for asking!"},
	{keywords: []string{"help", "support"}, reply: "I'm here to help. What do you need?"},
	{keywords: []string{"thank", "thx"}, reply: "You're welcome!"},
	{keywords: []string{"bye", "goodbye", "see you"}, reply: "Goodbye! Talk to you soon."},
}

var fallbacks = []string{
	"Got it!",
	"Interesting, tell me more.",
	"I see what you mean.",
	"Noted!",
	"That makes sense.",
}

// Responder picks replies for inbound user messages. It holds no state
// and is safe for concurrent use.
type Responder struct{}

// New returns a Responder.
func New() *Responder { return &Responder{} }

// Reply selects a reply for the given user text. Matching is
// case-insensitive; identical input always hits the same rule, and only
// the no-match fallback is randomized.
func (r *Responder) Reply(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	// "hi " needs the trailing space to avoid matching words like
	// "this"; a bare trailing "hi" is handled separately.
	padded := normalized + " "
	for _, ru := range rules {
		for _, kw := range ru.keywords {
			if strings.Contains(padded, kw) {
				return ru.reply
			}
		}
	}
	return fallbacks[rand.IntN(len(fallbacks))]
}

// GreetingReplies exposes the greeting-rule reply for tests.
func GreetingReplies() []string { return []string{rules[0].reply} }

// FallbackReplies exposes the acknowledgement pool for tests.
func FallbackReplies() []string {
	out := make([]string, len(fallbacks))
	copy(out, fallbacks)
	return out
}
