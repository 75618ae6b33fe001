package responder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyMatchesRulesInOrder(t *testing.T) {
	r := New()

	cases := map[string]string{
		"Hello":                      "Hello there! How can I help you today?",
		"hey what's up":              "Hello there! How can I help you today?",
		"hi":                         "Hello there! How can I help you today?",
		"How are you doing?":         "I'm doing great, thanks for asking!",
		"i need some HELP please":    "I'm here to help. What do you need?",
		"thanks a lot":               "You're welcome!",
		"ok bye now":                 "Goodbye! Talk to you soon.",
		"goodbye":                    "Goodbye! Talk to you soon.",
		"Thank you, see you later!":  "You're welcome!", // thanks rule precedes farewell
		"hello, how are you":         "Hello there! How can I help you today?",
	}
	for input, want := range cases {
		assert.Equal(t, want, r.Reply(input), "input %q", input)
	}
}

func TestReplyFallbackComesFromPool(t *testing.T) {
	r := New()
	pool := map[string]bool{}
	for _, f := range FallbackReplies() {
		pool[f] = true
	}
	for i := 0; i < 50; i++ {
		got := r.Reply("the weather is quite nice today")
		assert.True(t, pool[got], "unexpected fallback %q", got)
	}
}

func TestReplyIsDeterministicForRuleHits(t *testing.T) {
	r := New()
	first := r.Reply("Hello")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Reply("Hello"))
	}
}

func TestReplyDoesNotMatchInsideWords(t *testing.T) {
	r := New()
	// "this" contains "hi" but must not trigger the greeting rule.
	pool := map[string]bool{}
	for _, f := range FallbackReplies() {
		pool[f] = true
	}
	got := r.Reply("this")
	assert.True(t, pool[got], "got %q", got)
}
