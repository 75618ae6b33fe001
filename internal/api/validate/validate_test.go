package validate

import (
	"strings"
	"testing"
	"time"
)

func TestConversationName(t *testing.T) {
	if err := ConversationName(""); err == nil {
		t.Fatalf("empty name accepted")
	}
	if err := ConversationName(strings.Repeat("x", 101)); err == nil {
		t.Fatalf("overlong name accepted")
	}
	if err := ConversationName("Trivia Night"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
}

func TestMessageText(t *testing.T) {
	if err := MessageText(""); err == nil {
		t.Fatalf("empty text accepted")
	}
	if err := MessageText(strings.Repeat("a", 4097)); err == nil {
		t.Fatalf("overlong text accepted")
	}
	if err := MessageText("hello"); err != nil {
		t.Fatalf("valid text rejected: %v", err)
	}
}

func TestSince(t *testing.T) {
	ts, err := Since("")
	if err != nil || ts != nil {
		t.Fatalf("empty since should be nil, got %v %v", ts, err)
	}
	if _, err := Since("yesterday"); err == nil {
		t.Fatalf("garbage since accepted")
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ts, err = Since("2025-06-01T12:00:00Z")
	if err != nil || ts == nil || !ts.Equal(want) {
		t.Fatalf("valid since rejected: %v %v", ts, err)
	}
}
