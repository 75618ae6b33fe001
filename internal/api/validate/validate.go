package validate

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	maxNameLen = 100
	maxTextLen = 4096
)

// ConversationName checks the display label supplied on create/rename.
func ConversationName(v string) error {
	if err := NonEmpty("name", v); err != nil {
		return err
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return fmt.Errorf("name exceeds %d characters", maxNameLen)
	}
	return nil
}

// MessageText checks the plaintext supplied on send. The limit bounds the
// plaintext; the stored envelope grows past it after padding and encoding.
func MessageText(v string) error {
	if err := NonEmpty("text", v); err != nil {
		return err
	}
	if utf8.RuneCountInString(v) > maxTextLen {
		return fmt.Errorf("text exceeds %d characters", maxTextLen)
	}
	return nil
}

// NonEmpty reports an error naming the field when v is empty.
func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// Since parses an optional RFC 3339 freshness marker from a query value.
// An empty value yields (nil, nil).
func Since(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("since must be RFC 3339")
	}
	return &ts, nil
}
