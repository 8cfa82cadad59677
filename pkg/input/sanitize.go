// Package input cleans user messages before they reach a dialogue track.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize is 4KB (conservative default).
const DefaultMaxSize = 4096

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer enforces a size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
type Sanitizer struct {
	MaxSize int
}

// New returns a Sanitizer. A non-positive maxSize selects DefaultMaxSize.
func New(maxSize int) Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return Sanitizer{MaxSize: maxSize}
}

// Sanitize returns the cleaned message. Oversized input is rejected rather
// than truncated.
func (s Sanitizer) Sanitize(msg string) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if len(msg) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(msg), limit)
	}
	if !utf8.ValidString(msg) {
		return "", ErrInvalidUTF8
	}

	// Fast path: nothing to strip.
	if strings.IndexFunc(msg, unsafeControl) < 0 {
		return msg, nil
	}

	var b strings.Builder
	b.Grow(len(msg))
	for _, r := range msg {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// unsafeControl matches ANSI escapes, NUL, BEL and friends.
func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
