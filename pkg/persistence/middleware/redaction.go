package middleware

import (
	"context"
	"regexp"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
)

// DefaultRedactionPatterns match Korean mobile numbers and resident registration numbers.
var DefaultRedactionPatterns = []string{
	`01[016789]-?\d{3,4}-?\d{4}`,
	`\d{6}-?[1-4]\d{6}`,
}

const redacted = "***"

type redactionMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks matches of the patterns
// in the stored conversation history. Slots are left untouched.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, session *domain.Session) error {
	// Clone so the caller's in-flight copy keeps the original text.
	cloned := session.Clone()
	for i := range cloned.History {
		for _, p := range m.patterns {
			cloned.History[i].Text = p.ReplaceAllString(cloned.History[i].Text, redacted)
		}
	}
	return m.next.Save(ctx, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
