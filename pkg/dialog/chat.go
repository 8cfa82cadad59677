package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/intent"
	"github.com/benepick/benepick/pkg/ports"
	"github.com/benepick/benepick/pkg/session"
	"github.com/benepick/benepick/pkg/slots"
	"github.com/benepick/benepick/pkg/stream"
)

// ChatAction is what the chat track decided to do with a message.
type ChatAction int

const (
	ChatReplyChitchat ChatAction = iota
	ChatAskRegion
	ChatAskLifeCycle
	ChatSearch
	ChatClarify
)

// ChatOutcome is the result of a chat transition.
type ChatOutcome struct {
	Intent        domain.Intent
	Profile       domain.Profile
	ReadyToSearch bool
	Action        ChatAction

	// Response is empty for ChatSearch; the answer comes from the search.
	Response string

	// Query is the composite search query for ChatSearch.
	Query string
}

// StepChat classifies msg, merges the slots it carries and decides the reply.
// The profile is only ever extended or overwritten, never cleared.
func StepChat(p domain.Profile, msg string) ChatOutcome {
	out := ChatOutcome{
		Intent:  intent.Classify(msg),
		Profile: slots.MergeProfile(p, msg, slots.ChatLifeCycles),
	}
	search := out.Intent == domain.IntentWelfareSearch
	out.ReadyToSearch = search && out.Profile.Region != "" && out.Profile.LifeCycle != ""

	switch {
	case out.Intent == domain.IntentChitchat:
		out.Action = ChatReplyChitchat
		out.Response = chatChitchat
	case search && out.Profile.Region == "":
		out.Action = ChatAskRegion
		out.Response = chatAskRegion
	case search && out.Profile.LifeCycle == "":
		out.Action = ChatAskLifeCycle
		out.Response = chatAskLifeCycle
	case out.ReadyToSearch:
		out.Action = ChatSearch
		out.Query = fmt.Sprintf("%s %s %s", out.Profile.Region, out.Profile.LifeCycle, msg)
	default:
		out.Action = ChatClarify
		out.Response = chatClarify
	}
	return out
}

// ChatRequest is one inbound chat message.
type ChatRequest struct {
	Message   string `json:"message" mapstructure:"message"`
	SessionID string `json:"session_id,omitempty" mapstructure:"session_id"`
}

// ChatResult is the turn result of the chat track.
type ChatResult struct {
	Response      string                `json:"response"`
	SessionID     string                `json:"session_id"`
	Intent        domain.Intent         `json:"intent"`
	ReadyToSearch bool                  `json:"ready_to_search"`
	UserProfile   domain.Profile        `json:"user_profile"`
	Sources       []domain.PolicySource `json:"sources,omitempty"`
}

// Frame implements stream.Framer.
func (r *ChatResult) Frame() stream.Frame {
	textEvent := stream.EventMessage
	if len(r.Sources) > 0 {
		textEvent = stream.EventAnswer
	}
	return stream.Frame{
		SessionID: r.SessionID,
		Header:    stream.Event{Name: stream.EventIntent, Data: map[string]domain.Intent{"intent": r.Intent}},
		Slots:     stream.Event{Name: stream.EventProfile, Data: r.UserProfile},
		Sources:   r.Sources,
		Text:      r.Response,
		TextEvent: textEvent,
		Done:      map[string]bool{"ready_to_search": r.ReadyToSearch},
	}
}

// ChatService runs the chat track.
type ChatService struct {
	sessions  *session.Manager
	searcher  ports.PolicySearcher
	generator ports.AnswerGenerator
	opts      options
}

// NewChatService wires the chat track. generator may be nil, in which case
// answers are always built from templates.
func NewChatService(sessions *session.Manager, searcher ports.PolicySearcher, generator ports.AnswerGenerator, opts ...Option) *ChatService {
	return &ChatService{
		sessions:  sessions,
		searcher:  searcher,
		generator: generator,
		opts:      newOptions(opts),
	}
}

// Converse processes one chat message. Unlike the other tracks, the message
// that creates a session is processed immediately.
func (s *ChatService) Converse(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, domain.NewValidationError("message", chatEmptyMessage)
	}

	sess, _, err := s.sessions.Resume(ctx, domain.KindChat, req.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.sessions.Now()
	sess.Append(domain.RoleUser, msg, now)

	out := StepChat(sess.Profile, msg)
	sess.Profile = out.Profile

	response := out.Response
	var sources []domain.PolicySource
	if out.Action == ChatSearch {
		sources = s.search(ctx, out.Query, out.Profile.Region)
		response = s.answer(ctx, sess.ID, msg, sources)
	}

	sess.Append(domain.RoleAssistant, response, now)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.opts.turn(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventTurn, SessionID: sess.ID, Track: domain.KindChat},
		Intent:    out.Intent,
	})

	return &ChatResult{
		Response:      response,
		SessionID:     sess.ID,
		Intent:        out.Intent,
		ReadyToSearch: out.ReadyToSearch,
		UserProfile:   sess.Profile,
		Sources:       sources,
	}, nil
}

// search never fails: an unavailable searcher yields no sources.
func (s *ChatService) search(ctx context.Context, query, region string) []domain.PolicySource {
	sources, err := s.searcher.Search(ctx, query, domain.SearchFilter{Region: region}, s.opts.topK)
	if err != nil {
		s.opts.logger.Warn("policy search unavailable", "err", err)
		return []domain.PolicySource{}
	}
	if sources == nil {
		sources = []domain.PolicySource{}
	}
	return sources
}

// answer asks the generator for an answer, falling back to a template when
// it is absent or fails.
func (s *ChatService) answer(ctx context.Context, sessionID, query string, sources []domain.PolicySource) string {
	if s.generator == nil {
		s.fallback(ctx, sessionID, sources, nil)
		return FallbackAnswer(sources)
	}

	text, err := s.generator.Generate(ctx, query, sources)
	if err != nil {
		s.opts.logger.Warn("answer generation failed", "err", err)
		s.fallback(ctx, sessionID, sources, err)
		return GenerationFailedAnswer(sources)
	}
	if strings.TrimSpace(text) == "" {
		return answerEmpty
	}
	return text
}

func (s *ChatService) fallback(ctx context.Context, sessionID string, sources []domain.PolicySource, err error) {
	if s.opts.hooks.OnAnswerFallback == nil {
		return
	}
	s.opts.hooks.OnAnswerFallback(ctx, &domain.FallbackEvent{
		EventBase: domain.EventBase{Timestamp: s.sessions.Now(), Type: domain.EventAnswerFallback, SessionID: sessionID, Track: domain.KindChat},
		Sources:   len(sources),
		Err:       err,
	})
}

// Delete removes a chat session.
func (s *ChatService) Delete(ctx context.Context, sessionID string) error {
	return deleteTrackSession(ctx, s.sessions, domain.KindChat, sessionID)
}

// GeneratorConfigured reports whether answers come from a generator.
func (s *ChatService) GeneratorConfigured() bool {
	return s.generator != nil
}

// FallbackAnswer is the templated answer used when no generator is configured.
func FallbackAnswer(sources []domain.PolicySource) string {
	if len(sources) == 0 {
		return answerNoPolicies
	}
	n := min(len(sources), 3)
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = fmt.Sprintf("%d. %s", i+1, sources[i].Title)
	}
	return fmt.Sprintf(answerFoundList, strings.Join(lines, "\n"))
}

// GenerationFailedAnswer is the templated answer used when generation errors.
func GenerationFailedAnswer(sources []domain.PolicySource) string {
	if len(sources) == 0 {
		return answerFailed
	}
	return fmt.Sprintf(answerFoundCount, len(sources))
}
