package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
	"github.com/benepick/benepick/pkg/session"
	"github.com/benepick/benepick/pkg/slots"
	"github.com/benepick/benepick/pkg/stream"
)

var (
	lifeCycleSkipKeywords = []string{"없", "해당없음", "스킵"}
	interestSkipKeywords  = []string{"스킵", "건너뛰기"}
)

// OnboardingOutcome is the result of an onboarding transition.
type OnboardingOutcome struct {
	Step         domain.OnboardingStep
	Profile      domain.Profile
	Response     string
	QuickReplies []string
	Effect       Effect
}

// OnboardingGreeting returns the greeting of a fresh onboarding session and
// its region quick replies.
func OnboardingGreeting(name string) (string, []string) {
	if strings.TrimSpace(name) == "" {
		name = defaultDisplayName
	}
	return fmt.Sprintf(onbGreeting, name), slots.RegionQuickReplies()
}

// StepOnboarding applies one message to an onboarding session.
func StepOnboarding(step domain.OnboardingStep, p domain.Profile, msg string) OnboardingOutcome {
	out := OnboardingOutcome{Step: step, Profile: p}

	switch step {
	case domain.OnbGreeting, domain.OnbCollectRegion:
		region, ok := slots.Region(msg)
		if !ok {
			out.Response = onbRegionRetry
			out.QuickReplies = slots.RegionQuickReplies()
			return out
		}
		out.Profile.Region = region
		out.Step = domain.OnbCollectLifeCycle
		out.Response = fmt.Sprintf(onbRegionOK, region)
		out.QuickReplies = slots.OnboardingLifeCycles.Labels()

	case domain.OnbCollectLifeCycle:
		if lc, ok := slots.LifeCycle(slots.OnboardingLifeCycles, msg); ok {
			out.Profile.LifeCycle = lc
			out.Step = domain.OnbCollectInterests
			out.Response = fmt.Sprintf(onbLifeCycleOK, lc)
			out.QuickReplies = slots.InterestQuickReplies()
			return out
		}
		if containsAny(msg, lifeCycleSkipKeywords) {
			out.Step = domain.OnbCollectInterests
			out.Response = onbLifeCycleSkip
			out.QuickReplies = slots.InterestQuickReplies()
			return out
		}
		out.Response = onbLifeCycleRetry
		out.QuickReplies = append(slots.OnboardingLifeCycles.Labels(), optNotApplicable)

	case domain.OnbCollectInterests:
		if interests := slots.ExtractInterests(msg); len(interests) > 0 {
			out.Profile.Interest = strings.Join(interests, ", ")
			out.Step = domain.OnbCompleted
			out.Response = fmt.Sprintf(onbCompleted, profileSummary(out.Profile))
			out.Effect = EffectPersistProfile
			return out
		}
		if containsAny(msg, interestSkipKeywords) {
			out.Step = domain.OnbCompleted
			out.Response = onbInterestsSkip
			out.Effect = EffectPersistProfile
			return out
		}
		out.Response = onbInterestsRetry
		out.QuickReplies = append(slots.InterestQuickReplies(), optSkip)

	default:
		out.Response = onbAlreadyComplete
	}
	return out
}

func profileSummary(p domain.Profile) string {
	var lines []string
	if p.Region != "" {
		lines = append(lines, "📍 "+p.Region)
	}
	if p.LifeCycle != "" {
		lines = append(lines, "👤 "+p.LifeCycle)
	}
	if p.Interest != "" {
		lines = append(lines, "💡 "+p.Interest)
	}
	return strings.Join(lines, "\n")
}

// OnboardingRequest is one inbound onboarding message from an authenticated user.
type OnboardingRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    int64  `json:"-"`
}

// OnboardingResult is the turn result of the onboarding track.
type OnboardingResult struct {
	Response     string                `json:"response"`
	SessionID    string                `json:"session_id"`
	Step         domain.OnboardingStep `json:"step"`
	Profile      domain.Profile        `json:"profile"`
	IsCompleted  bool                  `json:"is_completed"`
	QuickReplies []string              `json:"quick_replies,omitempty"`
}

// Frame implements stream.Framer.
func (r *OnboardingResult) Frame() stream.Frame {
	return stream.Frame{
		SessionID: r.SessionID,
		Header:    stream.Event{Name: stream.EventStep, Data: map[string]domain.OnboardingStep{"step": r.Step}},
		Slots:     stream.Event{Name: stream.EventProfile, Data: r.Profile},
		Text:      r.Response,
		TextEvent: stream.EventMessage,
		Done: struct {
			IsCompleted  bool     `json:"is_completed"`
			QuickReplies []string `json:"quick_replies,omitempty"`
		}{r.IsCompleted, r.QuickReplies},
	}
}

// OnboardingService runs the onboarding track.
type OnboardingService struct {
	sessions *session.Manager
	users    ports.UserStore
	opts     options
}

// NewOnboardingService wires the onboarding track to its collaborators.
func NewOnboardingService(sessions *session.Manager, users ports.UserStore, opts ...Option) *OnboardingService {
	return &OnboardingService{
		sessions: sessions,
		users:    users,
		opts:     newOptions(opts),
	}
}

// Converse processes one onboarding message.
func (s *OnboardingService) Converse(ctx context.Context, req OnboardingRequest) (*OnboardingResult, error) {
	sess, created, err := s.sessions.Resume(ctx, domain.KindOnboarding, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !created && sess.UserID != req.UserID {
		// Another user's session is treated as unknown.
		sess, err = s.sessions.Create(ctx, domain.KindOnboarding)
		if err != nil {
			return nil, err
		}
		created = true
	}

	now := s.sessions.Now()
	if created {
		name, err := s.displayName(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		greeting, replies := OnboardingGreeting(name)

		sess.UserID = req.UserID
		sess.Step = string(domain.OnbCollectRegion)
		sess.Append(domain.RoleAssistant, greeting, now)
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return s.result(sess, greeting, replies), nil
	}

	step := domain.OnboardingStep(sess.Step)
	if step == domain.OnbCompleted {
		return s.result(sess, onbAlreadyComplete, nil), nil
	}

	msg := strings.TrimSpace(req.Message)
	out := StepOnboarding(step, sess.Profile, msg)

	if out.Effect == EffectPersistProfile {
		if err := s.users.SaveProfile(ctx, sess.UserID, out.Profile); err != nil {
			return nil, fmt.Errorf("failed to save profile: %w", err)
		}
		s.opts.logger.Info("onboarding completed", "user_id", sess.UserID)
	}

	sess.Append(domain.RoleUser, msg, now)
	sess.Step = string(out.Step)
	sess.Profile = out.Profile
	sess.Append(domain.RoleAssistant, out.Response, now)
	if out.Step == domain.OnbCompleted {
		s.sessions.ScheduleDeletion(sess)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.opts.turn(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventTurn, SessionID: sess.ID, Track: domain.KindOnboarding},
		Step:      sess.Step,
		Completed: out.Step == domain.OnbCompleted,
	})
	return s.result(sess, out.Response, out.QuickReplies), nil
}

func (s *OnboardingService) displayName(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return defaultDisplayName, nil
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return user.Name, nil
}

func (s *OnboardingService) result(sess *domain.Session, response string, replies []string) *OnboardingResult {
	step := domain.OnboardingStep(sess.Step)
	return &OnboardingResult{
		Response:     response,
		SessionID:    sess.ID,
		Step:         step,
		Profile:      sess.Profile,
		IsCompleted:  step == domain.OnbCompleted,
		QuickReplies: replies,
	}
}

// Complete stores a profile submitted directly by the client and discards the
// onboarding session, if any.
func (s *OnboardingService) Complete(ctx context.Context, userID int64, sessionID string, profile domain.Profile) (*domain.User, error) {
	if err := s.users.SaveProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	if sessionID != "" {
		err := deleteTrackSession(ctx, s.sessions, domain.KindOnboarding, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			s.opts.logger.Warn("failed to delete onboarding session", "session_id", sessionID, "err", err)
		}
	}
	return s.users.FindUserByID(ctx, userID)
}

// Delete removes an onboarding session.
func (s *OnboardingService) Delete(ctx context.Context, sessionID string) error {
	return deleteTrackSession(ctx, s.sessions, domain.KindOnboarding, sessionID)
}
