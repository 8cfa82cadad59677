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
	confirmKeywords = []string{"네", "예", "응", "ㅇㅇ", "yes", "y", "확인", "진행"}
	cancelKeywords  = []string{"아니오", "아니", "ㄴㄴ", "no", "n", "취소", "다시"}
)

// RegistrationInput is one message plus the facts prefetched for it.
type RegistrationInput struct {
	Message string

	// EmailTaken reports whether the submitted email is already registered.
	// Only consulted at collect_email.
	EmailTaken bool
}

// RegistrationOutcome is the result of a registration transition.
type RegistrationOutcome struct {
	Step            domain.RegistrationStep
	Slots           domain.RegistrationSlots
	Response        string
	ValidationError string
	Effect          Effect
}

// EmailToCheck returns the normalized email whose availability must be known
// before StepRegistration can run, if any.
func EmailToCheck(step domain.RegistrationStep, msg string) (string, bool) {
	if step != domain.RegCollectEmail {
		return "", false
	}
	if ok, _ := slots.ValidEmail(msg); !ok {
		return "", false
	}
	return strings.ToLower(msg), true
}

// StepRegistration applies one message to a registration session.
// Invalid input never advances the step. The only backward edges are a
// password mismatch (back to collect_password, password cleared) and a
// cancelled confirmation (back to collect_name, all slots cleared).
func StepRegistration(step domain.RegistrationStep, s domain.RegistrationSlots, in RegistrationInput) RegistrationOutcome {
	msg := in.Message
	out := RegistrationOutcome{Step: step, Slots: s}

	reject := func(verr, suffix string) RegistrationOutcome {
		out.ValidationError = verr
		out.Response = verr + suffix
		return out
	}

	switch step {
	case domain.RegGreeting, domain.RegCollectName:
		if ok, verr := slots.ValidName(msg); !ok {
			return reject(verr, regRetry)
		}
		out.Slots.Name = msg
		out.Step = domain.RegCollectEmail
		out.Response = msg + "님, 반가워요! " + regAskEmail

	case domain.RegCollectEmail:
		if ok, verr := slots.ValidEmail(msg); !ok {
			return reject(verr, regRetryEmail)
		}
		if in.EmailTaken {
			return reject(msgEmailTaken, regRetryOther)
		}
		out.Slots.Email = strings.ToLower(msg)
		out.Step = domain.RegCollectPassword
		out.Response = regAskPassword

	case domain.RegCollectPassword:
		if ok, verr := slots.ValidPassword(msg); !ok {
			return reject(verr, regRetry)
		}
		out.Slots.Password = msg
		out.Step = domain.RegCollectPasswordConfirm
		out.Response = regAskConfirm

	case domain.RegCollectPasswordConfirm:
		if msg != s.Password {
			out.Slots.Password = ""
			out.Step = domain.RegCollectPassword
			return reject(msgPasswordMatch, regRetryPassword)
		}
		out.Step = domain.RegConfirm
		out.Response = fmt.Sprintf(regConfirmSummary, s.Name, s.Email)

	case domain.RegConfirm:
		lower := strings.ToLower(msg)
		switch {
		case containsAny(lower, confirmKeywords):
			out.Step = domain.RegCompleted
			out.Response = regCompleted
			out.Effect = EffectCreateUser
		case containsAny(lower, cancelKeywords):
			out.Slots = domain.RegistrationSlots{}
			out.Step = domain.RegCollectName
			out.Response = regRestart
		default:
			out.Response = regConfirmHelp
		}

	case domain.RegCompleted:
		out.Response = regAlreadyComplete

	default:
		// Unknown steps come from corrupted or foreign data; restart cleanly.
		out.Slots = domain.RegistrationSlots{}
		out.Step = domain.RegCollectName
		out.Response = regRestart
	}
	return out
}

// RegistrationCreateFailed is the outcome of a confirmation whose account
// creation was rejected as invalid: the flow rolls back to collect_email.
func RegistrationCreateFailed(s domain.RegistrationSlots, reason string) RegistrationOutcome {
	return RegistrationOutcome{
		Step:            domain.RegCollectEmail,
		Slots:           s,
		Response:        reason + regRetryCreate,
		ValidationError: reason,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// RegistrationRequest is one inbound registration message.
type RegistrationRequest struct {
	Message   string `json:"message" mapstructure:"message"`
	SessionID string `json:"session_id,omitempty" mapstructure:"session_id"`
}

// RegistrationResult is the turn result of the registration track.
// Slots never carry the password.
type RegistrationResult struct {
	Response        string                  `json:"response"`
	SessionID       string                  `json:"session_id"`
	Step            domain.RegistrationStep `json:"step"`
	Slots           domain.RegistrationView `json:"slots"`
	IsCompleted     bool                    `json:"is_completed"`
	Tokens          *domain.Tokens          `json:"tokens,omitempty"`
	ValidationError string                  `json:"validation_error,omitempty"`
}

// Frame implements stream.Framer.
func (r *RegistrationResult) Frame() stream.Frame {
	return stream.Frame{
		SessionID:       r.SessionID,
		Header:          stream.Event{Name: stream.EventStep, Data: map[string]domain.RegistrationStep{"step": r.Step}},
		Slots:           stream.Event{Name: stream.EventSlots, Data: r.Slots},
		ValidationError: r.ValidationError,
		Text:            r.Response,
		TextEvent:       stream.EventMessage,
		Tokens:          r.Tokens,
		Done:            map[string]bool{"is_completed": r.IsCompleted},
	}
}

// RegistrationService runs the registration track.
type RegistrationService struct {
	sessions *session.Manager
	users    ports.UserStore
	tokens   ports.TokenIssuer
	opts     options
}

// NewRegistrationService wires the registration track to its collaborators.
func NewRegistrationService(sessions *session.Manager, users ports.UserStore, tokens ports.TokenIssuer, opts ...Option) *RegistrationService {
	return &RegistrationService{
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		opts:     newOptions(opts),
	}
}

// Converse processes one registration message.
func (s *RegistrationService) Converse(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	sess, created, err := s.sessions.Resume(ctx, domain.KindRegistration, req.SessionID)
	if err != nil {
		return nil, err
	}

	now := s.sessions.Now()
	if created {
		sess.Step = string(domain.RegCollectName)
		sess.Append(domain.RoleAssistant, regGreeting, now)
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return s.result(sess, regGreeting, "", nil), nil
	}

	step := domain.RegistrationStep(sess.Step)
	if step == domain.RegCompleted {
		return s.result(sess, regAlreadyComplete, "", nil), nil
	}

	msg := strings.TrimSpace(req.Message)
	in := RegistrationInput{Message: msg}
	if email, ok := EmailToCheck(step, msg); ok {
		in.EmailTaken, err = s.users.UserExists(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	out := StepRegistration(step, sess.Registration, in)

	var tokens *domain.Tokens
	if out.Effect == EffectCreateUser {
		out, tokens, err = s.createAccount(ctx, out)
		if err != nil {
			return nil, err
		}
	}

	if step == domain.RegCollectPassword || step == domain.RegCollectPasswordConfirm {
		sess.Append(domain.RoleUser, maskedSecret, now)
	} else {
		sess.Append(domain.RoleUser, msg, now)
	}
	sess.Step = string(out.Step)
	sess.Registration = out.Slots
	sess.Append(domain.RoleAssistant, out.Response, now)

	if out.Step == domain.RegCompleted {
		// The account exists now; the session has no reason to keep the secret.
		sess.Registration.Password = ""
		s.sessions.ScheduleDeletion(sess)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.opts.turn(ctx, &domain.TurnEvent{
		EventBase:       domain.EventBase{Timestamp: now, Type: domain.EventTurn, SessionID: sess.ID, Track: domain.KindRegistration},
		Step:            sess.Step,
		ValidationError: out.ValidationError,
		Completed:       out.Step == domain.RegCompleted,
	})
	return s.result(sess, out.Response, out.ValidationError, tokens), nil
}

// createAccount performs EffectCreateUser. Duplicate or invalid accounts roll
// the outcome back to collect_email; other failures propagate.
func (s *RegistrationService) createAccount(ctx context.Context, out RegistrationOutcome) (RegistrationOutcome, *domain.Tokens, error) {
	slotsIn := out.Slots
	user, err := s.users.CreateUser(ctx, slotsIn.Email, slotsIn.Password, slotsIn.Name)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			s.opts.logger.Info("registration rejected: email already registered")
			return RegistrationCreateFailed(slotsIn, msgEmailRegistered), nil, nil
		case errors.As(err, &verr):
			return RegistrationCreateFailed(slotsIn, verr.Message), nil, nil
		}
		return out, nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return out, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	tokens.User = &domain.UserView{ID: user.ID, Email: user.Email, Name: user.Name}

	s.opts.logger.Info("user registered", "user_id", user.ID)
	return out, &tokens, nil
}

func (s *RegistrationService) result(sess *domain.Session, response, verr string, tokens *domain.Tokens) *RegistrationResult {
	step := domain.RegistrationStep(sess.Step)
	return &RegistrationResult{
		Response:        response,
		SessionID:       sess.ID,
		Step:            step,
		Slots:           sess.Registration.View(),
		IsCompleted:     step == domain.RegCompleted,
		Tokens:          tokens,
		ValidationError: verr,
	}
}

// Delete removes a registration session.
func (s *RegistrationService) Delete(ctx context.Context, sessionID string) error {
	return deleteTrackSession(ctx, s.sessions, domain.KindRegistration, sessionID)
}
