package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/stream"
	"github.com/go-chi/chi/v5"
)

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.NewValidationError("body", msgInputRejected)
	}
	return domain.NewValidationError("body", msgBadBody)
}

// conversationBody is the request body shared by the three tracks.
type conversationBody struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (s *Server) readConversation(r *http.Request) (conversationBody, error) {
	var body conversationBody
	if err := decode(r, &body); err != nil {
		return body, err
	}
	msg, err := s.sanitizer.Sanitize(body.Message)
	if err != nil {
		return body, err
	}
	body.Message = msg
	return body, nil
}

// serveStream answers with server-sent events. Request errors found before the
// turn runs are reported as a JSON error instead.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, turn func(context.Context) (stream.Framer, error)) {
	var opts []stream.WriterOption
	if s.svc.Metrics != nil {
		opts = append(opts, stream.WithEventHook(s.svc.Metrics.StreamEvent))
	}
	sw, err := stream.NewWriter(w, opts...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stream.Serve(r.Context(), sw, func(ctx context.Context) (stream.Frame, error) {
		f, err := turn(ctx)
		if err != nil {
			return stream.Frame{}, err
		}
		return f.Frame(), nil
	}, s.logger)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request, del func(context.Context, string) error) {
	id := chi.URLParam(r, "session_id")
	if id == "" {
		s.writeError(w, r, domain.NewValidationError("session_id", msgSessionRequired))
		return
	}
	if err := del(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			err = newAPIError(http.StatusNotFound, CodeNotFound, msgSessionNotFound, map[string]any{"session_id": id})
		}
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": msgSessionDeleted})
}

// -- Registration --

func (s *Server) registrationRequest(r *http.Request) (dialog.RegistrationRequest, error) {
	body, err := s.readConversation(r)
	return dialog.RegistrationRequest{Message: body.Message, SessionID: body.SessionID}, err
}

func (s *Server) registrationTurn(w http.ResponseWriter, r *http.Request) {
	req, err := s.registrationRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Registration.Converse(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

func (s *Server) registrationStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.registrationRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveStream(w, r, func(ctx context.Context) (stream.Framer, error) {
		return s.svc.Registration.Converse(ctx, req)
	})
}

func (s *Server) deleteRegistration(w http.ResponseWriter, r *http.Request) {
	s.deleteSession(w, r, s.svc.Registration.Delete)
}

// -- Onboarding --

func (s *Server) onboardingRequest(r *http.Request) (dialog.OnboardingRequest, error) {
	body, err := s.readConversation(r)
	return dialog.OnboardingRequest{Message: body.Message, SessionID: body.SessionID, UserID: userID(r.Context())}, err
}

func (s *Server) onboardingTurn(w http.ResponseWriter, r *http.Request) {
	req, err := s.onboardingRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Onboarding.Converse(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

func (s *Server) onboardingStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.onboardingRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveStream(w, r, func(ctx context.Context) (stream.Framer, error) {
		return s.svc.Onboarding.Converse(ctx, req)
	})
}

func (s *Server) deleteOnboarding(w http.ResponseWriter, r *http.Request) {
	s.deleteSession(w, r, s.svc.Onboarding.Delete)
}

// completeBody accepts both "interest" and "interests" for the interest list.
type completeBody struct {
	SessionID string `json:"session_id"`
	Profile   struct {
		Region    string `json:"region"`
		LifeCycle string `json:"life_cycle"`
		AgeGroup  string `json:"age_group"`
		Interest  string `json:"interest"`
		Interests string `json:"interests"`
	} `json:"profile"`
}

type userBody struct {
	ID                  int64          `json:"id"`
	Email               string         `json:"email"`
	Name                string         `json:"name"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	Profile             domain.Profile `json:"profile"`
}

func newUserBody(u *domain.User) userBody {
	return userBody{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		OnboardingCompleted: u.OnboardingCompleted,
		Profile:             u.Profile,
	}
}

func (s *Server) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	var body completeBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.SessionID == "" {
		s.writeError(w, r, domain.NewValidationError("session_id", msgSessionRequired))
		return
	}

	p := body.Profile
	interest := p.Interest
	if interest == "" {
		interest = p.Interests
	}
	profile := domain.Profile{Region: p.Region, LifeCycle: p.LifeCycle, AgeGroup: p.AgeGroup, Interest: interest}

	user, err := s.svc.Onboarding.Complete(r.Context(), userID(r.Context()), body.SessionID, profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message": msgOnboardingDone,
		"user":    newUserBody(user),
	})
}

// -- Chat --

func (s *Server) chatRequest(r *http.Request) (dialog.ChatRequest, error) {
	body, err := s.readConversation(r)
	return dialog.ChatRequest{Message: body.Message, SessionID: body.SessionID}, err
}

func (s *Server) chatTurn(w http.ResponseWriter, r *http.Request) {
	req, err := s.chatRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Chat.Converse(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

func (s *Server) chatStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.chatRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveStream(w, r, func(ctx context.Context) (stream.Framer, error) {
		return s.svc.Chat.Converse(ctx, req)
	})
}

func (s *Server) deleteChat(w http.ResponseWriter, r *http.Request) {
	s.deleteSession(w, r, s.svc.Chat.Delete)
}

type chatHealthBody struct {
	Status         string         `json:"status"`
	Database       string         `json:"database"`
	Generator      string         `json:"generator"`
	ActiveSessions map[string]int `json:"active_sessions"`
	PolicyCount    int            `json:"policy_count"`
}

func (s *Server) chatHealth(w http.ResponseWriter, r *http.Request) {
	body := chatHealthBody{
		Status:         "ok",
		Database:       "not_configured",
		Generator:      "not_configured",
		ActiveSessions: map[string]int{},
	}
	if s.svc.Chat.GeneratorConfigured() {
		body.Generator = "configured"
	}

	if s.svc.Policies != nil {
		n, err := s.svc.Policies.CountPolicies(r.Context())
		if err != nil {
			s.logger.Warn("policy count failed", "err", err)
			body.Database = "unavailable"
			body.Status = "degraded"
		} else {
			body.Database = "ready"
			body.PolicyCount = n
		}
	}

	counts, err := s.svc.Sessions.Count(r.Context())
	if err != nil {
		s.logger.Warn("session count failed", "err", err)
		body.Status = "degraded"
	}
	total := 0
	for kind, n := range counts {
		body.ActiveSessions[string(kind)] = n
		total += n
	}
	body.ActiveSessions["total"] = total

	JSON(w, http.StatusOK, body)
}

// -- Auth --

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Email == "" {
		s.writeError(w, r, domain.NewValidationError("email", msgEmailRequired))
		return
	}
	if body.Password == "" {
		s.writeError(w, r, domain.NewValidationError("password", msgPasswordNeeded))
		return
	}

	user, err := s.svc.Auth.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tokens, err := s.svc.Tokens.Issue(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tokens.User = &domain.UserView{ID: user.ID, Email: user.Email, Name: user.Name}
	JSON(w, http.StatusOK, tokens)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.RefreshToken == "" {
		s.writeError(w, r, domain.NewValidationError("refresh_token", msgRefreshRequired))
		return
	}

	tokens, err := s.svc.Tokens.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			err = newAPIError(http.StatusUnauthorized, CodeAuthentication, msgInvalidRefresh, nil)
		}
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, tokens)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tokens.Revoke(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message": msgLoggedOut,
		"user_id": userID(r.Context()),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.FindUserByID(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, newUserBody(user))
}

// -- Policies --

func (s *Server) getPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Policies.GetPolicy(r.Context(), chi.URLParam(r, "policy_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, p)
}
