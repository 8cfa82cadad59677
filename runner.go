package benepick

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
)

// Reply is the track-independent view of one turn.
type Reply struct {
	SessionID    string
	Text         string
	QuickReplies []string
	Done         bool

	// Tokens is set when registration completes.
	Tokens *domain.Tokens
}

// Turn sends one message to a track.
type Turn func(ctx context.Context, sessionID, message string) (Reply, error)

// Conversation adapts a dialogue track to the Runner.
type Conversation struct {
	Track domain.Kind

	// Greets is true for tracks that open with a greeting before the first message.
	Greets bool
	Turn   Turn
}

// ErrUserRequired is returned when onboarding is requested without a user.
var ErrUserRequired = errors.New("onboarding requires an authenticated user")

// Conversation returns the terminal adapter of a track. userID is only used by onboarding.
func (e *Engine) Conversation(track domain.Kind, userID int64) (Conversation, error) {
	switch track {
	case domain.KindRegistration:
		return Conversation{Track: track, Greets: true, Turn: func(ctx context.Context, id, msg string) (Reply, error) {
			res, err := e.registration.Converse(ctx, dialog.RegistrationRequest{Message: msg, SessionID: id})
			if err != nil {
				return Reply{}, err
			}
			text := res.Response
			if res.ValidationError != "" {
				text = res.ValidationError + "\n\n" + text
			}
			return Reply{SessionID: res.SessionID, Text: text, Done: res.IsCompleted, Tokens: res.Tokens}, nil
		}}, nil

	case domain.KindOnboarding:
		if userID == 0 {
			return Conversation{}, ErrUserRequired
		}
		return Conversation{Track: track, Greets: true, Turn: func(ctx context.Context, id, msg string) (Reply, error) {
			res, err := e.onboarding.Converse(ctx, dialog.OnboardingRequest{Message: msg, SessionID: id, UserID: userID})
			if err != nil {
				return Reply{}, err
			}
			return Reply{SessionID: res.SessionID, Text: res.Response, QuickReplies: res.QuickReplies, Done: res.IsCompleted}, nil
		}}, nil

	case domain.KindChat:
		return Conversation{Track: track, Turn: func(ctx context.Context, id, msg string) (Reply, error) {
			res, err := e.chat.Converse(ctx, dialog.ChatRequest{Message: msg, SessionID: id})
			if err != nil {
				return Reply{}, err
			}
			return Reply{SessionID: res.SessionID, Text: res.Response}, nil
		}}, nil
	}
	return Conversation{}, fmt.Errorf("unknown track %q", track)
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner drives a conversation over line-oriented IO.
// Input is buffered once and the buffer is kept across runs, so one Runner
// can chain conversations over the same stream.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	lines *bufio.Reader
}

// Run converses until the track completes, the input ends or the user types
// exit. It returns the last reply.
func (r *Runner) Run(ctx context.Context, conv Conversation) (Reply, error) {
	if r.Input == nil {
		return Reply{}, errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return Reply{}, errors.New("output writer must be set (use os.Stdout)")
	}
	if r.lines == nil {
		r.lines = bufio.NewReader(r.Input)
	}

	var last Reply
	if conv.Greets {
		reply, err := conv.Turn(ctx, "", "")
		if err != nil {
			return last, fmt.Errorf("greeting failed: %w", err)
		}
		last = reply
		r.print(reply)
	}

	for !last.Done {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := r.lines.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || text == "") {
			if errors.Is(err, io.EOF) {
				break
			}
			return last, fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)
		if input == "exit" || input == "quit" {
			fmt.Fprintln(r.Output, "Bye!")
			break
		}
		if input == "" {
			continue
		}

		reply, err := conv.Turn(ctx, last.SessionID, input)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(r.Output, verr.Message)
				continue
			}
			return last, err
		}
		last = reply
		r.print(reply)
	}
	return last, nil
}

func (r *Runner) print(reply Reply) {
	output := reply.Text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
	if len(reply.QuickReplies) > 0 {
		fmt.Fprintf(r.Output, "[%s]\n", strings.Join(reply.QuickReplies, "] ["))
	}
}
