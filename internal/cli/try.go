package cli

import (
	"context"
	"io"

	"github.com/benepick/benepick"
	"github.com/benepick/benepick/internal/presentation/tui"
	"github.com/benepick/benepick/pkg/domain"
)

// TryOptions configures an interactive terminal conversation.
type TryOptions struct {
	Track  domain.Kind
	UserID int64
	In     io.Reader
	Out    io.Writer

	// Plain disables the banner and markdown rendering even on a terminal.
	Plain bool
}

// Try converses with a track over the terminal. A completed registration
// continues straight into onboarding as the new user.
func Try(ctx context.Context, app *App, opts TryOptions) error {
	interactive := !opts.Plain && tui.IsTerminal(opts.In) && tui.IsTerminal(opts.Out)
	if interactive {
		tui.PrintBanner(opts.Out, version())
	}

	runner := &benepick.Runner{
		Input:    NewInterruptibleReader(opts.In, ctx.Done()),
		Output:   opts.Out,
		Headless: !interactive,
	}
	if interactive {
		runner.Renderer = tui.NewRenderer(tui.Width(opts.Out))
	}

	track, userID := opts.Track, opts.UserID
	for {
		conv, err := app.Engine.Conversation(track, userID)
		if err != nil {
			return err
		}
		if interactive {
			printSystemMessage(opts.Out, "Starting %s conversation. Type 'exit' to quit.", track)
		}

		reply, err := runner.Run(ctx, conv)
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			return err
		}

		if track == domain.KindRegistration && reply.Done && reply.Tokens != nil && reply.Tokens.User != nil {
			userID = reply.Tokens.User.ID
			track = domain.KindOnboarding
			printSystemMessage(opts.Out, "Signed in as %s.", reply.Tokens.User.Email)
			continue
		}
		return nil
	}
}
