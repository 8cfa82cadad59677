package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Output formats of session inspect.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ListSessions prints one row per stored session.
func ListSessions(ctx context.Context, store ports.SessionStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTRACK\tSTEP\tMESSAGES\tEXPIRES")
	for _, id := range ids {
		s, err := store.Load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t?\t?\t%v\n", id, err)
			continue
		}
		expires := "never"
		if !s.ExpiresAt.IsZero() {
			expires = s.ExpiresAt.Format(time.RFC3339)
		}
		step := s.Step
		if step == "" {
			step = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Kind, step, len(s.History), expires)
	}
	return tw.Flush()
}

// InspectSession prints a session as JSON or YAML.
func InspectSession(ctx context.Context, store ports.SessionStore, sessionID, format string, w io.Writer) error {
	s, err := store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}
	// The password slot is never shown, even to operators.
	s.Registration.Password = ""

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}

	switch format {
	case "", FormatJSON:
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		// Round-trip through JSON so YAML keys match the JSON field names.
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("error marshaling session: %w", err)
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unknown output format %q (want json or yaml)", format)
}

// RemoveSessions deletes each session, reporting every failure.
func RemoveSessions(ctx context.Context, store ports.SessionStore, ids []string, w io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
