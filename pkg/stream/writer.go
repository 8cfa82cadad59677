package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/domain"
)

// MsgInternalError is the apology sent when a turn fails unexpectedly.
const MsgInternalError = "죄송합니다. 일시적인 오류가 발생했습니다. 잠시 후 다시 시도해주세요."

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming not supported")

// Writer serializes events in the text/event-stream format, flushing after each one.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
	onEvent func(name string)
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithEventHook registers a callback invoked after each event is written.
func WithEventHook(fn func(name string)) WriterOption {
	return func(w *Writer) {
		w.onEvent = fn
	}
}

// NewWriter prepares w for streaming and sets the SSE headers.
func NewWriter(w http.ResponseWriter, opts ...WriterOption) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sw := &Writer{w: w, flusher: flusher}
	for _, opt := range opts {
		opt(sw)
	}
	return sw, nil
}

// Write emits a single event.
func (sw *Writer) Write(e Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", e.Name, err)
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", e.Name, data); err != nil {
		return err
	}
	sw.flusher.Flush()
	if sw.onEvent != nil {
		sw.onEvent(e.Name)
	}
	return nil
}

// Turn computes the frame to stream.
type Turn func(ctx context.Context) (Frame, error)

// Serve runs the turn and streams its events. A failing or panicking turn
// produces a single error event. Emission stops early once ctx is done, which is how a
// disconnected client is observed.
func Serve(ctx context.Context, sw *Writer, turn Turn, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}

	frame, err := runTurn(ctx, turn)
	if err != nil {
		logger.Error("stream turn failed", "err", err)
		if werr := sw.Write(ErrorEvent(err)); werr != nil {
			logger.Debug("failed to write error event", "err", werr)
		}
		return
	}

	for e := range Events(frame) {
		if ctx.Err() != nil {
			logger.Debug("stream client disconnected", "session_id", frame.SessionID)
			return
		}
		if err := sw.Write(e); err != nil {
			logger.Debug("stream write failed", "session_id", frame.SessionID, "err", err)
			return
		}
	}
}

// runTurn recovers a panicking turn into an error so the stream still ends
// with an event.
func runTurn(ctx context.Context, turn Turn) (frame Frame, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stream turn panicked: %v", rec)
		}
	}()
	return turn(ctx)
}

// ErrorEvent converts a turn failure into the terminal error event.
// Validation failures keep their message; anything else becomes a generic apology.
func ErrorEvent(err error) Event {
	msg := MsgInternalError
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	return Event{Name: EventError, Data: map[string]string{"error": msg}}
}
