package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/notify"
)

// ServeSSE returns an HTTP handler that streams change frames to the
// authenticated household as text/event-stream.
func ServeSSE(hub *notify.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sess := &Session{
			Hub:         hub,
			HouseholdID: auth.HouseholdID(r.Context()),
			Transport:   &sseTransport{w: w, flusher: flusher},
			Logger:      logger,
		}
		if err := sess.Run(r.Context()); err != nil {
			logger.Debug("sse session ended", "error", err)
		}
	}
}

type sseTransport struct {
	w       io.Writer
	flusher http.Flusher
}

func (t *sseTransport) Send(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var data []byte
	if f.Data != nil {
		var err error
		data, err = json.Marshal(f.Data)
		if err != nil {
			return fmt.Errorf("marshal frame: %w", err)
		}
	}

	if _, err := fmt.Fprintf(t.w, "event: %s\ndata: %s\n\n", f.Event, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	t.flusher.Flush()
	return nil
}
