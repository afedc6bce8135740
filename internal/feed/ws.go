package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/notify"
)

// ServeWS returns an HTTP handler that upgrades the connection to WebSocket
// and streams the same frames as the SSE feed, as JSON text messages.
func ServeWS(hub *notify.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Allow connections from any origin (household LAN)
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Read pump: inbound messages are discarded; a read error means the
		// client went away, which cancels the session.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					return
				}
			}
		}()

		sess := &Session{
			Hub:         hub,
			HouseholdID: auth.HouseholdID(r.Context()),
			Transport:   &wsTransport{conn: conn},
			Logger:      logger,
		}
		if err := sess.Run(ctx); err != nil {
			logger.Debug("websocket session ended", "error", err)
		}

		conn.Close(ws.StatusNormalClosure, "")
	}
}

type wsTransport struct {
	conn *ws.Conn
}

type wsFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func (t *wsTransport) Send(ctx context.Context, f Frame) error {
	msg, err := json.Marshal(wsFrame{Event: f.Event, Data: f.Data})
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return t.conn.Write(ctx, ws.MessageText, msg)
}
