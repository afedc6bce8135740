package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/bywater/internal/notify"
)

// Frame kinds emitted on a change feed.
const (
	FrameConnected = "connected"
	FrameUpdate    = "update"
	FramePing      = "ping"
)

// DefaultHeartbeat is how long a session waits with no event before emitting
// a ping frame to keep intermediary connections from timing out.
const DefaultHeartbeat = 30 * time.Second

// Frame is one outbound message on a change feed.
type Frame struct {
	Event string
	Data  any
}

// Transport delivers frames to one client. A Send error is fatal to the
// session; client disconnect is signalled through context cancellation.
type Transport interface {
	Send(ctx context.Context, f Frame) error
}

// Session bridges a hub subscription to an outbound frame stream for one
// client connection. Many sessions per household, one per connection.
type Session struct {
	Hub         *notify.Hub
	HouseholdID int64
	Transport   Transport
	Heartbeat   time.Duration // DefaultHeartbeat when zero
	Logger      *slog.Logger
}

// Run subscribes to the hub, emits the connected frame, then streams update
// and ping frames until the context is cancelled or a send fails. The hub
// subscription is released on every exit path.
func (s *Session) Run(ctx context.Context) error {
	heartbeat := s.Heartbeat
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}

	sub := s.Hub.Subscribe(s.HouseholdID)
	defer s.Hub.Unsubscribe(sub)

	logger := s.Logger.With("subscriber", sub.ID, "household", s.HouseholdID)

	if err := s.Transport.Send(ctx, Frame{Event: FrameConnected, Data: map[string]string{"status": "connected"}}); err != nil {
		return err
	}
	logger.Debug("feed open")

	timer := time.NewTimer(heartbeat)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("feed closed", "reason", ctx.Err())
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := s.Transport.Send(ctx, Frame{Event: FrameUpdate, Data: ev}); err != nil {
				return err
			}
		case <-timer.C:
			if err := s.Transport.Send(ctx, Frame{Event: FramePing}); err != nil {
				return err
			}
		}

		// The heartbeat counts from the last outbound frame, not wall time.
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(heartbeat)
	}
}
