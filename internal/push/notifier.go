package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/store"
)

const notifyTimeout = 30 * time.Second

// Notifier fans a notification out to every device a household registered.
// Delivery is best-effort: failures are logged, expired subscriptions are
// pruned, and nothing propagates back to the caller.
type Notifier struct {
	service *Service
	store   *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, pushStore *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{service: service, store: pushStore, logger: logger}
}

// Notify sends the payload to all of the household's subscriptions
// concurrently and waits for delivery to finish.
func (n *Notifier) Notify(householdID int64, payload Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	subs, err := n.store.ListByHousehold(householdID)
	if err != nil {
		n.logger.Error("list push subscriptions", "household", householdID, "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub model.PushSubscription) {
			defer wg.Done()
			err := n.service.Send(ctx, &sub, payload)
			if errors.Is(err, ErrExpired) {
				if err := n.store.DeleteByEndpoint(sub.Endpoint); err != nil {
					n.logger.Error("prune expired subscription", "error", err)
				}
				return
			}
			if err != nil {
				n.logger.Warn("push delivery failed", "household", householdID, "error", err)
			}
		}(sub)
	}
	wg.Wait()
}
