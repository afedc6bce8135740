package notify

// Event types broadcast to a household's connected clients.
const (
	EventProductsUpdated = "products_updated"
	EventShoppingUpdated = "shopping_updated"
)

// Event is a change notification scoped to one household. Events are
// ephemeral: with no subscribers they are dropped, never buffered.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// NewEvent creates an Event, substituting an empty payload for nil so the
// wire shape is always {"type": ..., "data": {...}}.
func NewEvent(eventType string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{Type: eventType, Data: data}
}
