package domain

// Change feed tables and event types, mirroring row-level change
// notifications: a change names the table it happened on and carries the row.
const (
	TableEvents   = "events"
	TableRequests = "speaking_requests"

	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
)

// ChangeEvent is one row-level change delivered to subscribed clients.
type ChangeEvent struct {
	Table   string `json:"table"`
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Payload any    `json:"payload"`
}

// ChangePublisher is the port services use to announce successful writes.
type ChangePublisher interface {
	Publish(ev ChangeEvent)
}

// ChangeSubscriber delivers the change feed for one event. The returned
// cancel func must be called when the subscriber goes away.
type ChangeSubscriber interface {
	Subscribe(eventID string) (ch <-chan ChangeEvent, cancel func())
}
