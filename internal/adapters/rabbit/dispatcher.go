package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	"speakerqueue/internal/domain"
)

type queueDispatcher struct {
	client *Client
}

// NewDispatcher returns an EmailDispatcher that publishes verification email
// jobs to the broker instead of sending inline. A worker consumes them.
func NewDispatcher(client *Client) domain.EmailDispatcher {
	return &queueDispatcher{client: client}
}

func (d *queueDispatcher) Dispatch(ctx context.Context, data *domain.VerificationEmailData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal verification email job: %w", err)
	}
	if err := d.client.Publish(body); err != nil {
		return fmt.Errorf("publish verification email job: %w", err)
	}
	return nil
}
