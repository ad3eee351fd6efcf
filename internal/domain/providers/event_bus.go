package providers

import (
	"context"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelBusinessUpdates is the channel for all business updates
	EventChannelBusinessUpdates = "business:updates"

	// EventChannelBusinessPrefix is the prefix for business-specific channels
	EventChannelBusinessPrefix = "business:"
)

// GetBusinessChannel returns the channel name for a specific business
func GetBusinessChannel(businessID string) string {
	return EventChannelBusinessPrefix + businessID
}
