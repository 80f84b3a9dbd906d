package port

import (
	"context"

	"mesaplan/internal/floorplan/domain"
)

// Broadcaster fans a message out to every subscribed WebSocket client.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler consumes messages for a single broker topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
