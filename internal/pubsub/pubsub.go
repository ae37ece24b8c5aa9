package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher pushes billing event messages onto a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Close() error
}

// Subscriber delivers billing event messages from a topic until closed
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// PubSub is a transport that serves both ends, backing the in-process
// webhook pipeline
type PubSub interface {
	Publisher
	Subscriber
}
