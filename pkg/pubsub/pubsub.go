package pubsub

import (
	"context"
	"time"
)

type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}

type SubscribeHandler func(context.Context, *Pack, time.Time)

type Subscriber interface {
	// Subscribe starts delivering messages to the handler. It returns once the
	// subscriber is ready.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
