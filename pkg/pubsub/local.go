package pubsub

import (
	"context"
	"sync"
	"time"
)

const localBufferSize = 1024

// LocalBroker delivers packs between publishers and subscribers of the same
// process. Every subscriber receives every pack of its topics, in publish
// order, on its own goroutine.
type LocalBroker struct {
	mutex       sync.RWMutex
	subscribers map[string][]*localSubscriber
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subscribers: make(map[string][]*localSubscriber)}
}

func (b *LocalBroker) Publish(ctx context.Context, topic string, pack *Pack) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for _, s := range b.subscribers[topic] {
		select {
		case s.queue <- localMessage{pack: pack, timestamp: time.Now()}:
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// NewSubscriber registers handler on topics. Packs published before Subscribe
// is called are buffered.
func (b *LocalBroker) NewSubscriber(topics []string, handler SubscribeHandler) Subscriber {
	s := &localSubscriber{
		queue:   make(chan localMessage, localBufferSize),
		done:    make(chan struct{}),
		handler: handler,
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, topic := range topics {
		b.subscribers[topic] = append(b.subscribers[topic], s)
	}

	return s
}

type localMessage struct {
	pack      *Pack
	timestamp time.Time
}

type localSubscriber struct {
	queue    chan localMessage
	done     chan struct{}
	stopOnce sync.Once
	handler  SubscribeHandler
}

func (s *localSubscriber) Subscribe(ctx context.Context) {
	go func() {
		for {
			select {
			case msg := <-s.queue:
				s.handler(ctx, msg.pack, msg.timestamp)
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *localSubscriber) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}
