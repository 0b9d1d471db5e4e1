package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/settlement/pkg/pubsub"
)

// MockPublisher keeps every published pack unless PublishFunc is set.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, topic string, pack *pubsub.Pack) error

	mutex sync.Mutex
	packs []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.packs = append(m.packs, pack)
	return nil
}

func (m *MockPublisher) Published() []*pubsub.Pack {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return append([]*pubsub.Pack{}, m.packs...)
}
