package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// scriptedEventBus hands out one channel the test controls directly.
type scriptedEventBus struct {
	ch chan *entities.BusinessEvent
}

func newScriptedEventBus() *scriptedEventBus {
	return &scriptedEventBus{ch: make(chan *entities.BusinessEvent, 8)}
}

func (b *scriptedEventBus) Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error {
	b.ch <- event
	return nil
}

func (b *scriptedEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error) {
	return b.ch, nil
}

func (b *scriptedEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *scriptedEventBus) Close() error {
	close(b.ch)
	return nil
}

// recordingCache records delete calls for assertions.
type recordingCache struct {
	mu       sync.Mutex
	deleted  []string
	patterns []string
}

func (c *recordingCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }

func (c *recordingCache) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	return map[string][]byte{}, nil
}

func (c *recordingCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return nil
}

func (c *recordingCache) SetMulti(ctx context.Context, items map[string][]byte, expirationSeconds int) error {
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *recordingCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	return nil
}

func (c *recordingCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

func (c *recordingCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.deleted...)
}

func (c *recordingCache) deletedPatterns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.patterns...)
}

func TestCacheInvalidationService_InvalidatesOnEvents(t *testing.T) {
	cache := &recordingCache{}
	bus := newScriptedEventBus()
	service := NewCacheInvalidationService(cache, bus)
	require.NoError(t, service.Start())
	defer service.Stop()

	require.NoError(t, bus.Publish(context.Background(), "business_updates",
		entities.NewBusinessEvent("biz-1", entities.BusinessEventTypeStatusChange, nil)))

	assert.Eventually(t, func() bool {
		return len(cache.deletedKeys()) == 1 && len(cache.deletedPatterns()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"business:biz-1"}, cache.deletedKeys())
	assert.Equal(t, []string{"businesses:list:*"}, cache.deletedPatterns())
}

func TestCacheInvalidationService_StopsWhenBusCloses(t *testing.T) {
	cache := &recordingCache{}
	bus := newScriptedEventBus()
	service := NewCacheInvalidationService(cache, bus)
	require.NoError(t, service.Start())
	defer service.Stop()

	require.NoError(t, bus.Publish(context.Background(), "business_updates",
		entities.NewBusinessEvent("biz-1", entities.BusinessEventTypeRatingUpdate, nil)))
	require.NoError(t, bus.Close())

	// The listener drains the channel and exits; a closed channel must not
	// produce phantom invalidations.
	assert.Eventually(t, func() bool {
		return len(cache.deletedKeys()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"business:biz-1"}, cache.deletedKeys())
}
