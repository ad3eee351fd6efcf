package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
)

// CacheInvalidationService handles cache invalidation based on events
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelBusinessUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to business updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Println("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Println("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.BusinessEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent invalidates the single-business cache entry so reads pick up
// the change immediately. List caches carry short TTLs and expire on their
// own; clearing them on every event would cause a stampede.
func (s *CacheInvalidationService) handleEvent(event *entities.BusinessEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("Processing cache invalidation for event: %s (business: %s, type: %s)",
		event.ID, event.BusinessID, event.EventType)

	key := fmt.Sprintf("business:%s", event.BusinessID)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("Warning: Failed to invalidate business cache for %s: %v", event.BusinessID, err)
	}

	// Status changes and deletions move listings in and out of public
	// lists, so those drop the list caches too.
	if event.EventType == entities.BusinessEventTypeStatusChange || event.EventType == entities.BusinessEventTypeDeleted {
		if err := s.cache.DeletePattern(ctx, "businesses:list:*"); err != nil {
			log.Printf("Warning: Failed to invalidate list caches: %v", err)
		}
	}
}

// InvalidateBusinessCache invalidates cache for a specific business
func (s *CacheInvalidationService) InvalidateBusinessCache(ctx context.Context, businessID string) error {
	key := fmt.Sprintf("business:%s", businessID)
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate business cache: %w", err)
	}
	log.Printf("Invalidated business cache for %s", businessID)
	return nil
}

// InvalidateListCaches invalidates all list caches. This should only be
// called during maintenance or bulk data updates.
func (s *CacheInvalidationService) InvalidateListCaches(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, "businesses:list:*"); err != nil {
		return fmt.Errorf("failed to invalidate list caches: %w", err)
	}
	log.Println("Invalidated business list caches")
	return nil
}
