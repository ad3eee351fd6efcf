package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
)

// CachedBusinessAdapter wraps a BusinessRepository with a Redis read-through cache
type CachedBusinessAdapter struct {
	adapter repositories.BusinessRepository
	cache   providers.CacheProvider
}

// NewCachedBusinessAdapter creates a new cached business adapter
func NewCachedBusinessAdapter(adapter repositories.BusinessRepository, cache providers.CacheProvider) repositories.BusinessRepository {
	return &CachedBusinessAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	businessByIDTTL   = 300 // 5 minutes for single business
	businessesListTTL = 180 // 3 minutes for lists
)

func businessCacheKey(id string) string {
	return fmt.Sprintf("business:%s", id)
}

func businessesListCacheKey(filter repositories.BusinessFilter) string {
	statuses := make([]string, len(filter.Statuses))
	for i, s := range filter.Statuses {
		statuses[i] = string(s)
	}
	return fmt.Sprintf("businesses:list:%s:%s:%s:%s:%d:%d",
		strings.Join(statuses, ","), filter.UserID, filter.Category, filter.City, filter.Limit, filter.Offset)
}

// Create creates a business and invalidates list caches
func (a *CachedBusinessAdapter) Create(ctx context.Context, business *entities.Business) error {
	if err := a.adapter.Create(ctx, business); err != nil {
		return err
	}
	a.invalidateLists(ctx)
	return nil
}

// GetByID retrieves a business by ID with caching
func (a *CachedBusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	cacheKey := businessCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var business entities.Business
		if err := json.Unmarshal(cached, &business); err == nil {
			return &business, nil
		}
	}

	business, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(business); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, businessByIDTTL); err != nil {
				log.Printf("Failed to cache business %s: %v", id, err)
			}
		}
	}()

	return business, nil
}

// GetByIDs retrieves multiple businesses by IDs with batch caching
func (a *CachedBusinessAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	if len(ids) == 0 {
		return []*entities.Business{}, nil
	}

	cacheKeys := make([]string, len(ids))
	for i, id := range ids {
		cacheKeys[i] = businessCacheKey(id)
	}

	cached, _ := a.cache.GetMulti(ctx, cacheKeys)

	var cachedBusinesses []*entities.Business
	missingIDs := make([]string, 0)

	for i, id := range ids {
		if data, ok := cached[cacheKeys[i]]; ok {
			var business entities.Business
			if err := json.Unmarshal(data, &business); err == nil {
				cachedBusinesses = append(cachedBusinesses, &business)
				continue
			}
		}
		missingIDs = append(missingIDs, id)
	}

	if len(missingIDs) == 0 {
		return cachedBusinesses, nil
	}

	dbBusinesses, err := a.adapter.GetByIDs(ctx, missingIDs)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		items := make(map[string][]byte)
		for _, business := range dbBusinesses {
			if data, err := json.Marshal(business); err == nil {
				items[businessCacheKey(business.ID)] = data
			}
		}
		if len(items) > 0 {
			if err := a.cache.SetMulti(bgCtx, items, businessByIDTTL); err != nil {
				log.Printf("Failed to batch cache businesses: %v", err)
			}
		}
	}()

	return append(cachedBusinesses, dbBusinesses...), nil
}

// Update updates a business and drops its cache entries
func (a *CachedBusinessAdapter) Update(ctx context.Context, business *entities.Business) error {
	if err := a.adapter.Update(ctx, business); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, businessCacheKey(business.ID)); err != nil {
		log.Printf("Failed to invalidate cached business %s: %v", business.ID, err)
	}
	a.invalidateLists(ctx)
	return nil
}

// Delete deletes a business and drops its cache entries
func (a *CachedBusinessAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, businessCacheKey(id)); err != nil {
		log.Printf("Failed to invalidate cached business %s: %v", id, err)
	}
	a.invalidateLists(ctx)
	return nil
}

// List retrieves businesses with caching keyed on the full filter
func (a *CachedBusinessAdapter) List(ctx context.Context, filter repositories.BusinessFilter) ([]*entities.Business, error) {
	cacheKey := businessesListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var businesses []*entities.Business
		if err := json.Unmarshal(cached, &businesses); err == nil {
			return businesses, nil
		}
	}

	businesses, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(businesses); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, businessesListTTL); err != nil {
				log.Printf("Failed to cache business list: %v", err)
			}
		}
	}()

	return businesses, nil
}

// ListByOwner bypasses the cache; owner views must reflect writes immediately
func (a *CachedBusinessAdapter) ListByOwner(ctx context.Context, userID string) ([]*entities.Business, error) {
	return a.adapter.ListByOwner(ctx, userID)
}

func (a *CachedBusinessAdapter) invalidateLists(ctx context.Context) {
	if err := a.cache.DeletePattern(ctx, "businesses:list:*"); err != nil {
		log.Printf("Failed to invalidate business list caches: %v", err)
	}
}
