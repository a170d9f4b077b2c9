package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/observability/metrics"
)

// Cache maps pokemon ids to records. Entries are written once and never
// evicted; failed lookups are not cached.
type Cache struct {
	fetcher Fetcher
	store   *cache.Cache
	group   singleflight.Group
	minID   int
	maxID   int
	metrics *metrics.CatalogMetrics
	log     logger.Logger
}

// NewCache creates a cache serving ids in [minID, maxID]. metrics may be nil.
func NewCache(fetcher Fetcher, minID, maxID int, m *metrics.CatalogMetrics, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Global().Module("catalog")
	}
	return &Cache{
		fetcher: fetcher,
		store:   cache.New(cache.NoExpiration, 0),
		minID:   minID,
		maxID:   maxID,
		metrics: m,
		log:     log,
	}
}

// Range returns the inclusive id range served by the cache.
func (c *Cache) Range() (minID, maxID int) {
	return c.minID, c.maxID
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// CheckID validates an optional id without any I/O.
func (c *Cache) CheckID(id *int) error {
	if id == nil {
		return errors.New(ErrMissingID).
			Component("catalog").
			Category(errors.CategoryValidation).
			Build()
	}
	if *id < c.minID || *id > c.maxID {
		return errors.New(fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, *id, c.minID, c.maxID)).
			Component("catalog").
			Category(errors.CategoryValidation).
			Context("pokemon_id", *id).
			Build()
	}
	return nil
}

// Resolve returns the record for id, fetching it upstream on first use.
func (c *Cache) Resolve(ctx context.Context, id *int) (Record, error) {
	if err := c.CheckID(id); err != nil {
		return Record{}, err
	}
	return c.lookup(ctx, *id)
}

// ResolveID is Resolve for callers that always have an id.
func (c *Cache) ResolveID(ctx context.Context, id int) (Record, error) {
	return c.Resolve(ctx, &id)
}

func (c *Cache) lookup(ctx context.Context, id int) (Record, error) {
	key := strconv.Itoa(id)

	if cached, found := c.store.Get(key); found {
		c.metrics.IncrementCacheHits()
		return cached.(Record), nil
	}
	c.metrics.IncrementCacheMisses()

	// Concurrent misses for one id share a single upstream request
	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, found := c.store.Get(key); found {
			return cached.(Record), nil
		}

		record, err := c.fetcher.Fetch(ctx, id)
		if err != nil {
			return Record{}, err
		}

		// Add keeps the first stored record if another writer won
		if addErr := c.store.Add(key, record, cache.NoExpiration); addErr != nil {
			if existing, found := c.store.Get(key); found {
				return existing.(Record), nil
			}
		}
		c.metrics.SetCacheSize(c.store.ItemCount())
		return record, nil
	})
	if err != nil {
		c.log.Warn("Pokemon lookup failed",
			logger.Int("pokemon_id", id),
			logger.Error(err))
		return Record{}, errors.New(fmt.Errorf("%w: id %d: %w", ErrNotFound, id, err)).
			Component("catalog").
			Category(errors.CategoryNotFound).
			Context("pokemon_id", id).
			Build()
	}

	return v.(Record), nil
}
