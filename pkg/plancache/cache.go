package plancache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/ctdf"
)

const keyPrefix = "journeyplanner:plan"

// Cache keeps the journeys found for a plan request in Redis. Searches are
// deterministic for a given network so a hit is always safe to return.
type Cache struct {
	cache *cache.Cache[string]
}

// Entry is what is stored per request, diagnostics are kept so that an empty
// plan served from the cache still explains itself
type Entry struct {
	Journeys    []*ctdf.RawJourney `json:"journeys"`
	Diagnostics map[string]int     `json:"diagnostics,omitempty"`
}

func New(client *redis.Client, expiry time.Duration) *Cache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiry))

	return &Cache{
		cache: cache.New[string](redisStore),
	}
}

func cacheKey(key string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key)
}

// Get treats any failure to read as a miss
func (c *Cache) Get(ctx context.Context, key string) (*Entry, bool) {
	value, err := c.cache.Get(ctx, cacheKey(key))
	if err != nil || value == "" {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached plan")
		return nil, false
	}

	return &entry, true
}

func (c *Cache) Set(ctx context.Context, key string, entry Entry) error {
	if entry.Journeys == nil {
		entry.Journeys = []*ctdf.RawJourney{}
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.cache.Set(ctx, cacheKey(key), string(value))
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, cacheKey(key))
}
