package ingredients

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// CachedResolver wraps a Resolver and remembers its answers in a JSON file,
// so the same dish is not sent to the model twice.
type CachedResolver struct {
	next          Resolver
	cache         map[string][]string
	cacheFilePath string
	logger        *zap.Logger
	mu            sync.Mutex
}

// NewCachedResolver creates a CachedResolver, loading cacheFilePath if it
// exists.
func NewCachedResolver(next Resolver, cacheFilePath string, logger *zap.Logger) (*CachedResolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CachedResolver{
		next:          next,
		cache:         make(map[string][]string),
		cacheFilePath: cacheFilePath,
		logger:        logger,
	}

	cacheDir := filepath.Dir(cacheFilePath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", cacheDir, err)
	}

	data, err := os.ReadFile(cacheFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("ingredient cache not found, starting empty", zap.String("path", cacheFilePath))
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", cacheFilePath, err)
	}

	if err := json.Unmarshal(data, &c.cache); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data from %s: %w", cacheFilePath, err)
	}

	logger.Info("loaded ingredient cache", zap.Int("dishes", len(c.cache)), zap.String("path", cacheFilePath))
	return c, nil
}

// Resolve answers from the cache, or asks the wrapped resolver and stores
// a non-empty answer. Errors are not cached.
func (c *CachedResolver) Resolve(ctx context.Context, dishName string) ([]string, error) {
	key := normalize(dishName)

	c.mu.Lock()
	if names, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return append([]string(nil), names...), nil
	}
	c.mu.Unlock()

	names, err := c.next.Resolve(ctx, dishName)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return names, nil
	}

	c.mu.Lock()
	c.cache[key] = append([]string(nil), names...)
	c.mu.Unlock()

	if err := c.SaveCache(); err != nil {
		c.logger.Warn("failed to persist ingredient cache", zap.Error(err))
	}
	return names, nil
}

// SaveCache persists the current in-memory cache to the file system.
func (c *CachedResolver) SaveCache() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := os.WriteFile(c.cacheFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", c.cacheFilePath, err)
	}
	return nil
}

// Len returns the number of cached dishes.
func (c *CachedResolver) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
