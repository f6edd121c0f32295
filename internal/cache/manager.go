package cache

import (
	"context"
	"log/slog"
	"time"
)

// Manager wraps the shared cache backend and provides the invalidation
// entry points the services use.
type Manager struct {
	backend Cacher
	logger  *slog.Logger
}

// NewManager creates a cache manager over the given backend.
func NewManager(backend Cacher, logger *slog.Logger) *Manager {
	return &Manager{
		backend: backend,
		logger:  logger,
	}
}

// Backend returns the underlying cache for typed wrappers.
func (m *Manager) Backend() Cacher {
	return m.backend
}

// InvalidatePosts drops the named post list keys and every key under the
// posts prefix. Both passes run so hot list keys disappear even when the
// backend's prefix scan lags.
func (m *Manager) InvalidatePosts(ctx context.Context) {
	for _, key := range PostListKeys() {
		if err := m.backend.Delete(ctx, key); err != nil {
			m.logger.Warn("cache delete failed", "key", key, "error", err)
		}
	}
	if err := m.backend.DeleteByPrefix(ctx, PrefixPosts); err != nil {
		m.logger.Warn("cache prefix delete failed", "prefix", PrefixPosts, "error", err)
	}
}

// InvalidatePrefix drops every key under the given prefix.
func (m *Manager) InvalidatePrefix(ctx context.Context, prefix string) {
	if err := m.backend.DeleteByPrefix(ctx, prefix); err != nil {
		m.logger.Warn("cache prefix delete failed", "prefix", prefix, "error", err)
	}
}

// ClearAll clears the whole cache and resets statistics.
func (m *Manager) ClearAll(ctx context.Context) {
	if err := m.backend.Clear(ctx); err != nil {
		m.logger.Warn("cache clear failed", "error", err)
		return
	}
	if sp, ok := m.backend.(StatsProvider); ok {
		sp.ResetStats()
	}
	m.logger.Info("cache cleared")
}

// Stats returns backend statistics, or zero stats for backends without them.
func (m *Manager) Stats() Stats {
	if sp, ok := m.backend.(StatsProvider); ok {
		return sp.Stats()
	}
	return Stats{}
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}

// Default TTLs per content area.
const (
	TTLPostList   = 5 * time.Minute
	TTLPostDetail = 10 * time.Minute
	TTLDirectory  = 15 * time.Minute
	TTLSettings   = time.Hour
)
