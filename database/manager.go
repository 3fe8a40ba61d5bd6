package database

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/logger"
)

// ConfigSource provides per-key database configurations. This interface
// abstracts where the configs come from: a static map for single-database
// applications, a directory service for multi-tenant ones.
type ConfigSource interface {
	// DBConfig returns the database configuration for the given key.
	// Single-database applications use key "".
	DBConfig(ctx context.Context, key string) (*config.DatabaseConfig, error)
}

// Connector creates data-access clients from configuration
type Connector func(*config.DatabaseConfig, logger.Logger) (Client, error)

// ClientManager manages connected clients by string keys. It provides lazy
// construction, LRU eviction, and idle cleanup. The manager is key-agnostic:
// it doesn't know about tenants, just manages named clients.
type ClientManager struct {
	logger    logger.Logger
	source    ConfigSource
	connector Connector // Injected for testability

	// Client management
	mu      sync.RWMutex
	clients map[string]*clientEntry

	// LRU management
	lru     *list.List
	maxSize int

	// Cleanup management
	idleTTL   time.Duration
	cleanupMu sync.Mutex
	cleanupCh chan struct{}

	// Singleflight for concurrent initialization
	sfg singleflight.Group
}

// clientEntry represents a managed client with metadata
type clientEntry struct {
	client   Client
	element  *list.Element // for LRU
	lastUsed time.Time
	key      string
}

// ClientManagerOptions configures the ClientManager
type ClientManagerOptions struct {
	MaxSize int           // Maximum number of clients to keep (0 = default)
	IdleTTL time.Duration // Time after which idle clients are disconnected (0 = default)
}

// NewClientManager creates a new client manager
func NewClientManager(source ConfigSource, log logger.Logger, opts ClientManagerOptions, connector Connector) *ClientManager {
	if opts.MaxSize <= 0 {
		opts.MaxSize = 100 // sensible default
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute // sensible default
	}

	// Default to the real factory if none provided
	if connector == nil {
		connector = New
	}

	return &ClientManager{
		logger:    log,
		source:    source,
		connector: connector,
		clients:   make(map[string]*clientEntry),
		lru:       list.New(),
		maxSize:   opts.MaxSize,
		idleTTL:   opts.IdleTTL,
	}
}

// Get returns a connected client for the given key. Clients are created and
// connected lazily and cached with LRU eviction.
func (m *ClientManager) Get(ctx context.Context, key string) (Client, error) {
	// Try to get an existing client first (fast path)
	if client := m.getExisting(key); client != nil {
		return client, nil
	}

	// Use singleflight to prevent thundering herd on client creation
	result, err, _ := m.sfg.Do(key, func() (any, error) {
		// Double-check after acquiring singleflight lock
		if client := m.getExisting(key); client != nil {
			return client, nil
		}

		return m.createClient(ctx, key)
	})

	if err != nil {
		return nil, err
	}

	return result.(Client), nil
}

// getExisting returns an existing client and updates LRU, or nil if not found
func (m *ClientManager) getExisting(key string) Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.clients[key]
	if !exists {
		return nil
	}

	// Update LRU and last used time
	entry.lastUsed = time.Now()
	m.lru.MoveToFront(entry.element)

	return entry.client
}

// createClient constructs and connects a client for the given key
func (m *ClientManager) createClient(ctx context.Context, key string) (Client, error) {
	dbConfig, err := m.source.DBConfig(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get database config for key %s: %w", key, err)
	}

	client, err := m.connector(dbConfig, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for key %s: %w", key, err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect client for key %s: %w", key, err)
	}

	// Store in cache with LRU tracking
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check if a client was created by another goroutine while we were waiting
	if existing, exists := m.clients[key]; exists {
		m.disconnect(ctx, key, client)
		existing.lastUsed = time.Now()
		m.lru.MoveToFront(existing.element)
		return existing.client, nil
	}

	// Ensure we don't exceed max size
	m.evictIfNeeded(ctx)

	// Add to cache
	element := m.lru.PushFront(key)
	entry := &clientEntry{
		client:   client,
		element:  element,
		lastUsed: time.Now(),
		key:      key,
	}
	m.clients[key] = entry

	m.logger.Info().
		Str("key", key).
		Str("vendor", dbConfig.Vendor).
		Msg("Created new data-access client")

	return client, nil
}

func (m *ClientManager) disconnect(ctx context.Context, key string, client Client) {
	if err := client.Disconnect(ctx); err != nil {
		m.logger.Error().
			Err(err).
			Str("key", key).
			Msg("Error disconnecting data-access client")
	}
}

// evictIfNeeded removes the least recently used client if at capacity
func (m *ClientManager) evictIfNeeded(ctx context.Context) {
	if len(m.clients) < m.maxSize {
		return
	}

	oldest := m.lru.Back()
	if oldest == nil {
		return
	}

	key := oldest.Value.(string)
	entry := m.clients[key]

	m.disconnect(ctx, key, entry.client)
	delete(m.clients, key)
	m.lru.Remove(oldest)

	m.logger.Debug().
		Str("key", key).
		Msg("Evicted data-access client due to LRU limit")
}

// StartCleanup starts the background cleanup routine for idle clients
func (m *ClientManager) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute // default cleanup interval
	}

	m.cleanupMu.Lock()
	if m.cleanupCh != nil {
		m.cleanupMu.Unlock()
		return
	}
	done := make(chan struct{})
	m.cleanupCh = done
	m.cleanupMu.Unlock()

	go m.cleanupLoop(interval, done)
}

// StopCleanup stops the background cleanup routine
func (m *ClientManager) StopCleanup() {
	m.cleanupMu.Lock()
	if m.cleanupCh == nil {
		m.cleanupMu.Unlock()
		return
	}
	close(m.cleanupCh)
	m.cleanupCh = nil
	m.cleanupMu.Unlock()
}

// cleanupLoop runs the periodic cleanup of idle clients
func (m *ClientManager) cleanupLoop(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupIdleClients()
		case <-done:
			return
		}
	}
}

// cleanupIdleClients disconnects clients that have been idle longer than idleTTL
func (m *ClientManager) cleanupIdleClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var toRemove []string

	for key, entry := range m.clients {
		if now.Sub(entry.lastUsed) > m.idleTTL {
			toRemove = append(toRemove, key)
		}
	}

	for _, key := range toRemove {
		entry := m.clients[key]

		m.disconnect(context.Background(), key, entry.client)
		delete(m.clients, key)
		m.lru.Remove(entry.element)

		m.logger.Debug().
			Str("key", key).
			Dur("idle_time", now.Sub(entry.lastUsed)).
			Msg("Cleaned up idle data-access client")
	}
}

// Close disconnects all clients and stops cleanup
func (m *ClientManager) Close(ctx context.Context) error {
	m.StopCleanup()

	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error

	for key, entry := range m.clients {
		if err := entry.client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error disconnecting client for key %s: %w", key, err))
		}
	}

	// Clear the cache
	m.clients = make(map[string]*clientEntry)
	m.lru.Init()

	if len(errs) > 0 {
		return fmt.Errorf("errors disconnecting clients: %v", errs)
	}

	return nil
}

// Size returns the number of managed clients
func (m *ClientManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Stats returns statistics about the managed clients
func (m *ClientManager) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]any)
	stats["active_clients"] = len(m.clients)
	stats["max_clients"] = m.maxSize
	stats["idle_ttl_seconds"] = int(m.idleTTL.Seconds())

	clients := make([]map[string]any, 0, len(m.clients))
	now := time.Now()

	for key, entry := range m.clients {
		clients = append(clients, map[string]any{
			"key":           key,
			"vendor":        entry.client.Vendor(),
			"last_used":     entry.lastUsed.Format(time.RFC3339),
			"idle_duration": int(now.Sub(entry.lastUsed).Seconds()),
		})
	}

	stats["clients"] = clients
	return stats
}
