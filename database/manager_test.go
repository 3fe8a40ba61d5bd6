package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

// stubClient is a minimal Client for manager tests.
type stubClient struct {
	vendor      string
	connects    int
	disconnects int
	connectErr  error
}

func (c *stubClient) Connect(context.Context) error {
	c.connects++
	return c.connectErr
}

func (c *stubClient) Disconnect(context.Context) error {
	c.disconnects++
	return nil
}

func (c *stubClient) Execute(context.Context, string, ...any) (*types.Result, error) {
	return &types.Result{}, nil
}

func (c *stubClient) ExecuteOperation(context.Context, types.Operation, []any) (any, error) {
	return &types.Result{}, nil
}

func (c *stubClient) Transact(context.Context, []types.Invocation) ([]any, error) {
	return nil, nil
}

func (c *stubClient) Vendor() types.Vendor { return c.vendor }

// mapSource serves database configs from a map.
type mapSource struct {
	configs map[string]*config.DatabaseConfig
}

func (s *mapSource) DBConfig(_ context.Context, key string) (*config.DatabaseConfig, error) {
	cfg, ok := s.configs[key]
	if !ok {
		return nil, fmt.Errorf("no config for key %s", key)
	}
	return cfg, nil
}

func newTestManager(opts ClientManagerOptions, connector Connector) *ClientManager {
	source := &mapSource{configs: map[string]*config.DatabaseConfig{
		"":  {Vendor: "postgresql"},
		"a": {Vendor: "postgresql"},
		"b": {Vendor: "oracle"},
		"c": {Vendor: "postgresql"},
	}}
	return NewClientManager(source, logger.New("disabled", false), opts, connector)
}

func TestManagerCreatesAndCachesClients(t *testing.T) {
	created := 0
	connector := func(cfg *config.DatabaseConfig, _ logger.Logger) (Client, error) {
		created++
		return &stubClient{vendor: cfg.Vendor}, nil
	}
	m := newTestManager(ClientManagerOptions{}, connector)
	ctx := context.Background()

	first, err := m.Get(ctx, "a")
	require.NoError(t, err)

	second, err := m.Get(ctx, "a")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, first.(*stubClient).connects, "client is connected on creation")
	assert.Equal(t, 1, m.Size())
}

func TestManagerUnknownKey(t *testing.T) {
	m := newTestManager(ClientManagerOptions{}, func(cfg *config.DatabaseConfig, _ logger.Logger) (Client, error) {
		return &stubClient{vendor: cfg.Vendor}, nil
	})

	_, err := m.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestManagerConnectFailure(t *testing.T) {
	cause := errors.New("refused")
	m := newTestManager(ClientManagerOptions{}, func(*config.DatabaseConfig, logger.Logger) (Client, error) {
		return &stubClient{connectErr: cause}, nil
	})

	_, err := m.Get(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, m.Size())
}

func TestManagerEvictsLeastRecentlyUsed(t *testing.T) {
	clients := map[string]*stubClient{}
	connector := func(cfg *config.DatabaseConfig, _ logger.Logger) (Client, error) {
		c := &stubClient{vendor: cfg.Vendor}
		return c, nil
	}
	m := newTestManager(ClientManagerOptions{MaxSize: 2}, connector)
	ctx := context.Background()

	a, err := m.Get(ctx, "a")
	require.NoError(t, err)
	clients["a"] = a.(*stubClient)

	_, err = m.Get(ctx, "b")
	require.NoError(t, err)

	// Capacity reached; creating "c" evicts "a", the least recently used.
	_, err = m.Get(ctx, "c")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Size())
	assert.Equal(t, 1, clients["a"].disconnects)
}

func TestManagerClose(t *testing.T) {
	var all []*stubClient
	connector := func(cfg *config.DatabaseConfig, _ logger.Logger) (Client, error) {
		c := &stubClient{vendor: cfg.Vendor}
		all = append(all, c)
		return c, nil
	}
	m := newTestManager(ClientManagerOptions{}, connector)
	ctx := context.Background()

	_, err := m.Get(ctx, "a")
	require.NoError(t, err)
	_, err = m.Get(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 0, m.Size())
	for _, c := range all {
		assert.Equal(t, 1, c.disconnects)
	}
}

func TestManagerCleanupDisconnectsIdleClients(t *testing.T) {
	connector := func(cfg *config.DatabaseConfig, _ logger.Logger) (Client, error) {
		return &stubClient{vendor: cfg.Vendor}, nil
	}
	m := newTestManager(ClientManagerOptions{IdleTTL: time.Nanosecond}, connector)
	ctx := context.Background()

	client, err := m.Get(ctx, "a")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	m.cleanupIdleClients()

	assert.Equal(t, 0, m.Size())
	assert.Equal(t, 1, client.(*stubClient).disconnects)
}

func TestManagerStats(t *testing.T) {
	m := newTestManager(ClientManagerOptions{MaxSize: 5}, func(cfg *config.DatabaseConfig, _ logger.Logger) (Client, error) {
		return &stubClient{vendor: cfg.Vendor}, nil
	})

	_, err := m.Get(context.Background(), "a")
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 1, stats["active_clients"])
	assert.Equal(t, 5, stats["max_clients"])
	assert.Len(t, stats["clients"], 1)
}
