package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorand/go-dal/config"
	"github.com/tmorand/go-dal/database/types"
	"github.com/tmorand/go-dal/logger"
)

func testConfig(vendor string) *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Vendor:   vendor,
		Host:     "localhost",
		Port:     5432,
		Database: "app",
		Username: "app",
		Password: "secret",
	}
}

func TestNewSelectsVendor(t *testing.T) {
	log := logger.New("disabled", false)

	pg, err := New(testConfig("postgresql"), log)
	require.NoError(t, err)
	assert.Equal(t, PostgreSQL, pg.Vendor())

	ora, err := New(testConfig("oracle"), log)
	require.NoError(t, err)
	assert.Equal(t, Oracle, ora.Vendor())
}

func TestNewMatchesVendorCaseInsensitively(t *testing.T) {
	log := logger.New("disabled", false)

	for _, vendor := range []string{"PostgreSQL", "POSTGRESQL", "Oracle", "ORACLE"} {
		client, err := New(testConfig(vendor), log)
		require.NoError(t, err, "vendor: %s", vendor)
		assert.NotNil(t, client)
	}
}

func TestNewUnsupportedVendor(t *testing.T) {
	log := logger.New("disabled", false)

	_, err := New(testConfig("sybase"), log)
	require.Error(t, err)

	var factoryErr *types.FactoryError
	require.ErrorAs(t, err, &factoryErr)
	assert.Equal(t, "sybase", factoryErr.Vendor)
	assert.ErrorIs(t, err, types.ErrUnsupportedVendor)
}

func TestNewMissingVendor(t *testing.T) {
	_, err := New(testConfig(""), logger.New("disabled", false))

	var factoryErr *types.FactoryError
	require.ErrorAs(t, err, &factoryErr)
	assert.ErrorIs(t, err, types.ErrUnsupportedVendor)
}

func TestValidateVendor(t *testing.T) {
	assert.NoError(t, ValidateVendor("postgresql"))
	assert.NoError(t, ValidateVendor("Oracle"))
	assert.ErrorIs(t, ValidateVendor("mysql"), types.ErrUnsupportedVendor)
}

func TestSupportedVendors(t *testing.T) {
	assert.Equal(t, []string{"postgresql", "oracle"}, SupportedVendors())
}
