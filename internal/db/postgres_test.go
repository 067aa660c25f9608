package db

import (
	"testing"
	"time"

	"github.com/frnchklz/BookLog-BPSULibrary/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.User = "booklog"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "booklog"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 12
	cfg.Database.MaxIdleConns = 3
	cfg.Database.ConnMaxLifetime = "45m"
	return cfg
}

func Test_poolConfig_AppliesDatabaseSection(t *testing.T) {
	// act
	pc, err := poolConfig(testConfig(), zerolog.Nop())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, 45*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "booklog", pc.ConnConfig.Database)
	assert.NotNil(t, pc.BeforeAcquire)
}

func Test_poolConfig_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "bad lifetime", mutate: func(c *config.Config) { c.Database.ConnMaxLifetime = "forever" }},
		{name: "bad port", mutate: func(c *config.Config) { c.Database.Port = "port" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			cfg := testConfig()
			tc.mutate(cfg)

			// act
			_, err := poolConfig(cfg, zerolog.Nop())

			// assert
			assert.Error(t, err)
		})
	}
}
