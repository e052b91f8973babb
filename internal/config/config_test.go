package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutorhub/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "tutorhub", cfg.Store.DatabaseName)
	assert.Equal(t, "/ws/v1/listen", cfg.Realtime.WebSocketPath)
	assert.Equal(t, 10, cfg.Realtime.ClientSendChannelBuffer)
	assert.Equal(t, 1000, cfg.StatsSampleLimit)
}

func TestLoadRequiresMongoURIForMongoDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongodb")
	t.Setenv("MONGODB_URI", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongodb")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "tutorhub_test")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("STATS_SAMPLE_LIMIT", "250")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, "tutorhub_test", cfg.Store.DatabaseName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 250, cfg.StatsSampleLimit)
	assert.Equal(t, "localhost:6379", cfg.Realtime.RedisAddr)
}

func TestLoadNormalizesNonPositiveBounds(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STATS_SAMPLE_LIMIT", "-5")
	t.Setenv("CLIENT_SEND_CHANNEL_BUFFER", "0")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.StatsSampleLimit)
	assert.Equal(t, 10, cfg.Realtime.ClientSendChannelBuffer)
}
