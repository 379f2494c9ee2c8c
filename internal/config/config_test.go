package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("env: dev\nlisten:\n  port: \"8080\"\n"), 0o600))

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", conf.Env)
	assert.Equal(t, "8080", conf.Listen.Port)
	assert.Equal(t, "coverbot", conf.Mongo.Database)
	assert.Equal(t, 50, conf.Journey.MaxTransitions)
	assert.Equal(t, 15*time.Minute, conf.Journey.FileTTL)
	assert.InDelta(t, 0.2, conf.Journey.LookupFailRate, 1e-9)
}
