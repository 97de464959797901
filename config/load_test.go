package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiji-testing/maven"
)

func TestDefaultHarness(t *testing.T) {
	cfg := DefaultHarness()
	assert.True(t, cfg.Bento.EnableLog)
	assert.True(t, cfg.Test.CleanupAfterTest)
	assert.Equal(t,
		[]string{maven.KijiPublicRepo, maven.KijiSnapshotRepo},
		cfg.Maven.RemoteRepositories)
}

func TestFromReader(t *testing.T) {
	doc := `
[Bento]
Version = "1.0.0-rc5-SNAPSHOT"
StartTimeoutSeconds = 60

[Test]
CleanupAfterTest = false
`
	cfg, err := FromReader(strings.NewReader(doc), DefaultHarness())
	require.NoError(t, err)

	assert.Equal(t, "1.0.0-rc5-SNAPSHOT", cfg.Bento.Version)
	assert.Equal(t, 60, cfg.Bento.StartTimeoutSeconds)
	assert.False(t, cfg.Test.CleanupAfterTest)
	// Untouched sections keep their defaults.
	assert.True(t, cfg.Bento.EnableLog)
	assert.NotEmpty(t, cfg.Maven.RemoteRepositories)
}

func TestFromReaderEnvOverride(t *testing.T) {
	t.Setenv("KIJI_BENTO_VERSION", "2.0.0")

	cfg, err := FromReader(strings.NewReader(`[Bento]
Version = "1.0.1"
`), DefaultHarness())
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", cfg.Bento.Version)
}

func TestFromFileMissing(t *testing.T) {
	cfg, err := FromFile("/nonexistent/config.toml", DefaultHarness())
	require.NoError(t, err)
	assert.Equal(t, DefaultHarness().Maven.RemoteRepositories, cfg.Maven.RemoteRepositories)
}

func TestHarnessBytesRoundTrip(t *testing.T) {
	def := DefaultHarness()
	def.Bento.Version = "1.0.1"

	data, err := HarnessBytes(def)
	require.NoError(t, err)

	cfg, err := FromReader(strings.NewReader(string(data)), DefaultHarness())
	require.NoError(t, err)
	assert.Equal(t, def, cfg)
}
