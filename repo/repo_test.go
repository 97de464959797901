package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiji-test")
	r, err := NewRepo(path)
	require.NoError(t, err)

	exists, err := r.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, r.Init("1.0.1"))

	exists, err = r.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	for _, dir := range []string{r.LogDir(), r.DownloadDir(), r.WorkDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	cfg, err := r.Config()
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", cfg.Bento.Version)
}

func TestRepoInitIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiji-test")
	r, err := NewRepo(path)
	require.NoError(t, err)

	require.NoError(t, r.Init("1.0.1"))
	// A second init must not overwrite the config.
	require.NoError(t, r.Init("9.9.9"))

	cfg, err := r.Config()
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", cfg.Bento.Version)
}

func TestBentoDir(t *testing.T) {
	r, err := NewRepo(filepath.Join(t.TempDir(), "kiji-test"))
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(r.WorkDir(), "kiji-bento-1.0.2-SNAPSHOT"),
		r.BentoDir("1.0.2-SNAPSHOT"))
}
