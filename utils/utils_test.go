package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruth(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"yes", true},
		{"true", true},
		{"TRUE", true},
		{"Yes", true},
		{"no", false},
		{"false", false},
		{"No", false},
	}
	for _, test := range tests {
		actual, err := Truth(test.text)
		require.NoError(t, err)
		assert.Equal(t, test.expected, actual, "Truth(%q)", test.text)
	}

	_, err := Truth("maybe")
	assert.Error(t, err)
	_, err = Truth("")
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	for _, name := range []string{
		"bento-hbase-site.xml",
		filepath.Join("a", "bento-core-site.xml"),
		filepath.Join("a", "b", "other.txt"),
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0644))
	}

	matches, err := Find(root, `^bento-hbase-site\.xml$`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(root, "bento-hbase-site.xml"), matches[0])

	matches, err = Find(root, `-site\.xml$`)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = Find(root, `^nothing$`)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNowMS(t *testing.T) {
	before := NowMS()
	after := NowMS()
	assert.GreaterOrEqual(t, after, before)
	// Sanity: a plausible ms timestamp, not seconds or nanoseconds.
	assert.Greater(t, before, int64(1e12))
	assert.Less(t, before, int64(1e14))
}

func TestProcessExists(t *testing.T) {
	assert.True(t, ProcessExists(os.Getpid()))
	assert.False(t, ProcessExists(123456789))
}
