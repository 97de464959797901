package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSnapshot(t *testing.T) {
	assert.True(t, IsSnapshot("1.0.2-SNAPSHOT"))
	assert.True(t, IsSnapshot("1.0.0-rc5-SNAPSHOT"))
	assert.False(t, IsSnapshot("1.0.1"))
	assert.False(t, IsSnapshot("1.0.0-rc4"))
	assert.False(t, IsSnapshot("SNAPSHOT-1.0.1"))
}

func TestBaseVersion(t *testing.T) {
	assert.Equal(t, "1.0.2", BaseVersion("1.0.2-SNAPSHOT"))
	assert.Equal(t, "1.0.1", BaseVersion("1.0.1"))
}
