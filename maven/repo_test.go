package maven

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bentoRel = "org/kiji/kiji-bento/kiji-bento/1.0.1/kiji-bento-1.0.1-release.tar.gz"

func bentoCoordinate() Coordinate {
	return Coordinate{
		Group: "org.kiji.kiji-bento", Artifact: "kiji-bento",
		Version: "1.0.1", Type: "tar.gz", Classifier: "release",
	}
}

func TestMavenRepositoryGet(t *testing.T) {
	content := "bento release bits"
	fp := fingerprintOf(content)
	server, _ := serveRepo(t, map[string]string{
		bentoRel:           content,
		bentoRel + ".md5":  fp.MD5,
		bentoRel + ".sha1": fp.SHA1,
	})

	localDir := t.TempDir()
	mr, err := NewMavenRepository(localDir, []string{server.URL})
	require.NoError(t, err)

	path, err := mr.Get(context.Background(), bentoCoordinate())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(localDir, filepath.FromSlash(bentoRel)), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// Checksum sidecars land next to the artifact.
	md5, err := os.ReadFile(path + ".md5")
	require.NoError(t, err)
	assert.Equal(t, fp.MD5, string(md5))
	sha1, err := os.ReadFile(path + ".sha1")
	require.NoError(t, err)
	assert.Equal(t, fp.SHA1, string(sha1))
}

func TestMavenRepositoryGetCached(t *testing.T) {
	content := "cached bits"
	fp := fingerprintOf(content)

	localDir := t.TempDir()
	localPath := filepath.Join(localDir, filepath.FromSlash(bentoRel))
	require.NoError(t, os.MkdirAll(filepath.Dir(localPath), 0755))
	require.NoError(t, os.WriteFile(localPath, []byte(content), 0644))
	require.NoError(t, os.WriteFile(localPath+".md5", []byte(fp.MD5), 0644))
	require.NoError(t, os.WriteFile(localPath+".sha1", []byte(fp.SHA1), 0644))

	// No remotes: the cached copy must satisfy the request on its own.
	mr, err := NewMavenRepository(localDir, nil)
	require.NoError(t, err)

	path, err := mr.Get(context.Background(), bentoCoordinate())
	require.NoError(t, err)
	assert.Equal(t, localPath, path)
}

func TestMavenRepositoryGetStaleCache(t *testing.T) {
	content := "fresh bits"
	fp := fingerprintOf(content)
	server, _ := serveRepo(t, map[string]string{
		bentoRel:           content,
		bentoRel + ".md5":  fp.MD5,
		bentoRel + ".sha1": fp.SHA1,
	})

	// A cached file whose sidecars no longer match gets refetched.
	localDir := t.TempDir()
	localPath := filepath.Join(localDir, filepath.FromSlash(bentoRel))
	require.NoError(t, os.MkdirAll(filepath.Dir(localPath), 0755))
	require.NoError(t, os.WriteFile(localPath, []byte("corrupted bits"), 0644))
	require.NoError(t, os.WriteFile(localPath+".md5", []byte(fp.MD5), 0644))
	require.NoError(t, os.WriteFile(localPath+".sha1", []byte(fp.SHA1), 0644))

	mr, err := NewMavenRepository(localDir, []string{server.URL})
	require.NoError(t, err)

	path, err := mr.Get(context.Background(), bentoCoordinate())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestMavenRepositoryGetMissing(t *testing.T) {
	server, _ := serveRepo(t, map[string]string{})

	mr, err := NewMavenRepository(t.TempDir(), []string{server.URL})
	require.NoError(t, err)

	_, err = mr.Get(context.Background(), bentoCoordinate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "org.kiji.kiji-bento:kiji-bento:1.0.1")
}

func TestMavenRepositoryGetChecksumMismatch(t *testing.T) {
	server, _ := serveRepo(t, map[string]string{
		bentoRel:          "tampered bits",
		bentoRel + ".md5": fingerprintOf("original bits").MD5,
	})

	localDir := t.TempDir()
	mr, err := NewMavenRepository(localDir, []string{server.URL})
	require.NoError(t, err)

	_, err = mr.Get(context.Background(), bentoCoordinate())
	require.Error(t, err)

	// The rejected download must not stay behind.
	_, err = os.Stat(filepath.Join(localDir, filepath.FromSlash(bentoRel)))
	assert.True(t, os.IsNotExist(err))
}

func TestMavenRepositoryListVersions(t *testing.T) {
	a, _ := serveRepo(t, map[string]string{
		"org/kiji/kiji-bento/kiji-bento/maven-metadata.xml": artifactMetadataXML,
	})
	b, _ := serveRepo(t, map[string]string{
		"org/kiji/kiji-bento/kiji-bento/maven-metadata.xml": artifactMetadataXML,
	})

	mr, err := NewMavenRepository(t.TempDir(), []string{a.URL, b.URL})
	require.NoError(t, err)

	versions, err := mr.ListVersions(context.Background(), "org.kiji.kiji-bento", "kiji-bento")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0-rc4", "1.0.0-rc5", "1.0.1", "1.0.2-SNAPSHOT"}, versions)
}
