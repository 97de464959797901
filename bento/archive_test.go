package bento

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name     string
	typeflag byte
	body     string
	linkname string
}

func buildArchive(t *testing.T, entries []tarEntry) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Typeflag: e.typeflag,
			Mode:     0755,
			Size:     int64(len(e.body)),
			Linkname: e.linkname,
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "bento.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestExtractArchiveStripComponents(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "kiji-bento-albacore/", typeflag: tar.TypeDir},
		{name: "kiji-bento-albacore/bin/", typeflag: tar.TypeDir},
		{name: "kiji-bento-albacore/bin/kiji-env.sh", typeflag: tar.TypeReg, body: "#!/bin/bash\n"},
		{name: "kiji-bento-albacore/cluster/bin/bento", typeflag: tar.TypeReg, body: "#!/bin/bash\n"},
		{name: "kiji-bento-albacore/RELEASE", typeflag: tar.TypeReg, body: "albacore\n"},
	})

	workDir := filepath.Join(t.TempDir(), "kiji-bento-1.0.1")
	require.NoError(t, ExtractArchive(archive, workDir, 1))

	// The top-level code-name directory is gone.
	data, err := os.ReadFile(filepath.Join(workDir, "bin", "kiji-env.sh"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\n", string(data))

	_, err = os.Stat(filepath.Join(workDir, "cluster", "bin", "bento"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(workDir, "RELEASE"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(workDir, "kiji-bento-albacore"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractArchiveSymlink(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "top/lib/kiji-schema-1.0.jar", typeflag: tar.TypeReg, body: "jar"},
		{name: "top/lib/kiji-schema.jar", typeflag: tar.TypeSymlink, linkname: "kiji-schema-1.0.jar"},
	})

	workDir := t.TempDir()
	require.NoError(t, ExtractArchive(archive, workDir, 1))

	link, err := os.Readlink(filepath.Join(workDir, "lib", "kiji-schema.jar"))
	require.NoError(t, err)
	assert.Equal(t, "kiji-schema-1.0.jar", link)
}

func TestExtractArchiveRejectsEscape(t *testing.T) {
	archive := buildArchive(t, []tarEntry{
		{name: "top/../../evil.txt", typeflag: tar.TypeReg, body: "evil"},
	})

	workDir := t.TempDir()
	err := ExtractArchive(archive, workDir, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
}

func TestExtractArchiveMissingFile(t *testing.T) {
	err := ExtractArchive(filepath.Join(t.TempDir(), "nope.tar.gz"), t.TempDir(), 1)
	assert.Error(t, err)
}

func TestStripPath(t *testing.T) {
	cases := []struct {
		name string
		n    int
		out  string
		ok   bool
	}{
		{"kiji-bento-albacore/bin/kiji-env.sh", 1, "bin/kiji-env.sh", true},
		{"./kiji-bento-albacore/RELEASE", 1, "RELEASE", true},
		{"kiji-bento-albacore", 1, "", false},
		{"a/b/c", 0, "a/b/c", true},
		{"a/b/c", 2, "c", true},
	}
	for _, c := range cases {
		out, ok := stripPath(c.name, c.n)
		assert.Equal(t, c.ok, ok, c.name)
		assert.Equal(t, c.out, out, c.name)
	}
}
