package bento

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBentoHome lays out a minimal bento install directory.
func newBentoHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, fsStateDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "bin", "bento"), []byte("#!/bin/bash\n"), 0755))

	confDir := filepath.Join(home, "cluster-conf")
	require.NoError(t, os.MkdirAll(confDir, 0755))
	for name, content := range map[string]string{
		"bento-hbase-site.xml":  hbaseSiteXML,
		"bento-core-site.xml":   coreSiteXML,
		"bento-mapred-site.xml": mapredSiteXML,
		"bento-hdfs-site.xml":   `<configuration/>`,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(confDir, name), []byte(content), 0644))
	}
	return home
}

func TestNewCluster(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)
	assert.Equal(t, home, c.Home())
}

func TestNewClusterInvalidHome(t *testing.T) {
	_, err := NewCluster(filepath.Join(t.TempDir(), "nope"), ClusterOptions{})
	assert.Error(t, err)

	// A directory without bin/bento is not a bento install.
	_, err = NewCluster(t.TempDir(), ClusterOptions{})
	assert.Error(t, err)
}

func TestClusterRunning(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)

	// No pid file.
	running, err := c.Running()
	require.NoError(t, err)
	assert.False(t, running)

	// Live pid: use our own.
	pidFile := filepath.Join(home, fsStateDir, fsPidFile)
	require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644))
	running, err = c.Running()
	require.NoError(t, err)
	assert.True(t, running)
}

func TestClusterRunningStalePid(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)

	pidFile := filepath.Join(home, fsStateDir, fsPidFile)
	require.NoError(t, os.WriteFile(pidFile, []byte("123456789\n"), 0644))

	running, err := c.Running()
	require.NoError(t, err)
	assert.False(t, running)

	// The stale pid file is gone.
	_, err = os.Stat(pidFile)
	assert.True(t, os.IsNotExist(err))
}

func TestClusterRunningBadPidFile(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)

	pidFile := filepath.Join(home, fsStateDir, fsPidFile)
	require.NoError(t, os.WriteFile(pidFile, []byte("not-a-pid\n"), 0644))

	_, err = c.Running()
	assert.Error(t, err)
}

func TestClusterConfigDiscovery(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)

	hbase, err := c.HBaseConfig()
	require.NoError(t, err)
	zk, err := hbase.ZooKeeperAddress()
	require.NoError(t, err)
	assert.Equal(t, "localhost:2181", zk)

	core, err := c.CoreConfig()
	require.NoError(t, err)
	hdfs, err := core.HDFSAddress()
	require.NoError(t, err)
	assert.Equal(t, "hdfs://localhost:8020/", hdfs)
}

func TestClusterConfigAmbiguous(t *testing.T) {
	home := newBentoHome(t)
	// A second copy of the hbase site file makes discovery ambiguous.
	dupe := filepath.Join(home, "other-conf")
	require.NoError(t, os.MkdirAll(dupe, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dupe, "bento-hbase-site.xml"), []byte(hbaseSiteXML), 0644))

	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)

	_, err = c.HBaseConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")
}

func TestClusterWriteConf(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)

	out := t.TempDir()
	require.NoError(t, c.WriteConf(out))

	for _, name := range []string{"hbase-site.xml", "core-site.xml", "mapred-site.xml", "hdfs-site.xml"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestClusterStopNotStarted(t *testing.T) {
	home := newBentoHome(t)
	c, err := NewCluster(home, ClusterOptions{})
	require.NoError(t, err)
	assert.NoError(t, c.Stop())
}

func TestWithoutVar(t *testing.T) {
	env := []string{"PATH=/bin", "BENTO_LOG_ENABLE=1", "HOME=/root"}
	assert.Equal(t, []string{"PATH=/bin", "HOME=/root"}, withoutVar(env, "BENTO_LOG_ENABLE"))
}
