package bento

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"kiji-testing/command"
	"kiji-testing/types"
	"kiji-testing/utils"
)

var log = logging.Logger("bento")

const (
	fsPidFile        = "bento-cluster.pid"
	fsCheckinPidFile = "checkin-daemon.pid"
	fsStateDir       = "state"

	hbaseSitePattern  = `^bento-hbase-site\.xml$`
	hdfsSitePattern   = `^bento-hdfs-site\.xml$`
	mapredSitePattern = `^bento-mapred-site\.xml$`
	coreSitePattern   = `^bento-core-site\.xml$`
)

// ClusterOptions configure a cluster wrapper.
type ClusterOptions struct {
	// EnableLog captures the bento logs to file (BENTO_LOG_ENABLE).
	EnableLog bool

	// StartTimeout bounds 'bin/bento start'. Zero means 5 minutes.
	StartTimeout time.Duration

	// SkipPortCheck disables the preflight probe of the default ports.
	SkipPortCheck bool

	// LogDir receives the captured start command streams.
	LogDir string
}

// Cluster wraps a BentoCluster installation.
type Cluster struct {
	home string
	opts ClusterOptions

	pid            int
	pidFile        string
	checkinPidFile string

	zkAddress     string
	hdfsAddress   string
	mapredAddress string
}

// NewCluster initializes a cluster wrapper for a bento install
// directory (the cluster/ subdirectory of a kiji-bento install).
func NewCluster(home string, opts ClusterOptions) (*Cluster, error) {
	if _, err := os.Stat(home); err != nil {
		return nil, types.Wrapf(types.ErrInvalidBentoHome, "%q: %v", home, err)
	}
	if _, err := os.Stat(filepath.Join(home, "bin", "bento")); err != nil {
		return nil, types.Wrapf(types.ErrInvalidBentoHome, "%q has no bin/bento", home)
	}
	if opts.StartTimeout == 0 {
		opts.StartTimeout = 5 * time.Minute
	}
	return &Cluster{
		home:           home,
		opts:           opts,
		pidFile:        filepath.Join(home, fsStateDir, fsPidFile),
		checkinPidFile: filepath.Join(home, fsStateDir, fsCheckinPidFile),
	}, nil
}

// Home returns the bento install directory.
func (c *Cluster) Home() string {
	return c.home
}

// Running reports whether a cluster process from a previous run is
// still alive, recovering its pid. A stale pid file is removed.
func (c *Cluster) Running() (bool, error) {
	data, err := os.ReadFile(c.pidFile)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, types.Wrap(types.ErrStartClusterFailed, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, types.Wrapf(types.ErrStartClusterFailed, "bad pid file %q: %v", c.pidFile, err)
	}
	if utils.ProcessExists(pid) {
		c.pid = pid
		return true, nil
	}
	// Stale pid file, remove and let a fresh cluster start.
	if err := os.Remove(c.pidFile); err != nil {
		return false, types.Wrap(types.ErrStartClusterFailed, err)
	}
	return false, nil
}

// Start brings the cluster up, if necessary, and discovers its
// addresses.
func (c *Cluster) Start(ctx context.Context) error {
	running, err := c.Running()
	if err != nil {
		return err
	}
	if running {
		log.Infof("Bento cluster already started as PID=%d", c.pid)
		return c.discoverAddresses()
	}

	if !c.opts.SkipPortCheck {
		if err := CheckPorts(DefaultPorts); err != nil {
			return err
		}
	}

	env := os.Environ()
	env = withoutVar(env, "BENTO_LOG_ENABLE")
	if c.opts.EnableLog {
		env = append(env, "BENTO_LOG_ENABLE=1")
	}

	_, err = command.Run(ctx, command.Options{
		WorkDir:  c.home,
		Env:      env,
		LogDir:   c.opts.LogDir,
		ExitCode: command.RequireExitCode(0),
		Timeout:  c.opts.StartTimeout,
	}, "bin/bento", "start")
	if err != nil {
		return types.Wrap(types.ErrStartClusterFailed, err)
	}

	data, err := os.ReadFile(c.pidFile)
	if err != nil {
		return types.Wrapf(types.ErrStartClusterFailed, "bento start left no pid file: %v", err)
	}
	c.pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return types.Wrapf(types.ErrStartClusterFailed, "bad pid file %q: %v", c.pidFile, err)
	}
	log.Infof("Bento cluster created and started as PID=%d", c.pid)

	return c.discoverAddresses()
}

func (c *Cluster) discoverAddresses() error {
	hbase, err := c.HBaseConfig()
	if err != nil {
		return err
	}
	if c.zkAddress, err = hbase.ZooKeeperAddress(); err != nil {
		return err
	}

	core, err := c.CoreConfig()
	if err != nil {
		return err
	}
	if c.hdfsAddress, err = core.HDFSAddress(); err != nil {
		return err
	}

	mapred, err := c.MapRedConfig()
	if err != nil {
		return err
	}
	if c.mapredAddress, err = mapred.MapReduceAddress(); err != nil {
		return err
	}

	log.Infof("HBase URI: %s", c.HBaseURI())
	log.Infof("MapReduce address: %s", c.mapredAddress)
	log.Infof("HDFS URI: %s", c.hdfsAddress)
	return nil
}

// Stop kills the running cluster and its check-in daemon, if any.
func (c *Cluster) Stop() error {
	if c.pid == 0 {
		log.Info("Bento cluster not started, nothing to stop.")
		return nil
	}
	log.Infof("Killing Bento cluster running as PID=%d", c.pid)
	if err := syscall.Kill(c.pid, syscall.SIGKILL); err != nil {
		log.Debugf("Could not kill process with PID=%d: %v", c.pid, err)
	}
	if err := os.Remove(c.pidFile); err != nil && !os.IsNotExist(err) {
		return types.Wrap(types.ErrStopClusterFailed, err)
	}
	c.pid = 0

	// Cleanup the check-in daemon too.
	data, err := os.ReadFile(c.checkinPidFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return types.Wrap(types.ErrStopClusterFailed, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err == nil {
		log.Debugf("Killing Bento check-in daemon running as PID=%d", pid)
		if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
			log.Debugf("Could not kill process with PID=%d: %v", pid, err)
		}
	}
	if err := os.Remove(c.checkinPidFile); err != nil && !os.IsNotExist(err) {
		return types.Wrap(types.ErrStopClusterFailed, err)
	}
	return nil
}

// configFile locates exactly one file under the bento home matching the
// pattern and parses it.
func (c *Cluster) configFile(pattern string) (*SiteFile, error) {
	files, err := utils.Find(c.home, pattern)
	if err != nil {
		return nil, types.Wrap(types.ErrSiteFileNotFound, err)
	}
	if len(files) != 1 {
		return nil, types.Wrapf(types.ErrSiteFileNotFound,
			"expected exactly one %s under %q, found %d", pattern, c.home, len(files))
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		return nil, types.Wrap(types.ErrSiteFileNotFound, err)
	}
	return ParseSiteFile(data)
}

func (c *Cluster) HBaseConfig() (*SiteFile, error)  { return c.configFile(hbaseSitePattern) }
func (c *Cluster) HDFSConfig() (*SiteFile, error)   { return c.configFile(hdfsSitePattern) }
func (c *Cluster) MapRedConfig() (*SiteFile, error) { return c.configFile(mapredSitePattern) }
func (c *Cluster) CoreConfig() (*SiteFile, error)   { return c.configFile(coreSitePattern) }

// WriteConf exports the cluster client configuration files into dir,
// under the names Hadoop clients expect.
func (c *Cluster) WriteConf(dir string) error {
	for name, pattern := range map[string]string{
		"hbase-site.xml":  hbaseSitePattern,
		"hdfs-site.xml":   hdfsSitePattern,
		"mapred-site.xml": mapredSitePattern,
		"core-site.xml":   coreSitePattern,
	} {
		files, err := utils.Find(c.home, pattern)
		if err != nil {
			return types.Wrap(types.ErrSiteFileNotFound, err)
		}
		if len(files) != 1 {
			return types.Wrapf(types.ErrSiteFileNotFound,
				"expected exactly one %s under %q, found %d", pattern, c.home, len(files))
		}
		data, err := os.ReadFile(files[0])
		if err != nil {
			return types.Wrap(types.ErrSiteFileNotFound, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return types.Wrap(types.ErrSiteFileNotFound, err)
		}
	}
	return nil
}

// ZooKeeperAddress returns the ZooKeeper address, eg. "localhost:2181".
func (c *Cluster) ZooKeeperAddress() string {
	return c.zkAddress
}

// HDFSAddress returns the HDFS address, eg. "hdfs://localhost:8020/".
func (c *Cluster) HDFSAddress() string {
	return c.hdfsAddress
}

// MapReduceAddress returns the job tracker address, eg. "localhost:8021".
func (c *Cluster) MapReduceAddress() string {
	return c.mapredAddress
}

// HBaseURI returns the kiji URI of the cluster.
func (c *Cluster) HBaseURI() string {
	return "kiji://" + c.zkAddress
}

func withoutVar(env []string, name string) []string {
	out := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, name+"=") {
			out = append(out, kv)
		}
	}
	return out
}
