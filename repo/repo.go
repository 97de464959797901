package repo

import (
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"

	"kiji-testing/config"
	"kiji-testing/types"
)

var log = logging.Logger("repo")

const (
	fsConfig    = "config.toml"
	fsLogs      = "logs"
	fsDownloads = "downloads"
	fsWork      = "work"
)

// Repo is the harness working directory: config, downloaded release
// archives, extracted bento installs and captured command logs.
type Repo struct {
	path       string
	configPath string
}

func NewRepo(path string) (*Repo, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, types.Wrapf(types.ErrInvalidRepoPath, "%v", err)
	}

	return &Repo{
		path:       path,
		configPath: filepath.Join(path, fsConfig),
	}, nil
}

func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Exists() (bool, error) {
	_, err := os.Stat(r.configPath)
	notexist := os.IsNotExist(err)
	if notexist {
		err = nil
	}
	return !notexist, err
}

// Init creates the repo layout and writes the default config file.
// Initializing an existing repo is a no-op.
func (r *Repo) Init(version string) error {
	exist, err := r.Exists()
	if err != nil {
		return err
	}
	if exist {
		return nil
	}

	log.Infof("Initializing repo at '%s'", r.path)
	for _, dir := range []string{r.path, r.LogDir(), r.DownloadDir(), r.WorkDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil && !os.IsExist(err) {
			return types.Wrap(types.ErrCreateDirFailed, err)
		}
	}

	if err := r.initConfig(version); err != nil {
		return xerrors.Errorf("init config: %w", err)
	}
	return nil
}

// Config loads the repo config file over the defaults.
func (r *Repo) Config() (*config.Harness, error) {
	return config.FromFile(r.configPath, r.defaultConfig(""))
}

// LogDir is where command output/error streams are captured.
func (r *Repo) LogDir() string {
	return r.join(fsLogs)
}

// DownloadDir caches the fetched release archives.
func (r *Repo) DownloadDir() string {
	return r.join(fsDownloads)
}

// WorkDir holds the extracted bento installs and per-run scratch space.
func (r *Repo) WorkDir() string {
	return r.join(fsWork)
}

// BentoDir is the install directory for one kiji-bento version.
func (r *Repo) BentoDir(version string) string {
	return filepath.Join(r.WorkDir(), "kiji-bento-"+version)
}

func (r *Repo) initConfig(version string) error {
	_, err := os.Stat(r.configPath)
	if err == nil {
		// exists
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	c, err := os.Create(r.configPath)
	if err != nil {
		return err
	}

	comm, err := config.HarnessBytes(r.defaultConfig(version))
	if err != nil {
		return xerrors.Errorf("load default: %w", err)
	}
	_, err = c.Write(comm)
	if err != nil {
		return xerrors.Errorf("write config: %w", err)
	}

	if err := c.Close(); err != nil {
		return xerrors.Errorf("close config: %w", err)
	}
	return nil
}

func (r *Repo) defaultConfig(version string) *config.Harness {
	cfg := config.DefaultHarness()
	cfg.Bento.Version = version
	return cfg
}

// join joins path elements with the repo path.
func (r *Repo) join(paths ...string) string {
	return filepath.Join(append([]string{r.path}, paths...)...)
}
