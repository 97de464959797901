package bento

import (
	"context"
	"os"
	"path/filepath"

	"kiji-testing/maven"
	"kiji-testing/types"
)

// Maven coordinate of the kiji-bento release artifact.
const (
	BentoGroup      = "org.kiji.kiji-bento"
	BentoArtifact   = "kiji-bento"
	BentoClassifier = "release"
	BentoType       = "tar.gz"
)

// ReleaseCoordinate returns the coordinate of the kiji-bento release
// archive for a version.
func ReleaseCoordinate(version string) maven.Coordinate {
	return maven.Coordinate{
		Group:      BentoGroup,
		Artifact:   BentoArtifact,
		Version:    version,
		Type:       BentoType,
		Classifier: BentoClassifier,
	}
}

// ArchiveName returns the file name of the release archive for a
// version, eg. "kiji-bento-1.0.1-release.tar.gz".
func ArchiveName(version string) string {
	return BentoArtifact + "-" + version + "-" + BentoClassifier + "." + BentoType
}

// InstallOptions configure a KijiBento installation.
type InstallOptions struct {
	// DownloadDir caches the fetched release archive.
	DownloadDir string

	// Remotes are the repositories the plain client fetches from.
	Remotes []string

	// MavenLocalRepo, when set, switches fetching to the mvn-based
	// fetcher against this local repository. Used when testing a
	// locally built, unreleased version.
	MavenLocalRepo string

	// MavenRemoteRepo is an extra remote for the mvn-based fetcher.
	MavenRemoteRepo string
}

// KijiBento wraps a kiji-bento installation.
type KijiBento struct {
	path    string
	version string
	cluster *Cluster
}

// NewKijiBento initializes the wrapper for an install directory and a
// bento version, eg. "1.0.1" or "1.0.2-SNAPSHOT".
func NewKijiBento(path, version string) *KijiBento {
	return &KijiBento{
		path:    path,
		version: version,
	}
}

func (b *KijiBento) Path() string {
	return b.path
}

func (b *KijiBento) Version() string {
	return b.version
}

// Installed reports whether the install directory holds a usable
// kiji-bento.
func (b *KijiBento) Installed() bool {
	_, err := os.Stat(filepath.Join(b.path, "bin", "kiji-env.sh"))
	return err == nil
}

// ClusterDir returns the BentoCluster directory of the install.
func (b *KijiBento) ClusterDir() string {
	return filepath.Join(b.path, "cluster")
}

// MusicDir returns the KijiMusic example directory of the install.
func (b *KijiBento) MusicDir() string {
	return filepath.Join(b.path, "examples", "music")
}

// Cluster returns the wrapped BentoCluster of the install.
func (b *KijiBento) Cluster(opts ClusterOptions) (*Cluster, error) {
	if b.cluster == nil {
		cluster, err := NewCluster(b.ClusterDir(), opts)
		if err != nil {
			return nil, err
		}
		b.cluster = cluster
	}
	return b.cluster, nil
}

// Install ensures kiji-bento is installed: fetches the release archive
// if needed and extracts it. Installing over an existing install is a
// no-op.
func (b *KijiBento) Install(ctx context.Context, opts InstallOptions) error {
	if b.Installed() {
		log.Debugf("kiji-bento %s already installed at %q", b.version, b.path)
		return nil
	}

	archive, err := b.fetch(ctx, opts)
	if err != nil {
		return err
	}

	log.Infof("Extracting %q to %q", archive, b.path)
	if err := os.MkdirAll(b.path, 0755); err != nil {
		return types.Wrap(types.ErrInstallBentoFailed, err)
	}
	// Strip the top-level "kiji-bento-<code-name>/" directory.
	if err := ExtractArchive(archive, b.path, 1); err != nil {
		return err
	}

	if !b.Installed() {
		return types.Wrapf(types.ErrInstallBentoFailed,
			"no bin/kiji-env.sh under %q after extracting %q", b.path, archive)
	}
	if _, err := os.Stat(b.ClusterDir()); err != nil {
		return types.Wrapf(types.ErrInstallBentoFailed,
			"no cluster directory under %q", b.path)
	}
	return nil
}

// fetch resolves the release archive into the download dir and returns
// its path.
func (b *KijiBento) fetch(ctx context.Context, opts InstallOptions) (string, error) {
	coordinate := ReleaseCoordinate(b.version)
	cached := filepath.Join(opts.DownloadDir, ArchiveName(b.version))
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	if opts.MavenLocalRepo != "" || opts.MavenRemoteRepo != "" {
		// Locally built or privately hosted version: delegate to mvn.
		err := maven.FetchArtifact(ctx, coordinate, maven.FetchOptions{
			OutputDir:  opts.DownloadDir,
			LocalRepo:  opts.MavenLocalRepo,
			RemoteRepo: opts.MavenRemoteRepo,
			Quiet:      true,
		})
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(cached); err != nil {
			return "", types.Wrapf(types.ErrInstallBentoFailed,
				"mvn fetch of %s left no %q", coordinate.ID(), cached)
		}
		return cached, nil
	}

	repo, err := maven.NewMavenRepository("", opts.Remotes)
	if err != nil {
		return "", err
	}
	localPath, err := repo.Get(ctx, coordinate)
	if err != nil {
		return "", err
	}
	return localPath, nil
}
