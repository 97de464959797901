package maven

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"kiji-testing/types"
)

var log = logging.Logger("maven")

// Kiji and related artifact repositories.
const (
	KijiPublicRepo   = "https://repo.wibidata.com/artifactory/kiji-packages"
	KijiSnapshotRepo = "https://repo.wibidata.com/artifactory/kiji-nightly"
	ClouderaRepo     = "https://repository.cloudera.com/artifactory/cloudera-repos"
	MavenCentralRepo = "https://repo.maven.apache.org/maven2"
)

// Repository wraps a single Maven repository, local (file://) or
// remote (http:// or https://).
type Repository struct {
	base   string
	client *http.Client
}

// NewRepository initializes a repository wrapper for the given base
// URL, eg. "file:///home/x/.m2/repository" or KijiPublicRepo.
func NewRepository(base string) (*Repository, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, types.Wrap(types.ErrInvalidRepositoryURL, err)
	}
	switch u.Scheme {
	case "file", "http", "https":
	default:
		return nil, types.Wrapf(types.ErrInvalidRepositoryURL, "unsupported scheme in %q", base)
	}
	return &Repository{
		base:   strings.TrimRight(base, "/"),
		client: http.DefaultClient,
	}, nil
}

// Base returns the repository base URL.
func (r *Repository) Base() string {
	return r.base
}

// IsLocal reports whether the repository is on the local filesystem.
func (r *Repository) IsLocal() bool {
	return strings.HasPrefix(r.base, "file://")
}

// IsRemote reports whether the repository is served over HTTP.
func (r *Repository) IsRemote() bool {
	return strings.HasPrefix(r.base, "http://") || strings.HasPrefix(r.base, "https://")
}

// localPath translates a repository-relative path to a filesystem path.
func (r *Repository) localPath(rel string) string {
	return path.Join(strings.TrimPrefix(r.base, "file://"), rel)
}

// URL returns the absolute URL of a repository-relative path.
func (r *Repository) URL(rel string) string {
	return r.base + "/" + rel
}

// Open streams a repository-relative file.
// A nil reader with a nil error means the file does not exist.
func (r *Repository) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	if r.IsLocal() {
		f, err := os.Open(r.localPath(rel))
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, types.Wrap(types.ErrReadRepositoryFailed, err)
		}
		return f, nil
	}

	url := r.URL(rel)
	log.Debugf("Fetching %q", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, types.Wrap(types.ErrReadRepositoryFailed, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, types.Wrap(types.ErrReadRepositoryFailed, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, types.Wrapf(types.ErrReadRepositoryFailed, "GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// ReadFile reads a repository-relative file.
// A nil slice with a nil error means the file does not exist.
func (r *Repository) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	body, err := r.Open(ctx, rel)
	if err != nil || body == nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, types.Wrap(types.ErrReadRepositoryFailed, err)
	}
	return data, nil
}

// ReadMetadata retrieves and parses the maven-metadata.xml for an
// artifact (version-level when c.Version is set). Returns nil when the
// repository does not publish one.
func (r *Repository) ReadMetadata(ctx context.Context, c Coordinate) (*Metadata, error) {
	if !r.IsRemote() {
		// Local repositories keep no usable metadata.
		return nil, nil
	}
	rel, err := c.MetadataPath()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadFile(ctx, rel)
	if err != nil || data == nil {
		return nil, err
	}
	return ParseMetadata(data)
}

// ListVersions lists the published versions of an artifact.
func (r *Repository) ListVersions(ctx context.Context, group, artifact string) ([]string, error) {
	md, err := r.ReadMetadata(ctx, Coordinate{Group: group, Artifact: artifact})
	if err != nil || md == nil {
		return nil, err
	}
	versions := make([]string, 0, len(md.Versioning.Versions))
	for _, v := range md.Versioning.Versions {
		versions = append(versions, strings.TrimSpace(v))
	}
	return versions, nil
}

// Resolve fills in the snapshot version of a -SNAPSHOT coordinate from
// the repository metadata. Released coordinates pass through unchanged,
// as do snapshots in local repositories, which keep the raw -SNAPSHOT
// file names.
func (r *Repository) Resolve(ctx context.Context, c Coordinate) (Coordinate, error) {
	if !types.IsSnapshot(c.Version) || c.SnapshotVersion != "" || !r.IsRemote() {
		return c, nil
	}
	md, err := r.ReadMetadata(ctx, c)
	if err != nil {
		return c, err
	}
	if md == nil || md.Versioning.Snapshot == nil {
		return c, nil
	}
	qualified, err := md.Versioning.Snapshot.Qualify(c.Version)
	if err != nil {
		return c, err
	}
	log.Debugf("Resolved %s to snapshot version %s", c.ID(), qualified)
	c.SnapshotVersion = qualified
	return c, nil
}

// ReadMD5 reads the .md5 sidecar of a repository-relative path.
// Empty means no sidecar.
func (r *Repository) ReadMD5(ctx context.Context, rel string) (string, error) {
	return r.readSidecar(ctx, rel+".md5")
}

// ReadSHA1 reads the .sha1 sidecar of a repository-relative path.
// Empty means no sidecar.
func (r *Repository) ReadSHA1(ctx context.Context, rel string) (string, error) {
	return r.readSidecar(ctx, rel+".sha1")
}

func (r *Repository) readSidecar(ctx context.Context, rel string) (string, error) {
	data, err := r.ReadFile(ctx, rel)
	if err != nil || data == nil {
		return "", err
	}
	// Some repositories append "  <filename>" after the digest.
	sum := strings.TrimSpace(string(data))
	if i := strings.IndexAny(sum, " \t"); i > 0 {
		sum = sum[:i]
	}
	return strings.ToLower(sum), nil
}

// OpenArtifact resolves a coordinate and streams the artifact with its
// published fingerprint. A nil reader with a nil error means the
// artifact does not exist in this repository.
func (r *Repository) OpenArtifact(ctx context.Context, c Coordinate) (io.ReadCloser, Fingerprint, error) {
	resolved, err := r.Resolve(ctx, c)
	if err != nil {
		return nil, Fingerprint{}, err
	}
	rel, err := resolved.Path()
	if err != nil {
		return nil, Fingerprint{}, err
	}

	var fp Fingerprint
	if fp.MD5, err = r.ReadMD5(ctx, rel); err != nil {
		return nil, Fingerprint{}, err
	}
	if fp.SHA1, err = r.ReadSHA1(ctx, rel); err != nil {
		return nil, Fingerprint{}, err
	}

	log.Infof("Opening %q", r.URL(rel))
	body, err := r.Open(ctx, rel)
	if err != nil {
		return nil, Fingerprint{}, err
	}
	if body == nil {
		log.Debugf("Artifact %q does not exist in %s", rel, r.base)
		return nil, Fingerprint{}, nil
	}
	return body, fp, nil
}
