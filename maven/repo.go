package maven

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mitchellh/go-homedir"

	"kiji-testing/types"
)

const fetchRetries = 3

// MavenRepository resolves artifacts through a local cache backed by an
// ordered list of remote repositories.
type MavenRepository struct {
	local   *Repository
	remotes []*Repository
}

// NewMavenRepository initializes an artifact resolver.
// localPath is the local repository directory; empty means
// ~/.m2/repository. remotes are tried in order.
func NewMavenRepository(localPath string, remotes []string) (*MavenRepository, error) {
	if localPath == "" {
		localPath = "~/.m2/repository"
	}
	localPath, err := homedir.Expand(localPath)
	if err != nil {
		return nil, types.Wrap(types.ErrInvalidRepositoryURL, err)
	}
	if !strings.Contains(localPath, "://") {
		localPath = "file://" + localPath
	}
	local, err := NewRepository(localPath)
	if err != nil {
		return nil, err
	}
	if !local.IsLocal() {
		return nil, types.Wrapf(types.ErrInvalidRepositoryURL,
			"local repository path %q is not a file:// path", localPath)
	}

	mr := &MavenRepository{local: local}
	for _, remote := range remotes {
		r, err := NewRepository(remote)
		if err != nil {
			return nil, err
		}
		mr.remotes = append(mr.remotes, r)
	}
	return mr, nil
}

// Local returns the local writable repository.
func (m *MavenRepository) Local() *Repository {
	return m.local
}

// Remotes returns the ordered remote repositories.
func (m *MavenRepository) Remotes() []*Repository {
	return m.remotes
}

// ListVersions merges the version lists published by the remotes,
// preserving order and dropping duplicates.
func (m *MavenRepository) ListVersions(ctx context.Context, group, artifact string) ([]string, error) {
	seen := make(map[string]struct{})
	var versions []string
	for _, remote := range m.remotes {
		vs, err := remote.ListVersions(ctx, group, artifact)
		if err != nil {
			log.Warnf("Listing versions from %s: %v", remote.Base(), err)
			continue
		}
		for _, v := range vs {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// Get retrieves an artifact into the local repository and returns its
// local filesystem path. A valid cached copy short-circuits the fetch.
func (m *MavenRepository) Get(ctx context.Context, c Coordinate) (string, error) {
	rel, err := c.Path()
	if err != nil {
		return "", err
	}
	localPath := m.local.localPath(rel)

	if cached, err := m.cachedValid(ctx, rel, localPath); err != nil {
		return "", err
	} else if cached {
		log.Debugf("Using cached artifact %q", localPath)
		return localPath, nil
	}

	for _, remote := range m.remotes {
		found, err := m.fetchFrom(ctx, remote, c, localPath)
		if err != nil {
			log.Errorf("Fetching %s from %s: %v", c.ID(), remote.Base(), err)
			continue
		}
		if found {
			return localPath, nil
		}
	}
	return "", types.Wrapf(types.ErrArtifactNotFound, "%s", c.ID())
}

// cachedValid reports whether the local repository holds the artifact
// with matching checksum sidecars.
func (m *MavenRepository) cachedValid(ctx context.Context, rel, localPath string) (bool, error) {
	if _, err := os.Stat(localPath); err != nil {
		return false, nil
	}
	md5, err := m.local.ReadMD5(ctx, rel)
	if err != nil {
		return false, err
	}
	sha1, err := m.local.ReadSHA1(ctx, rel)
	if err != nil {
		return false, err
	}
	if md5 == "" || sha1 == "" {
		return false, nil
	}
	fp, err := FileFingerprint(localPath)
	if err != nil {
		return false, types.Wrap(types.ErrFetchArtifactFailed, err)
	}
	return fp.MD5 == md5 && fp.SHA1 == sha1, nil
}

// fetchFrom downloads the artifact from one remote with bounded retry.
// Returns false when the remote does not have the artifact.
func (m *MavenRepository) fetchFrom(ctx context.Context, remote *Repository, c Coordinate, localPath string) (bool, error) {
	var found bool
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries), ctx)

	err := backoff.Retry(func() error {
		body, published, err := remote.OpenArtifact(ctx, c)
		if err != nil {
			return err
		}
		if body == nil {
			found = false
			return nil
		}
		defer body.Close()
		found = true

		actual, err := readToFile(body, localPath)
		if err != nil {
			return err
		}
		return verify(remote, localPath, published, actual)
	}, policy)
	if err != nil {
		return false, err
	}
	return found, nil
}

// readToFile streams a download to the local repository, fingerprinting
// as it goes.
func readToFile(body io.Reader, localPath string) (Fingerprint, error) {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return Fingerprint{}, types.Wrap(types.ErrFetchArtifactFailed, err)
	}

	start := time.Now()
	f, err := os.Create(localPath)
	if err != nil {
		return Fingerprint{}, types.Wrap(types.ErrFetchArtifactFailed, err)
	}
	fw := NewFingerprintWriter(f)
	n, err := io.Copy(fw, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(localPath)
		return Fingerprint{}, types.Wrap(types.ErrFetchArtifactFailed, err)
	}
	log.Infof("Fetched %d bytes to %q in %s", n, localPath, time.Since(start).Round(time.Millisecond))
	return fw.Fingerprint(), nil
}

// verify checks the downloaded file against the published fingerprint
// and writes the checksum sidecars. Missing published checksums are
// accepted with a warning; a mismatch removes the partial download.
func verify(remote *Repository, localPath string, published, actual Fingerprint) error {
	if published.MD5 == "" && published.SHA1 == "" {
		log.Warnf("No published checksums for %q in %s", localPath, remote.Base())
	}
	if published.MD5 != "" && published.MD5 != actual.MD5 {
		os.Remove(localPath)
		return types.Wrapf(types.ErrChecksumMismatch,
			"md5 for %q from %s: expected %s, got %s", localPath, remote.Base(), published.MD5, actual.MD5)
	}
	if published.SHA1 != "" && published.SHA1 != actual.SHA1 {
		os.Remove(localPath)
		return types.Wrapf(types.ErrChecksumMismatch,
			"sha1 for %q from %s: expected %s, got %s", localPath, remote.Base(), published.SHA1, actual.SHA1)
	}

	if err := os.WriteFile(localPath+".md5", []byte(actual.MD5), 0644); err != nil {
		return types.Wrap(types.ErrFetchArtifactFailed, err)
	}
	if err := os.WriteFile(localPath+".sha1", []byte(actual.SHA1), 0644); err != nil {
		return types.Wrap(types.ErrFetchArtifactFailed, err)
	}
	return nil
}
