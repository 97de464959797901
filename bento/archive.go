package bento

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kiji-testing/types"
)

// ExtractArchive extracts a tar.gz archive into workDir, stripping the
// given number of leading path components. The kiji-bento release
// archive nests everything under "kiji-bento-<code-name>/" and the
// code name is unknown before extraction, hence the stripping.
func ExtractArchive(archive, workDir string, stripComponents int) error {
	f, err := os.Open(archive)
	if err != nil {
		return types.Wrap(types.ErrExtractArchiveFailed, err)
	}
	defer f.Close()

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return types.Wrap(types.ErrExtractArchiveFailed, err)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		return types.Wrap(types.ErrExtractArchiveFailed, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return types.Wrap(types.ErrExtractArchiveFailed, err)
		}

		name, ok := stripPath(hdr.Name, stripComponents)
		if !ok {
			continue
		}
		target, err := securePath(workDir, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)|0700); err != nil {
				return types.Wrap(types.ErrExtractArchiveFailed, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return types.Wrap(types.ErrExtractArchiveFailed, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return types.Wrap(types.ErrExtractArchiveFailed, err)
			}
			_, err = io.Copy(out, tr)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return types.Wrap(types.ErrExtractArchiveFailed, err)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return types.Wrap(types.ErrExtractArchiveFailed, err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil && !os.IsExist(err) {
				return types.Wrap(types.ErrExtractArchiveFailed, err)
			}
		default:
			// Hard links and device nodes do not occur in release
			// archives; skip silently.
		}
	}
}

// stripPath removes n leading path components. Entries with fewer
// components than n (eg. the stripped top directory itself) are
// dropped.
func stripPath(name string, n int) (string, bool) {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	parts := strings.Split(name, "/")
	if len(parts) <= n {
		return "", false
	}
	out := strings.Join(parts[n:], "/")
	if out == "" {
		return "", false
	}
	return out, true
}

// securePath rejects entries escaping the extraction root.
func securePath(workDir, name string) (string, error) {
	target := filepath.Join(workDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(workDir)+string(os.PathSeparator)) {
		return "", types.Wrapf(types.ErrExtractArchiveFailed, "archive entry escapes the work dir: %q", name)
	}
	return target, nil
}
