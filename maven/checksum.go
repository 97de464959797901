package maven

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"io"
	"os"
)

// Fingerprint is the pair of digests the Maven repository layout keeps
// next to every artifact, as lowercase hex.
type Fingerprint struct {
	MD5  string
	SHA1 string
}

// FileFingerprint computes the MD5 and SHA1 digests of a file in a
// single pass.
func FileFingerprint(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	w := NewFingerprintWriter(io.Discard)
	if _, err := io.Copy(w, f); err != nil {
		return Fingerprint{}, err
	}
	return w.Fingerprint(), nil
}

// FingerprintWriter tees writes into MD5 and SHA1 digests.
type FingerprintWriter struct {
	w    io.Writer
	md5  hash.Hash
	sha1 hash.Hash
}

func NewFingerprintWriter(w io.Writer) *FingerprintWriter {
	return &FingerprintWriter{
		w:    w,
		md5:  md5.New(),
		sha1: sha1.New(),
	}
}

func (fw *FingerprintWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if n > 0 {
		fw.md5.Write(p[:n])
		fw.sha1.Write(p[:n])
	}
	return n, err
}

func (fw *FingerprintWriter) Fingerprint() Fingerprint {
	return Fingerprint{
		MD5:  hex.EncodeToString(fw.md5.Sum(nil)),
		SHA1: hex.EncodeToString(fw.sha1.Sum(nil)),
	}
}
