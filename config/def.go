package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"

	"kiji-testing/maven"
)

// harness config
type Harness struct {
	Bento Bento
	Maven Maven
	Test  Test
}

type Bento struct {
	// Version of kiji-bento to install and test against,
	// eg. "1.0.1" or "1.0.2-SNAPSHOT".
	Version string

	// EnableLog captures the bento cluster logs to file.
	EnableLog bool

	// StartTimeoutSeconds bounds 'bin/bento start'.
	StartTimeoutSeconds int
}

type Maven struct {
	LocalRepository    string
	RemoteRepositories []string
}

type Test struct {
	// LogDir receives the captured command streams. Empty means the
	// repo's logs directory.
	LogDir string

	// CleanupAfterTest stops the cluster and wipes the working
	// directory once the run completes.
	CleanupAfterTest bool

	// CommandTimeoutSeconds bounds each tutorial command. Zero means
	// unbounded.
	CommandTimeoutSeconds int
}

func DefaultHarness() *Harness {
	return &Harness{
		Bento: Bento{
			EnableLog:           true,
			StartTimeoutSeconds: 300,
		},
		Maven: Maven{
			RemoteRepositories: []string{
				maven.KijiPublicRepo,
				maven.KijiSnapshotRepo,
			},
		},
		Test: Test{
			CleanupAfterTest: true,
		},
	}
}

func HarnessBytes(cfg interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	e := toml.NewEncoder(buf)
	if err := e.Encode(cfg); err != nil {
		return nil, xerrors.Errorf("encoding harness config: %w", err)
	}

	return buf.Bytes(), nil
}
