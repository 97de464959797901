package cliutil

import (
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"kiji-testing/command"
	"kiji-testing/types"
)

const (
	FlagTestRepo        = "repo"
	FlagTestDefaultRepo = "~/.kiji-test"
)

// Subsystems carrying a named logger.
var logSubsystems = []string{
	"main",
	"command",
	"maven",
	"bento",
	"tutorial",
	"repo",
}

var LogLevel string
var FlagLogLevel = &cli.StringFlag{
	Name:        "log-level",
	Aliases:     []string{"log_level"},
	Usage:       "log verbosity, a named level (DEBUG, INFO, WARN, ERROR) or a numeric one",
	EnvVars:     []string{"KIJI_LOG_LEVEL"},
	Value:       "INFO",
	Destination: &LogLevel,
}

var BentoVersion string
var FlagBentoVersion = &cli.StringFlag{
	Name:        "kiji-bento-version",
	Aliases:     []string{"kiji_bento_version"},
	Usage:       `version of KijiBento to download and test against, eg. "1.0.0-rc4" or "1.0.0-rc5-SNAPSHOT"`,
	EnvVars:     []string{"KIJI_BENTO_VERSION"},
	Destination: &BentoVersion,
}

var MavenLocalRepo string
var FlagMavenLocalRepo = &cli.StringFlag{
	Name:        "maven-local-repo",
	Aliases:     []string{"maven_local_repo"},
	Usage:       "optional Maven local repository from where to fetch artifacts",
	EnvVars:     []string{"KIJI_MAVEN_LOCAL_REPOSITORY"},
	Destination: &MavenLocalRepo,
}

var MavenRemoteRepo string
var FlagMavenRemoteRepo = &cli.StringFlag{
	Name:        "maven-remote-repo",
	Aliases:     []string{"maven_remote_repo"},
	Usage:       "optional Maven remote repository from where to fetch artifacts",
	EnvVars:     []string{"KIJI_MAVEN_REMOTE_REPOSITORY"},
	Destination: &MavenRemoteRepo,
}

var FlagRepo = &cli.StringFlag{
	Name:    FlagTestRepo,
	Usage:   "harness repo directory",
	EnvVars: []string{"KIJI_TEST_PATH"},
	Value:   FlagTestDefaultRepo,
}

var LogDir string
var FlagLogDir = &cli.StringFlag{
	Name:        "log-dir",
	Usage:       "directory for captured command streams, defaults to the repo logs directory",
	EnvVars:     []string{"KIJI_LOG_DIR"},
	Destination: &LogDir,
}

var Keep bool
var FlagKeep = &cli.BoolFlag{
	Name:        "keep",
	Usage:       "disable cleanup after test: the bento cluster stays alive and the working directory is not wiped",
	EnvVars:     []string{"KIJI_KEEP_AFTER_TEST"},
	Destination: &Keep,
}

// IsVeryVerbose is a global var signalling if the CLI is running in
// very verbose mode or not (default: false).
var IsVeryVerbose bool

// FlagVeryVerbose enables very verbose mode, which also dumps the full
// command output/error streams to the debug log.
var FlagVeryVerbose = &cli.BoolFlag{
	Name:        "vv",
	Usage:       "enables very verbose mode, useful for debugging the harness",
	Destination: &IsVeryVerbose,
}

// SetupLogLevels wires the --log-level / -vv flags into the named
// loggers. Numeric levels follow the Python logging thresholds the
// original harness used: 10 is debug, 20 info, 30 warn, 40 error;
// anything below 10 also enables the very verbose mode.
func SetupLogLevels() error {
	level, veryVerbose, err := ResolveLogLevel(LogLevel)
	if err != nil {
		return err
	}
	if IsVeryVerbose {
		veryVerbose = true
		level = "DEBUG"
	}
	command.Verbose = veryVerbose

	for _, name := range logSubsystems {
		if err := logging.SetLogLevel(name, level); err != nil {
			return types.Wrapf(types.ErrInvalidParameters, "setting log level for %s: %v", name, err)
		}
	}
	return nil
}

// ResolveLogLevel parses a named or numeric log level into a go-log
// level name and a very-verbose indicator.
func ResolveLogLevel(text string) (string, bool, error) {
	switch strings.ToUpper(text) {
	case "DEBUG":
		return "DEBUG", false, nil
	case "INFO", "":
		return "INFO", false, nil
	case "WARN", "WARNING":
		return "WARN", false, nil
	case "ERROR":
		return "ERROR", false, nil
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return "", false, types.Wrapf(types.ErrInvalidParameters, "invalid log level %q", text)
	}
	switch {
	case n < 10:
		return "DEBUG", true, nil
	case n < 20:
		return "DEBUG", false, nil
	case n < 30:
		return "INFO", false, nil
	case n < 40:
		return "WARN", false, nil
	default:
		return "ERROR", false, nil
	}
}
