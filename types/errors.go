package types

import "cosmossdk.io/errors"

var (
	ModuleMaven = "maven"

	ErrInvalidCoordinate    = errors.Register(ModuleMaven, 10000, "invalid artifact coordinate")
	ErrInvalidRepositoryURL = errors.Register(ModuleMaven, 10001, "invalid repository url")
	ErrReadRepositoryFailed = errors.Register(ModuleMaven, 10002, "failed to read from the repository")
	ErrInvalidMetadata      = errors.Register(ModuleMaven, 10003, "invalid maven-metadata.xml")
	ErrArtifactNotFound     = errors.Register(ModuleMaven, 10004, "artifact not found in any repository")
	ErrChecksumMismatch     = errors.Register(ModuleMaven, 10005, "artifact checksum mismatch")
	ErrFetchArtifactFailed  = errors.Register(ModuleMaven, 10006, "failed to fetch the artifact")

	ModuleBento = "bento"

	ErrInvalidBentoHome     = errors.Register(ModuleBento, 20000, "invalid bento home directory")
	ErrBentoNotInstalled    = errors.Register(ModuleBento, 20001, "kiji-bento is not installed")
	ErrInstallBentoFailed   = errors.Register(ModuleBento, 20002, "failed to install kiji-bento")
	ErrStartClusterFailed   = errors.Register(ModuleBento, 20003, "failed to start the bento cluster")
	ErrStopClusterFailed    = errors.Register(ModuleBento, 20004, "failed to stop the bento cluster")
	ErrSiteFileNotFound     = errors.Register(ModuleBento, 20005, "hadoop site file not found")
	ErrInvalidSiteFile      = errors.Register(ModuleBento, 20006, "invalid hadoop site file")
	ErrAddressNotFound      = errors.Register(ModuleBento, 20007, "cluster address not found in the site files")
	ErrPortsUnavailable     = errors.Register(ModuleBento, 20008, "default cluster ports are already in use")
	ErrExtractArchiveFailed = errors.Register(ModuleBento, 20009, "failed to extract the release archive")

	ModuleCommand = "command"

	ErrStartCommandFailed = errors.Register(ModuleCommand, 30000, "failed to start the command")
	ErrUnexpectedExitCode = errors.Register(ModuleCommand, 30001, "command exited with an unexpected code")
	ErrCommandTimedOut    = errors.Register(ModuleCommand, 30002, "command timed out")
	ErrCaptureLogFailed   = errors.Register(ModuleCommand, 30003, "failed to capture the command streams")

	ModuleTutorial = "tutorial"

	ErrExpectationFailed = errors.Register(ModuleTutorial, 40000, "tutorial expectation failed")
	ErrTutorialFailed    = errors.Register(ModuleTutorial, 40001, "tutorial run failed")
	ErrSuiteFailed       = errors.Register(ModuleTutorial, 40002, "test suite reported failures")
	ErrWriteReportFailed = errors.Register(ModuleTutorial, 40003, "failed to write the run report")

	ModuleRepo = "repo"

	ErrInvalidRepoPath     = errors.Register(ModuleRepo, 50000, "invalid repo path")
	ErrInitRepoFailed      = errors.Register(ModuleRepo, 50001, "failed to initialize the repo")
	ErrReadConfigFailed    = errors.Register(ModuleRepo, 50002, "failed to read the config file")
	ErrEncodeConfigFailed  = errors.Register(ModuleRepo, 50003, "failed to encode the config")
	ErrInvalidConfig       = errors.Register(ModuleRepo, 50004, "invalid config")
	ErrCreateDirFailed     = errors.Register(ModuleRepo, 50005, "failed to create directory")
	ErrInvalidParameters   = errors.Register(ModuleRepo, 50006, "invalid parameters")
	ErrInvalidTruthValue   = errors.Register(ModuleRepo, 50007, "invalid truth value")
	ErrMarshalFailed       = errors.Register(ModuleRepo, 50008, "failed to marshal the object")
	ErrVersionNotSpecified = errors.Register(ModuleRepo, 50009, "kiji-bento version not specified")
)

func Wrap(err0 error, err1 error) error {
	return errors.Wrapf(err0, ", due to %v", err1)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
