package tutorial

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kiji-testing/bento"
	"kiji-testing/command"
	"kiji-testing/types"
	"kiji-testing/utils"
)

const schemaGitURL = "git://github.com/kijiproject/kiji-schema.git"

// SchemaOptions configure a KijiSchema suite run.
type SchemaOptions struct {
	// WorkDir holds the cloned kiji-schema checkout and the report.
	WorkDir string

	// LogDir receives the captured command streams.
	LogDir string

	// Ref is the git ref to test. Empty means origin/master.
	Ref string

	// Tests restricts the run, passed to -Dtest. Empty means the
	// default selection.
	Tests string

	// Timeout bounds the mvn run. Zero means unbounded.
	Timeout time.Duration
}

// Schema runs the KijiSchema unit-test suite against a real HBase
// provided by a started bento cluster.
type Schema struct {
	cluster *bento.Cluster
	opts    SchemaOptions
	report  *Report
}

func NewSchema(cluster *bento.Cluster, opts SchemaOptions) *Schema {
	if opts.Ref == "" {
		opts.Ref = "origin/master"
	}
	if opts.Tests == "" {
		opts.Tests = "TestHBaseQualifierPager"
	}
	return &Schema{
		cluster: cluster,
		opts:    opts,
		report:  NewReport("kiji-schema", "", utils.NowMS()),
	}
}

// Report returns the run report.
func (s *Schema) Report() *Report {
	return s.report
}

// Run clones kiji-schema, checks out the requested ref and runs its
// test suite with HBASE_ADDRESS pointed at the bento ZooKeeper.
func (s *Schema) Run(ctx context.Context) error {
	err := s.run(ctx)

	s.report.Finish()
	if path, werr := s.report.Write(s.opts.WorkDir); werr != nil {
		log.Warnf("Writing run report: %v", werr)
	} else {
		log.Infof("Run report written to %q", path)
	}
	return err
}

func (s *Schema) run(ctx context.Context) error {
	repoDir := filepath.Join(s.opts.WorkDir, "kiji_schema")

	if _, err := os.Stat(repoDir); os.IsNotExist(err) {
		if _, err := s.step(ctx, "git-clone", s.opts.WorkDir, 0,
			"git", "clone", schemaGitURL, "kiji_schema"); err != nil {
			return err
		}
	}
	if _, err := s.step(ctx, "git-fetch", repoDir, 0, "git", "fetch", "origin"); err != nil {
		return err
	}
	if _, err := s.step(ctx, "git-checkout", repoDir, 0, "git", "checkout", s.opts.Ref); err != nil {
		return err
	}

	maven, err := s.step(ctx, "mvn-test", repoDir, -1,
		"mvn", "clean", "test",
		fmt.Sprintf("-DargLine=-Dorg.kiji.schema.KijiClientTest.HBASE_ADDRESS=%s",
			s.cluster.ZooKeeperAddress()),
		fmt.Sprintf("-Dtest=%s", s.opts.Tests),
		"-DfailIfNoTests=false",
	)
	if err != nil {
		return err
	}
	if maven.ExitCode() != 0 {
		log.Errorf("There are test failures")
		log.Infof("Maven error stream captured in %q", maven.ErrorPath())
		log.Infof("Maven output stream captured in %q", maven.OutputPath())
		s.markLastStep(fmt.Sprintf("mvn test exited with %d", maven.ExitCode()))
		return types.Wrapf(types.ErrSuiteFailed, "mvn test exited with %d", maven.ExitCode())
	}
	log.Info("No test failure")
	return nil
}

// step runs one command, recording it in the report. requiredExit < 0
// means any exit code is accepted.
func (s *Schema) step(ctx context.Context, name, workDir string, requiredExit int, args ...string) (*command.Command, error) {
	opts := command.Options{
		WorkDir: workDir,
		LogDir:  s.opts.LogDir,
		Timeout: s.opts.Timeout,
	}
	if requiredExit >= 0 {
		opts.ExitCode = command.RequireExitCode(requiredExit)
	}

	start := utils.NowMS()
	cmd, err := command.Run(ctx, opts, args...)

	result := StepResult{
		Name:       name,
		Command:    strings.Join(args, " "),
		DurationMS: utils.NowMS() - start,
	}
	if cmd != nil {
		result.ExitCode = cmd.ExitCode()
	}
	if err != nil {
		result.Error = err.Error()
	}
	s.report.Add(result)
	return cmd, err
}

func (s *Schema) markLastStep(msg string) {
	if len(s.report.Steps) == 0 {
		return
	}
	last := &s.report.Steps[len(s.report.Steps)-1]
	if last.Error == "" {
		last.Error = msg
	}
}

// Cleanup stops the cluster and wipes the working directory.
func (s *Schema) Cleanup() error {
	if err := s.cluster.Stop(); err != nil {
		return err
	}
	return os.RemoveAll(s.opts.WorkDir)
}
