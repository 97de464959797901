package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocmd "github.com/go-cmd/cmd"
	logging "github.com/ipfs/go-log/v2"

	"kiji-testing/types"
	"kiji-testing/utils"
)

var log = logging.Logger("command")

// Verbose makes every command dump its full output and error streams to
// the debug log. Wired to the -vv CLI flag.
var Verbose bool

// Options control how a command is executed.
type Options struct {
	// WorkDir is the working directory. Empty means the current one.
	WorkDir string

	// Env is the full set of environment variables for the subprocess.
	// Nil means inheriting the harness environment.
	Env []string

	// LogDir is where the output/error streams are captured as files.
	// Empty means the current working directory.
	LogDir string

	// ExitCode, when non-nil, is the exit code the command is required
	// to return. A mismatch yields ErrUnexpectedExitCode.
	ExitCode *int

	// Timeout bounds the command run time. Zero means no bound beyond
	// the context.
	Timeout time.Duration
}

// Command is a completed shell command with its captured streams.
type Command struct {
	args       []string
	workDir    string
	exitCode   int
	outputPath string
	errorPath  string
	output     []byte
	errOutput  []byte
}

// RequireExitCode is a convenience for Options.ExitCode.
func RequireExitCode(code int) *int {
	return &code
}

// Run executes a command line and waits for it to complete.
// Output and error streams are captured into
// <log-dir>/<name>.<timestamp-ms>.<pid>.{out,err}.
func Run(ctx context.Context, opts Options, args ...string) (*Command, error) {
	if len(args) == 0 {
		return nil, types.Wrapf(types.ErrInvalidParameters, "empty command line")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, types.Wrap(types.ErrStartCommandFailed, err)
		}
		workDir = cwd
	}
	logDir := opts.LogDir
	if logDir == "" {
		logDir = workDir
	}

	name := filepath.Base(args[0])
	stamp := utils.NowMS()
	c := &Command{
		args:       args,
		workDir:    workDir,
		outputPath: filepath.Join(logDir, fmt.Sprintf("%s.%d.%d.out", name, stamp, os.Getpid())),
		errorPath:  filepath.Join(logDir, fmt.Sprintf("%s.%d.%d.err", name, stamp, os.Getpid())),
	}

	if Verbose {
		log.Debugf("Running command in %q:\n%s\nWith environment:\n\t%s",
			workDir, strings.Join(args, " \\\n\t"), strings.Join(opts.Env, "\n\t"))
	} else {
		log.Debugf("Running command in %q: %s", workDir, strings.Join(args, " "))
	}

	proc := gocmd.NewCmd(args[0], args[1:]...)
	proc.Dir = workDir
	proc.Env = opts.Env

	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var status gocmd.Status
	select {
	case status = <-proc.Start():
	case <-runCtx.Done():
		_ = proc.Stop()
		status = proc.Status()
		_ = c.capture(status)
		return c, types.Wrapf(types.ErrCommandTimedOut, "%s: %v", strings.Join(args, " "), runCtx.Err())
	}

	if status.Error != nil {
		return c, types.Wrap(types.ErrStartCommandFailed, status.Error)
	}

	c.exitCode = status.Exit
	if err := c.capture(status); err != nil {
		return c, err
	}

	log.Debugf("Exit code: %d", c.exitCode)
	if Verbose {
		log.Debugf("Output:\n%s", c.OutputText())
		log.Debugf("Error:\n%s", c.ErrorText())
	}

	if opts.ExitCode != nil && c.exitCode != *opts.ExitCode {
		return c, types.Wrapf(types.ErrUnexpectedExitCode,
			"exit code %d does not match required code %d for command: %s",
			c.exitCode, *opts.ExitCode, strings.Join(args, " "))
	}
	return c, nil
}

// capture persists the collected streams to the log files and keeps
// them in memory for the accessors.
func (c *Command) capture(status gocmd.Status) error {
	c.output = joinLines(status.Stdout)
	c.errOutput = joinLines(status.Stderr)

	if err := os.WriteFile(c.outputPath, c.output, 0644); err != nil {
		return types.Wrap(types.ErrCaptureLogFailed, err)
	}
	if err := os.WriteFile(c.errorPath, c.errOutput, 0644); err != nil {
		return types.Wrap(types.ErrCaptureLogFailed, err)
	}
	return nil
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// Args returns the command line.
func (c *Command) Args() []string {
	return c.args
}

// ExitCode returns the command exit code.
func (c *Command) ExitCode() int {
	return c.exitCode
}

// OutputBytes returns the command output stream.
func (c *Command) OutputBytes() []byte {
	return c.output
}

// OutputText returns the command output stream as a string.
func (c *Command) OutputText() string {
	return string(c.output)
}

// OutputLines returns the command output stream as text lines.
func (c *Command) OutputLines() []string {
	return strings.Split(c.OutputText(), "\n")
}

// ErrorBytes returns the command error stream.
func (c *Command) ErrorBytes() []byte {
	return c.errOutput
}

// ErrorText returns the command error stream as a string.
func (c *Command) ErrorText() string {
	return string(c.errOutput)
}

// ErrorLines returns the command error stream as text lines.
func (c *Command) ErrorLines() []string {
	return strings.Split(c.ErrorText(), "\n")
}

// OutputPath returns the path of the captured output stream file.
func (c *Command) OutputPath() string {
	return c.outputPath
}

// ErrorPath returns the path of the captured error stream file.
func (c *Command) ErrorPath() string {
	return c.errorPath
}
