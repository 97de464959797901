package command

import "context"

// Kiji runs a shell command line inside a KijiBento environment.
// Options.WorkDir must be the KijiBento installation directory so that
// bin/kiji-env.sh resolves.
func Kiji(ctx context.Context, opts Options, shell string) (*Command, error) {
	return Run(ctx, opts,
		"/bin/bash",
		"-c",
		"source ./bin/kiji-env.sh > /dev/null 2>&1 && "+shell,
	)
}
