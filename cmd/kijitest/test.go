package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	cliutil "kiji-testing/cmd"
	"kiji-testing/repo"
	"kiji-testing/tutorial"
	"kiji-testing/types"
	"kiji-testing/utils"
)

// runWorkDir creates the per-run scratch directory.
func runWorkDir(r *repo.Repo, suite string) (string, error) {
	dir := filepath.Join(r.WorkDir(), fmt.Sprintf("%s-%d", suite, utils.NowMS()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", types.Wrap(types.ErrCreateDirFailed, err)
	}
	return dir, nil
}

var musicCmd = &cli.Command{
	Name:  "music",
	Usage: "run the KijiMusic tutorial end to end",
	Flags: []cli.Flag{
		&cli.IntSliceFlag{
			Name:  "part",
			Usage: "tutorial parts to run (1-4), defaults to all of them",
		},
		flagSkipPortCheck,
	},
	Action: func(cctx *cli.Context) error {
		banner()

		r, cfg, err := openRepo(cctx)
		if err != nil {
			return err
		}
		version, err := bentoVersion(cfg)
		if err != nil {
			return err
		}
		log.Infof("Testing tutorial of KijiBento %s", version)

		kb, cluster, err := startCluster(cctx, r, cfg, version, cctx.Bool("skip-port-check"))
		if err != nil {
			return err
		}
		workDir, err := runWorkDir(r, "music")
		if err != nil {
			return err
		}
		log.Debugf("Working directory: %q", workDir)

		music := tutorial.NewMusic(kb, cluster, tutorial.MusicOptions{
			WorkDir:        workDir,
			LogDir:         cliutil.LogDir,
			CommandTimeout: time.Duration(cfg.Test.CommandTimeoutSeconds) * time.Second,
			Parts:          cctx.IntSlice("part"),
		})
		if err := music.Setup(); err != nil {
			return err
		}

		runErr := music.Run(cctx.Context)
		if cfg.Test.CleanupAfterTest {
			if err := music.Cleanup(); err != nil {
				log.Warnf("Cleanup failed: %v", err)
			}
		} else {
			log.Infof("Cleanup disabled: cluster stays up, instance %s kept", music.InstanceURI())
		}
		if runErr != nil {
			color.Red("KijiMusic tutorial: FAILED")
			return runErr
		}
		color.Green("KijiMusic tutorial: PASSED")
		return nil
	},
}

var schemaCmd = &cli.Command{
	Name:  "schema",
	Usage: "run the KijiSchema test suite against a bento cluster",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "ref",
			Usage: "kiji-schema git ref to test",
			Value: "origin/master",
		},
		&cli.StringFlag{
			Name:  "tests",
			Usage: "test selection passed to -Dtest",
		},
		flagSkipPortCheck,
	},
	Action: func(cctx *cli.Context) error {
		r, cfg, err := openRepo(cctx)
		if err != nil {
			return err
		}
		version, err := bentoVersion(cfg)
		if err != nil {
			return err
		}
		log.Infof("Using KijiBento %s", version)

		_, cluster, err := startCluster(cctx, r, cfg, version, cctx.Bool("skip-port-check"))
		if err != nil {
			return err
		}
		workDir, err := runWorkDir(r, "schema")
		if err != nil {
			return err
		}

		suite := tutorial.NewSchema(cluster, tutorial.SchemaOptions{
			WorkDir: workDir,
			LogDir:  cliutil.LogDir,
			Ref:     cctx.String("ref"),
			Tests:   cctx.String("tests"),
			Timeout: time.Duration(cfg.Test.CommandTimeoutSeconds) * time.Second,
		})

		runErr := suite.Run(cctx.Context)
		if cfg.Test.CleanupAfterTest {
			if err := suite.Cleanup(); err != nil {
				log.Warnf("Cleanup failed: %v", err)
			}
		}
		if runErr != nil {
			color.Red("KijiSchema suite: FAILED")
			return runErr
		}
		color.Green("KijiSchema suite: PASSED")
		return nil
	},
}
