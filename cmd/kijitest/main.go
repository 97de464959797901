package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"kiji-testing/bento"
	"kiji-testing/build"
	cliutil "kiji-testing/cmd"
	"kiji-testing/config"
	"kiji-testing/repo"
	"kiji-testing/types"
	"kiji-testing/utils"
)

var log = logging.Logger("main")

func before(_ *cli.Context) error {
	return cliutil.SetupLogLevels()
}

func main() {
	app := &cli.App{
		Name:                 "kijitest",
		Usage:                "end-to-end test harness for KijiBento tutorials",
		EnableBashCompletion: true,
		Version:              build.UserVersion(),
		Before:               before,
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagLogLevel,
			cliutil.FlagLogDir,
			cliutil.FlagBentoVersion,
			cliutil.FlagMavenLocalRepo,
			cliutil.FlagMavenRemoteRepo,
			cliutil.FlagKeep,
			cliutil.FlagVeryVerbose,
		},
		Commands: []*cli.Command{
			initCmd,
			versionsCmd,
			installCmd,
			clusterCmd,
			musicCmd,
			schemaCmd,
		},
	}
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func banner() {
	figure.NewFigure("Kiji Test", "", false).Print()
}

// openRepo expands and initializes the harness repo and loads its
// config.
func openRepo(cctx *cli.Context) (*repo.Repo, *config.Harness, error) {
	r, err := repo.NewRepo(cctx.String(cliutil.FlagTestRepo))
	if err != nil {
		return nil, nil, err
	}
	if err := r.Init(cliutil.BentoVersion); err != nil {
		return nil, nil, err
	}
	cfg, err := r.Config()
	if err != nil {
		return nil, nil, err
	}

	// CLI flags override the config file.
	if cliutil.BentoVersion != "" {
		cfg.Bento.Version = cliutil.BentoVersion
	}
	if cliutil.MavenLocalRepo != "" {
		cfg.Maven.LocalRepository = cliutil.MavenLocalRepo
	}
	if cliutil.MavenRemoteRepo != "" {
		cfg.Maven.RemoteRepositories = append(
			[]string{cliutil.MavenRemoteRepo}, cfg.Maven.RemoteRepositories...)
	}
	if cliutil.LogDir == "" {
		cliutil.LogDir = cfg.Test.LogDir
	}
	if cliutil.LogDir == "" {
		cliutil.LogDir = r.LogDir()
	}
	if err := os.MkdirAll(cliutil.LogDir, 0755); err != nil {
		return nil, nil, types.Wrap(types.ErrCreateDirFailed, err)
	}
	if cliutil.Keep {
		cfg.Test.CleanupAfterTest = false
	}
	// Legacy knob of the original harness, accepts yes/no/true/false.
	if v := os.Getenv("KIJI_DISABLE_CLEANUP"); v != "" {
		disable, err := utils.Truth(v)
		if err != nil {
			return nil, nil, err
		}
		if disable {
			cfg.Test.CleanupAfterTest = false
		}
	}
	return r, cfg, nil
}

// bentoVersion resolves the version under test or fails with a usage
// hint.
func bentoVersion(cfg *config.Harness) (string, error) {
	if cfg.Bento.Version == "" {
		return "", types.Wrapf(types.ErrVersionNotSpecified,
			"specify the version of KijiBento to test with --kiji-bento-version=...")
	}
	return cfg.Bento.Version, nil
}

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "initialize the harness repo",
	Action: func(cctx *cli.Context) error {
		r, err := repo.NewRepo(cctx.String(cliutil.FlagTestRepo))
		if err != nil {
			return err
		}
		if err := r.Init(cliutil.BentoVersion); err != nil {
			return err
		}
		fmt.Printf("Harness repo ready at %s\n", r.Path())
		return nil
	},
}

var versionsCmd = &cli.Command{
	Name:  "versions",
	Usage: "list the kiji-bento versions published in the remote repositories",
	Action: func(cctx *cli.Context) error {
		_, cfg, err := openRepo(cctx)
		if err != nil {
			return err
		}
		mr, err := newMavenRepository(cfg)
		if err != nil {
			return err
		}
		versions, err := mr.ListVersions(cctx.Context, bento.BentoGroup, bento.BentoArtifact)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			log.Warn("No published versions found")
			return nil
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return nil
	},
}

var installCmd = &cli.Command{
	Name:  "install",
	Usage: "fetch and extract the kiji-bento release under test",
	Action: func(cctx *cli.Context) error {
		r, cfg, err := openRepo(cctx)
		if err != nil {
			return err
		}
		version, err := bentoVersion(cfg)
		if err != nil {
			return err
		}

		kb, err := installBento(cctx, r, cfg, version)
		if err != nil {
			return err
		}
		fmt.Printf("kiji-bento %s installed at %s\n", version, kb.Path())
		return nil
	},
}
