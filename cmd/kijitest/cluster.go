package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"kiji-testing/bento"
	cliutil "kiji-testing/cmd"
	"kiji-testing/config"
	"kiji-testing/maven"
	"kiji-testing/repo"
)

func newMavenRepository(cfg *config.Harness) (*maven.MavenRepository, error) {
	return maven.NewMavenRepository(cfg.Maven.LocalRepository, cfg.Maven.RemoteRepositories)
}

// installBento ensures the kiji-bento install for the version under
// test exists in the repo work dir.
func installBento(cctx *cli.Context, r *repo.Repo, cfg *config.Harness, version string) (*bento.KijiBento, error) {
	kb := bento.NewKijiBento(r.BentoDir(version), version)
	err := kb.Install(cctx.Context, bento.InstallOptions{
		DownloadDir:     r.DownloadDir(),
		Remotes:         cfg.Maven.RemoteRepositories,
		MavenLocalRepo:  cfg.Maven.LocalRepository,
		MavenRemoteRepo: cliutil.MavenRemoteRepo,
	})
	if err != nil {
		return nil, err
	}
	return kb, nil
}

func clusterOptions(cfg *config.Harness, skipPortCheck bool) bento.ClusterOptions {
	return bento.ClusterOptions{
		EnableLog:     cfg.Bento.EnableLog,
		StartTimeout:  time.Duration(cfg.Bento.StartTimeoutSeconds) * time.Second,
		SkipPortCheck: skipPortCheck,
		LogDir:        cliutil.LogDir,
	}
}

// startCluster installs the bento if needed and brings its cluster up.
func startCluster(cctx *cli.Context, r *repo.Repo, cfg *config.Harness, version string, skipPortCheck bool) (*bento.KijiBento, *bento.Cluster, error) {
	kb, err := installBento(cctx, r, cfg, version)
	if err != nil {
		return nil, nil, err
	}
	cluster, err := kb.Cluster(clusterOptions(cfg, skipPortCheck))
	if err != nil {
		return nil, nil, err
	}
	if err := cluster.Start(cctx.Context); err != nil {
		return nil, nil, err
	}
	return kb, cluster, nil
}

var flagSkipPortCheck = &cli.BoolFlag{
	Name:  "skip-port-check",
	Usage: "do not probe the default cluster ports before starting",
}

var clusterCmd = &cli.Command{
	Name:  "cluster",
	Usage: "manage the bento cluster of the install under test",
	Subcommands: []*cli.Command{
		clusterStartCmd,
		clusterStopCmd,
		clusterEnvCmd,
	},
}

var clusterStartCmd = &cli.Command{
	Name:  "start",
	Usage: "start the bento cluster, installing kiji-bento if needed",
	Flags: []cli.Flag{flagSkipPortCheck},
	Action: func(cctx *cli.Context) error {
		r, cfg, err := openRepo(cctx)
		if err != nil {
			return err
		}
		version, err := bentoVersion(cfg)
		if err != nil {
			return err
		}

		_, cluster, err := startCluster(cctx, r, cfg, version, cctx.Bool("skip-port-check"))
		if err != nil {
			return err
		}
		fmt.Printf("Bento cluster up, kiji URI: %s\n", cluster.HBaseURI())
		return nil
	},
}

var clusterStopCmd = &cli.Command{
	Name:  "stop",
	Usage: "stop a running bento cluster",
	Action: func(cctx *cli.Context) error {
		r, cfg, err := openRepo(cctx)
		if err != nil {
			return err
		}
		version, err := bentoVersion(cfg)
		if err != nil {
			return err
		}

		kb := bento.NewKijiBento(r.BentoDir(version), version)
		cluster, err := kb.Cluster(clusterOptions(cfg, true))
		if err != nil {
			return err
		}
		// Recover the pid of a cluster started by a previous run.
		if _, err := cluster.Running(); err != nil {
			return err
		}
		return cluster.Stop()
	},
}

var clusterEnvCmd = &cli.Command{
	Name:  "env",
	Usage: "write the cluster client configuration files (hbase/hdfs/mapred/core site.xml)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "output-dir",
			Usage:    "directory where to write the configuration files",
			Required: true,
		},
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

		kb := bento.NewKijiBento(r.BentoDir(version), version)
		cluster, err := kb.Cluster(clusterOptions(cfg, true))
		if err != nil {
			return err
		}
		outputDir := cctx.String("output-dir")
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return err
		}
		if err := cluster.WriteConf(outputDir); err != nil {
			return err
		}
		fmt.Printf("Cluster configuration written to %s\n", outputDir)
		return nil
	},
}
