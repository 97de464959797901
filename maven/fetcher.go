package maven

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"kiji-testing/command"
	"kiji-testing/types"
)

// Template for a pom.xml describing a project that depends on a single
// externally specified artifact. Feeding it to
// 'mvn dependency:copy-dependencies' delegates the whole resolution to
// Maven, which knows about settings.xml mirrors and proxies the plain
// repository client does not.
const pomTemplate = `
<project xmlns="http://maven.apache.org/POM/4.0.0"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
         xsi:schemaLocation="http://maven.apache.org/POM/4.0.0
                             http://maven.apache.org/maven-v4_0_0.xsd">
  <modelVersion>4.0.0</modelVersion>
  <groupId>org.kiji</groupId>
  <artifactId>maven-fetcher</artifactId>
  <version>0.0.0</version>
  <packaging>jar</packaging>

  <dependencies>
    <dependency>
      <groupId>%s</groupId>
      <artifactId>%s</artifactId>
      <version>%s</version>
      <classifier>%s</classifier>
      <type>%s</type>
      <scope>runtime</scope>
    </dependency>
  </dependencies>

  <repositories>
    %s
  </repositories>
</project>
`

// FetchOptions configure an mvn-based artifact fetch.
type FetchOptions struct {
	// Transitive also fetches transitive dependencies.
	Transitive bool

	// OutputDir is where the artifact file lands.
	OutputDir string

	// LocalRepo overrides maven.repo.local, eg. when testing artifacts
	// built locally into a scratch repository.
	LocalRepo string

	// RemoteRepo is an extra remote repository to include in the
	// generated pom.xml.
	RemoteRepo string

	// Quiet passes --quiet to mvn.
	Quiet bool
}

// FetchArtifact fetches an artifact by shelling out to Maven.
// This is the fallback used when the artifact only exists in a local
// build repository or behind repository settings the HTTP client does
// not know about.
func FetchArtifact(ctx context.Context, c Coordinate, opts FetchOptions) error {
	outputDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return types.Wrap(types.ErrFetchArtifactFailed, err)
	}

	repoBlock := ""
	if opts.RemoteRepo != "" {
		repoBlock = fmt.Sprintf(
			"<repository> <id>remote_repo</id> <url>%s</url> </repository>", opts.RemoteRepo)
	}
	pom := fmt.Sprintf(pomTemplate,
		c.Group, c.Artifact, c.Version, c.Classifier, c.Type, repoBlock)

	workDir, err := os.MkdirTemp("", "maven-fetcher.")
	if err != nil {
		return types.Wrap(types.ErrFetchArtifactFailed, err)
	}
	defer os.RemoveAll(workDir)
	log.Debugf("Maven fetch working directory is %s", workDir)

	if err := os.WriteFile(filepath.Join(workDir, "pom.xml"), []byte(pom), 0644); err != nil {
		return types.Wrap(types.ErrFetchArtifactFailed, err)
	}

	log.Infof("Fetching Maven artifact %s", c.ID())
	args := []string{
		"mvn",
		"dependency:copy-dependencies",
		fmt.Sprintf("-DoutputDirectory=%s", outputDir),
		fmt.Sprintf("-DexcludeTransitive=%t", !opts.Transitive),
		"-U",
	}
	if opts.LocalRepo != "" {
		args = append(args, fmt.Sprintf("-Dmaven.repo.local=%s", opts.LocalRepo))
	}
	if opts.Quiet {
		args = append(args, "--quiet")
	}

	_, err = command.Run(ctx, command.Options{
		WorkDir:  workDir,
		ExitCode: command.RequireExitCode(0),
	}, args...)
	if err != nil {
		return types.Wrapf(types.ErrFetchArtifactFailed, "%s: %v", c.ID(), err)
	}
	return nil
}
