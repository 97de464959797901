package maven

import (
	"fmt"
	"path"
	"strings"

	"kiji-testing/types"
)

// Coordinate identifies a resource in a Maven repository.
// Artifact, Version, Type and Classifier are progressively optional: a
// coordinate with no artifact addresses the group directory, one with
// no version the artifact directory, and so on.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Type       string
	Classifier string

	// SnapshotVersion is the qualified version of a -SNAPSHOT artifact,
	// eg. "1.0.2-20130322.191304-13". Resolved from maven-metadata.xml.
	SnapshotVersion string
}

// ID returns the conventional group:artifact:version:classifier:type
// identifier.
func (c Coordinate) ID() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", c.Group, c.Artifact, c.Version, c.Classifier, c.Type)
}

// Path returns the repository-relative path of the resource.
func (c Coordinate) Path() (string, error) {
	if c.Group == "" {
		return "", types.Wrapf(types.ErrInvalidCoordinate, "missing group in %s", c.ID())
	}
	p := path.Join(strings.Split(c.Group, ".")...)
	if c.Artifact == "" {
		return p, nil // group directory
	}
	p = path.Join(p, c.Artifact)
	if c.Version == "" {
		return p, nil // artifact directory
	}
	p = path.Join(p, c.Version)
	if c.Type == "" {
		return p, nil // artifact version directory
	}

	// Requested resource is a file:
	nameParts := []string{c.Artifact}
	if c.SnapshotVersion != "" {
		if !types.IsSnapshot(c.Version) {
			return "", types.Wrapf(types.ErrInvalidCoordinate,
				"snapshot version %s given for non-snapshot %s", c.SnapshotVersion, c.ID())
		}
		nameParts = append(nameParts, c.SnapshotVersion)
	} else {
		nameParts = append(nameParts, c.Version)
	}
	if c.Classifier != "" {
		nameParts = append(nameParts, c.Classifier)
	}
	name := fmt.Sprintf("%s.%s", strings.Join(nameParts, "-"), c.Type)
	return path.Join(p, name), nil
}

// MetadataPath returns the repository-relative path of the
// maven-metadata.xml file for the coordinate's artifact (or artifact
// version, when Version is set).
func (c Coordinate) MetadataPath() (string, error) {
	dir := Coordinate{Group: c.Group, Artifact: c.Artifact, Version: c.Version}
	p, err := dir.Path()
	if err != nil {
		return "", err
	}
	return path.Join(p, "maven-metadata.xml"), nil
}
