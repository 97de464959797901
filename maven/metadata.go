package maven

import (
	"encoding/xml"
	"fmt"

	"kiji-testing/types"
)

// Metadata models the parts of maven-metadata.xml the harness needs:
// the list of published versions at the artifact level, and the
// snapshot timestamp/build number at the version level.
type Metadata struct {
	XMLName    xml.Name   `xml:"metadata"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Version    string     `xml:"version"`
	Versioning Versioning `xml:"versioning"`
}

type Versioning struct {
	Latest   string    `xml:"latest"`
	Release  string    `xml:"release"`
	Snapshot *Snapshot `xml:"snapshot"`
	Versions []string  `xml:"versions>version"`
}

type Snapshot struct {
	Timestamp   string `xml:"timestamp"`
	BuildNumber string `xml:"buildNumber"`
}

// ParseMetadata decodes a maven-metadata.xml document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var md Metadata
	if err := xml.Unmarshal(data, &md); err != nil {
		return nil, types.Wrap(types.ErrInvalidMetadata, err)
	}
	return &md, nil
}

// Qualify turns a -SNAPSHOT version into the qualified snapshot version
// published under it, eg. "1.0.2-SNAPSHOT" into
// "1.0.2-20130322.191304-13".
func (s *Snapshot) Qualify(version string) (string, error) {
	if !types.IsSnapshot(version) {
		return "", types.Wrapf(types.ErrInvalidMetadata, "version %s is not a snapshot", version)
	}
	if s.Timestamp == "" || s.BuildNumber == "" {
		return "", types.Wrapf(types.ErrInvalidMetadata,
			"incomplete snapshot descriptor: timestamp=%q buildNumber=%q", s.Timestamp, s.BuildNumber)
	}
	return fmt.Sprintf("%s-%s-%s", types.BaseVersion(version), s.Timestamp, s.BuildNumber), nil
}
