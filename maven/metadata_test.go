package maven

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const artifactMetadataXML = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.kiji.kiji-bento</groupId>
  <artifactId>kiji-bento</artifactId>
  <versioning>
    <latest>1.0.2-SNAPSHOT</latest>
    <release>1.0.1</release>
    <versions>
      <version>1.0.0-rc4</version>
      <version>1.0.0-rc5</version>
      <version>1.0.1</version>
      <version>1.0.2-SNAPSHOT</version>
    </versions>
    <lastUpdated>20130322191304</lastUpdated>
  </versioning>
</metadata>
`

const snapshotMetadataXML = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.kiji.kiji-bento</groupId>
  <artifactId>kiji-bento</artifactId>
  <version>1.0.2-SNAPSHOT</version>
  <versioning>
    <snapshot>
      <timestamp>20130322.191304</timestamp>
      <buildNumber>13</buildNumber>
    </snapshot>
    <lastUpdated>20130322191304</lastUpdated>
  </versioning>
</metadata>
`

func TestParseMetadataVersions(t *testing.T) {
	md, err := ParseMetadata([]byte(artifactMetadataXML))
	require.NoError(t, err)

	assert.Equal(t, "org.kiji.kiji-bento", md.GroupID)
	assert.Equal(t, "kiji-bento", md.ArtifactID)
	assert.Equal(t, "1.0.1", md.Versioning.Release)
	assert.Equal(t,
		[]string{"1.0.0-rc4", "1.0.0-rc5", "1.0.1", "1.0.2-SNAPSHOT"},
		md.Versioning.Versions)
	assert.Nil(t, md.Versioning.Snapshot)
}

func TestParseMetadataSnapshot(t *testing.T) {
	md, err := ParseMetadata([]byte(snapshotMetadataXML))
	require.NoError(t, err)
	require.NotNil(t, md.Versioning.Snapshot)

	qualified, err := md.Versioning.Snapshot.Qualify("1.0.2-SNAPSHOT")
	require.NoError(t, err)
	assert.Equal(t, "1.0.2-20130322.191304-13", qualified)
}

func TestSnapshotQualifyErrors(t *testing.T) {
	s := &Snapshot{Timestamp: "20130322.191304", BuildNumber: "13"}
	_, err := s.Qualify("1.0.1")
	assert.Error(t, err)

	incomplete := &Snapshot{Timestamp: "20130322.191304"}
	_, err = incomplete.Qualify("1.0.2-SNAPSHOT")
	assert.Error(t, err)
}

func TestParseMetadataInvalid(t *testing.T) {
	_, err := ParseMetadata([]byte("not xml"))
	assert.Error(t, err)
}
