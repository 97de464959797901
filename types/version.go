package types

import "strings"

const SnapshotSuffix = "-SNAPSHOT"

// IsSnapshot reports whether a version string names an unreleased build,
// eg. "1.0.2-SNAPSHOT".
func IsSnapshot(version string) bool {
	return strings.HasSuffix(version, SnapshotSuffix)
}

// BaseVersion strips the snapshot suffix, if present.
func BaseVersion(version string) string {
	return strings.TrimSuffix(version, SnapshotSuffix)
}
