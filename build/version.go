package build

var CurrentCommit string

// BuildVersion is the harness version. Update for releases.
const BuildVersion = "0.3.0"

func UserVersion() string {
	return BuildVersion + CurrentCommit
}
