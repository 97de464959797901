package tutorial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestReportPassed(t *testing.T) {
	r := NewReport("music", "1.0.1", 1365548283995)
	r.Add(StepResult{Name: "kiji-install", Command: "kiji install", ExitCode: 0, DurationMS: 1200})
	r.Add(StepResult{Name: "import-song-metadata", ExitCode: 0, DurationMS: 800})
	r.Finish()

	assert.True(t, r.Passed)
	assert.GreaterOrEqual(t, r.FinishedMS, r.StartedMS)
}

func TestReportFailed(t *testing.T) {
	r := NewReport("music", "1.0.1", 1365548283995)
	r.Add(StepResult{Name: "kiji-install", ExitCode: 0})
	r.Add(StepResult{Name: "bulk-import", ExitCode: 1, Error: "unexpected exit code"})
	r.Finish()

	assert.False(t, r.Passed)
}

func TestReportWrite(t *testing.T) {
	r := NewReport("music", "1.0.2-SNAPSHOT", 1365548283995)
	r.Add(StepResult{Name: "kiji-install", Command: "kiji install --kiji=...", ExitCode: 0, DurationMS: 1200})
	r.Finish()

	dir := t.TempDir()
	path, err := r.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-report.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "music", gjson.GetBytes(data, "suite").String())
	assert.Equal(t, "1.0.2-SNAPSHOT", gjson.GetBytes(data, "bento_version").String())
	assert.Equal(t, int64(1365548283995), gjson.GetBytes(data, "run_id").Int())
	assert.True(t, gjson.GetBytes(data, "passed").Bool())
	steps := gjson.GetBytes(data, "steps")
	require.True(t, steps.IsArray())
	assert.Equal(t, "kiji-install", steps.Array()[0].Get("name").String())
}
