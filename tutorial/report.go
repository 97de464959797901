package tutorial

import (
	"os"
	"path/filepath"

	"kiji-testing/types"
	"kiji-testing/utils"
)

// StepResult records one executed step of a run.
type StepResult struct {
	Name       string `json:"name"`
	Command    string `json:"command,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Report is the machine-readable summary of a harness run, written
// into the working directory.
type Report struct {
	Suite        string       `json:"suite"`
	RunID        int64        `json:"run_id"`
	BentoVersion string       `json:"bento_version"`
	StartedMS    int64        `json:"started_ms"`
	FinishedMS   int64        `json:"finished_ms"`
	Passed       bool         `json:"passed"`
	Steps        []StepResult `json:"steps"`
}

func NewReport(suite, bentoVersion string, runID int64) *Report {
	return &Report{
		Suite:        suite,
		RunID:        runID,
		BentoVersion: bentoVersion,
		StartedMS:    utils.NowMS(),
	}
}

func (r *Report) Add(step StepResult) {
	r.Steps = append(r.Steps, step)
}

// Finish seals the report. The run passed when no step failed.
func (r *Report) Finish() {
	r.FinishedMS = utils.NowMS()
	r.Passed = true
	for _, step := range r.Steps {
		if step.Error != "" {
			r.Passed = false
			return
		}
	}
}

// Write serializes the report as JSON.
func (r *Report) Write(dir string) (string, error) {
	data, err := utils.Marshal(r)
	if err != nil {
		return "", types.Wrap(types.ErrWriteReportFailed, err)
	}
	path := filepath.Join(dir, "run-report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", types.Wrap(types.ErrWriteReportFailed, err)
	}
	return path, nil
}
