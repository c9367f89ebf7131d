package model

import "fmt"

// ReportRetentionDays is how long uploaded test reports are kept.
const ReportRetentionDays = 30

// TestReport is the machine-readable report collected from a validation
// container. The content is opaque; stevedore only moves it around.
type TestReport struct {
	FileName string
	Data     []byte
	ExitCode int // exit code of the test command
}

// Passed reports whether the test command exited cleanly.
func (r *TestReport) Passed() bool {
	return r.ExitCode == 0
}

// ObjectName returns the artifact store key for this report within one run.
func (r *TestReport) ObjectName(runID string) string {
	return fmt.Sprintf("reports/%s/%s", runID, r.FileName)
}
