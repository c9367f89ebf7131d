package model

import (
	"time"

	"github.com/google/uuid"
)

// RunKind identifies which of the three automation flows a run belongs to.
type RunKind string

const (
	RunKindBuild      RunKind = "build"      // tag-triggered image build and push
	RunKindPublish    RunKind = "publish"    // tag-triggered release publication
	RunKindValidation RunKind = "validation" // pull-request validation pipeline
)

// RunStatus is the terminal (or in-flight) state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun is the record persisted for each triggered run. Runs are
// isolated: no run reads another run's record.
type PipelineRun struct {
	ID          string    `firestore:"id"`
	Kind        RunKind   `firestore:"kind"`
	Repository  string    `firestore:"repository"`
	Tag         string    `firestore:"tag,omitempty"`
	Channel     Channel   `firestore:"channel,omitempty"`
	PRNumber    int       `firestore:"pr_number,omitempty"`
	CommitSHA   string    `firestore:"commit_sha,omitempty"`
	Status      RunStatus `firestore:"status"`
	Error       string    `firestore:"error,omitempty"`
	ArtifactURL string    `firestore:"artifact_url,omitempty"`
	StartedAt   time.Time `firestore:"started_at"`
	FinishedAt  time.Time `firestore:"finished_at,omitempty"`
}

// NewPipelineRun creates a run record in the running state.
func NewPipelineRun(kind RunKind, repository string) *PipelineRun {
	return &PipelineRun{
		ID:         uuid.NewString(),
		Kind:       kind,
		Repository: repository,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
}

// Finish marks the run as terminated. A nil error means success.
func (r *PipelineRun) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusSucceeded
}
