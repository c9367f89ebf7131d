package interfaces

import (
	"context"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

// ArtifactStore retains pipeline artifacts for later download.
type ArtifactStore interface {
	// PutReport uploads a test report under the run's namespace and returns
	// the stored object's URL. Retention is bounded by
	// model.ReportRetentionDays.
	PutReport(ctx context.Context, runID string, report *model.TestReport) (string, error)
}

// RunStore persists pipeline run records.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.PipelineRun) error
}

// Notifier announces run completion to humans.
type Notifier interface {
	NotifyRun(ctx context.Context, run *model.PipelineRun) error
}
