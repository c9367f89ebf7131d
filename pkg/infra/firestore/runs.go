package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

const runCollection = "pipeline_runs"

type runStore struct {
	client *firestore.Client
}

// New creates a Firestore backed run store.
func New(ctx context.Context, projectID string) (interfaces.RunStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID))
	}
	return &runStore{client: client}, nil
}

// SaveRun upserts the run record. Called once at start and once at finish;
// the second write overwrites the first with the terminal state.
func (s *runStore) SaveRun(ctx context.Context, run *model.PipelineRun) error {
	if _, err := s.client.Collection(runCollection).Doc(run.ID).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to save pipeline run",
			goerr.V("run_id", run.ID), goerr.V("kind", run.Kind))
	}
	return nil
}
