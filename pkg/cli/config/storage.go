package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	firestoreinfra "github.com/cytomine/stevedore/pkg/infra/firestore"
	gcsinfra "github.com/cytomine/stevedore/pkg/infra/gcs"
)

// Storage holds artifact and run-record storage configuration. Both are
// optional for direct CLI runs; the serve command requires the bucket.
type Storage struct {
	Bucket           string
	FirestoreProject string
}

// Flags returns CLI flags for storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "artifact-bucket",
			Usage:       "Cloud Storage bucket for test report artifacts",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("STEVEDORE_ARTIFACT_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project for pipeline run records (disabled when empty)",
			Destination: &c.FirestoreProject,
			Sources:     cli.EnvVars("STEVEDORE_FIRESTORE_PROJECT"),
		},
	}
}

// ConfigureArtifactStore creates the artifact store, or nil when no bucket
// is configured.
func (c *Storage) ConfigureArtifactStore(ctx context.Context) (interfaces.ArtifactStore, error) {
	if c.Bucket == "" {
		return nil, nil
	}
	return gcsinfra.New(ctx, c.Bucket)
}

// ConfigureRunStore creates the run store, or nil when no project is
// configured.
func (c *Storage) ConfigureRunStore(ctx context.Context) (interfaces.RunStore, error) {
	if c.FirestoreProject == "" {
		return nil, nil
	}
	return firestoreinfra.New(ctx, c.FirestoreProject)
}
