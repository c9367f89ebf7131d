package interfaces

import (
	"context"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

// GitHubClient defines the hosted API operations the pipelines need.
type GitHubClient interface {
	// CreateRelease creates a release record for the tag with auto-generated
	// notes, flagged pre-release according to the channel. Returns the HTML
	// URL of the created release.
	CreateRelease(ctx context.Context, info *model.ReleaseInfo) (string, error)

	// DeletePackageVersion deletes the container package version whose image
	// carries the given tag from the owner's registry namespace.
	DeletePackageVersion(ctx context.Context, owner, packageName, tag string) error
}
