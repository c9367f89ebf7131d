package interfaces

import (
	"context"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

// ContainerEngine abstracts the delegated container build/run operations.
type ContainerEngine interface {
	// BuildImage builds an image according to the spec and tags it with
	// spec.Image. The actual build is delegated entirely to the daemon.
	BuildImage(ctx context.Context, spec *model.BuildSpec) error

	// PushImage pushes a previously built image to its registry.
	PushImage(ctx context.Context, ref model.ImageRef) error

	// RunTests runs the command in a throwaway container created from the
	// image, then copies reportFile out of the container. A non-zero exit
	// code is not an error; it is recorded in the returned report.
	RunTests(ctx context.Context, ref model.ImageRef, cmd []string, reportFile string) (*model.TestReport, error)

	// RemoveImage removes a local image. Used for the ephemeral test image.
	RemoveImage(ctx context.Context, ref model.ImageRef) error
}
