package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cytomine/stevedore/pkg/domain/model"
	"github.com/cytomine/stevedore/pkg/usecase"
)

func TestBuildRelease(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultBuildConfig()

	t.Run("builds and pushes both image variants", func(t *testing.T) {
		engine := &fakeEngine{}
		store := &fakeRunStore{}
		notifier := &fakeNotifier{}

		uc := usecase.NewBuild(engine, cfg, "ghcr.io", "cytomine",
			usecase.WithRunStore(store), usecase.WithNotifier(notifier))

		gt.NoError(t, uc.BuildRelease(ctx, "cytomine/pims", "bp-2.4.10"))

		gt.A(t, engine.builds).Length(2)
		gt.A(t, engine.pushes).Length(2)

		gt.Equal(t, engine.builds[0].Image.String(), "ghcr.io/cytomine/pims:bp-2.4.10")
		gt.Equal(t, engine.builds[1].Image.String(), "ghcr.io/cytomine/pims-worker:bp-2.4.10")

		// The worker build receives the pushed service image as its base.
		gt.Equal(t, engine.builds[1].Args["FROM_IMAGE"], "ghcr.io/cytomine/pims:bp-2.4.10")

		// The service image was pushed before the worker build began.
		gt.Equal(t, engine.pushes[0], engine.builds[0].Image)

		run := store.lastRun()
		gt.Value(t, run).NotNil()
		gt.Equal(t, run.Status, model.RunStatusSucceeded)
		gt.Equal(t, run.Channel, model.ChannelStable)
		gt.A(t, notifier.notified).Length(1)
	})

	t.Run("prerelease tag follows the same build path", func(t *testing.T) {
		engine := &fakeEngine{}
		store := &fakeRunStore{}

		uc := usecase.NewBuild(engine, cfg, "ghcr.io", "cytomine",
			usecase.WithRunStore(store))

		gt.NoError(t, uc.BuildRelease(ctx, "cytomine/pims", "bp-2.4.10-rc1"))

		gt.A(t, engine.builds).Length(2)
		gt.Equal(t, store.lastRun().Channel, model.ChannelPrerelease)
	})

	t.Run("build failure stops the pipeline and records a failed run", func(t *testing.T) {
		engine := &fakeEngine{buildErr: errors.New("daemon unavailable")}
		store := &fakeRunStore{}

		uc := usecase.NewBuild(engine, cfg, "ghcr.io", "cytomine",
			usecase.WithRunStore(store))

		err := uc.BuildRelease(ctx, "cytomine/pims", "bp-1.0.0")
		gt.Error(t, err)

		gt.A(t, engine.builds).Length(1)
		gt.A(t, engine.pushes).Length(0)
		gt.Equal(t, store.lastRun().Status, model.RunStatusFailed)
	})

	t.Run("push failure surfaces without retry", func(t *testing.T) {
		engine := &fakeEngine{pushErr: errors.New("registry rejected push")}

		uc := usecase.NewBuild(engine, cfg, "ghcr.io", "cytomine")

		err := uc.BuildRelease(ctx, "cytomine/pims", "bp-1.0.0")
		gt.Error(t, err)
		gt.A(t, engine.pushes).Length(1)
	})

	t.Run("works without run store or notifier", func(t *testing.T) {
		engine := &fakeEngine{}
		uc := usecase.NewBuild(engine, cfg, "ghcr.io", "cytomine")
		gt.NoError(t, uc.BuildRelease(ctx, "cytomine/pims", "nightly"))
	})
}
