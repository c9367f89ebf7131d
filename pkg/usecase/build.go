package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type buildUseCase struct {
	engine    interfaces.ContainerEngine
	buildCfg  *model.BuildConfig
	registry  string
	namespace string
	deps      deps
}

// NewBuild creates the tag-triggered build-and-push pipeline. It builds the
// service image and the worker variant derived from it, and pushes both to
// the registry namespace under the triggering tag.
func NewBuild(
	engine interfaces.ContainerEngine,
	buildCfg *model.BuildConfig,
	registry, namespace string,
	opts ...Option,
) interfaces.BuildUseCase {
	return &buildUseCase{
		engine:    engine,
		buildCfg:  buildCfg,
		registry:  registry,
		namespace: namespace,
		deps:      newDeps(opts),
	}
}

// BuildRelease runs the full build pipeline for one pushed tag.
func (uc *buildUseCase) BuildRelease(ctx context.Context, repository, tag string) error {
	logger := ctxlog.From(ctx)

	run := model.NewPipelineRun(model.RunKindBuild, repository)
	run.Tag = tag
	run.Channel = model.ClassifyTag(tag)
	uc.deps.recordStart(ctx, run)

	logger.Info("Starting release build pipeline",
		"run_id", run.ID,
		"repository", repository,
		"tag", tag,
		"channel", run.Channel,
	)

	err := uc.buildAndPushAll(ctx, tag)
	uc.deps.recordFinish(ctx, run, err)
	if err != nil {
		return goerr.Wrap(err, "release build pipeline failed",
			goerr.V("repository", repository), goerr.V("tag", tag))
	}

	logger.Info("Release build pipeline completed",
		"run_id", run.ID,
		"tag", tag,
	)
	return nil
}

func (uc *buildUseCase) buildAndPushAll(ctx context.Context, tag string) error {
	logger := ctxlog.From(ctx)

	service := uc.buildCfg.ServiceSpec(uc.registry, uc.namespace, tag)
	if err := uc.buildAndPush(ctx, service); err != nil {
		return err
	}

	// The worker derives from the service image that was just pushed.
	worker := uc.buildCfg.WorkerSpec(uc.registry, uc.namespace, tag, service.Image)
	if err := uc.buildAndPush(ctx, worker); err != nil {
		return err
	}

	logger.Info("Pushed image pair",
		"service", service.Image.String(),
		"worker", worker.Image.String(),
	)
	return nil
}

func (uc *buildUseCase) buildAndPush(ctx context.Context, spec *model.BuildSpec) error {
	logger := ctxlog.From(ctx)

	logger.Info("Building image",
		"image", spec.Image.String(),
		"dockerfile", spec.Dockerfile,
		"build_args", len(spec.Args),
	)
	if err := uc.engine.BuildImage(ctx, spec); err != nil {
		return goerr.Wrap(err, "failed to build image", goerr.V("image", spec.Image.String()))
	}

	logger.Info("Pushing image", "image", spec.Image.String())
	if err := uc.engine.PushImage(ctx, spec.Image); err != nil {
		return goerr.Wrap(err, "failed to push image", goerr.V("image", spec.Image.String()))
	}

	return nil
}
