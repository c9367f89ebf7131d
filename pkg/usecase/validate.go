package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

type validationUseCase struct {
	engine        interfaces.ContainerEngine
	githubClient  interfaces.GitHubClient
	artifactStore interfaces.ArtifactStore
	buildCfg      *model.BuildConfig
	registry      string
	namespace     string
	deps          deps
}

// NewValidation creates the pull-request validation pipeline: build a
// throwaway test image, run the test suite inside it, retain the report as
// an artifact, and delete the ephemeral registry package afterward.
func NewValidation(
	engine interfaces.ContainerEngine,
	githubClient interfaces.GitHubClient,
	artifactStore interfaces.ArtifactStore,
	buildCfg *model.BuildConfig,
	registry, namespace string,
	opts ...Option,
) interfaces.ValidationUseCase {
	return &validationUseCase{
		engine:        engine,
		githubClient:  githubClient,
		artifactStore: artifactStore,
		buildCfg:      buildCfg,
		registry:      registry,
		namespace:     namespace,
		deps:          newDeps(opts),
	}
}

// ValidatePullRequest runs the validation pipeline for one PR head.
func (uc *validationUseCase) ValidatePullRequest(ctx context.Context, repository string, prNumber int, headSHA string) error {
	logger := ctxlog.From(ctx)

	owner, _, ok := strings.Cut(repository, "/")
	if !ok {
		return goerr.New("invalid repository name", goerr.V("repository", repository))
	}

	run := model.NewPipelineRun(model.RunKindValidation, repository)
	run.PRNumber = prNumber
	run.CommitSHA = headSHA
	uc.deps.recordStart(ctx, run)

	spec := uc.buildCfg.TestSpec(uc.registry, uc.namespace, ephemeralTag(prNumber, headSHA))

	logger.Info("Starting validation pipeline",
		"run_id", run.ID,
		"repository", repository,
		"pr_number", prNumber,
		"head_sha", headSHA,
		"image", spec.Image.String(),
	)

	err := uc.validate(ctx, run, spec, owner)
	uc.deps.recordFinish(ctx, run, err)
	if err != nil {
		return goerr.Wrap(err, "validation pipeline failed",
			goerr.V("repository", repository), goerr.V("pr_number", prNumber))
	}

	logger.Info("Validation pipeline completed",
		"run_id", run.ID,
		"pr_number", prNumber,
		"artifact_url", run.ArtifactURL,
	)
	return nil
}

func (uc *validationUseCase) validate(ctx context.Context, run *model.PipelineRun, spec *model.BuildSpec, owner string) error {
	logger := ctxlog.From(ctx)

	if err := uc.engine.BuildImage(ctx, spec); err != nil {
		return goerr.Wrap(err, "failed to build test image", goerr.V("image", spec.Image.String()))
	}
	if err := uc.engine.PushImage(ctx, spec.Image); err != nil {
		return goerr.Wrap(err, "failed to push test image", goerr.V("image", spec.Image.String()))
	}

	// Cleanup of the ephemeral package runs regardless of the test outcome.
	// Its errors are logged, never returned.
	defer uc.cleanup(ctx, spec.Image, owner)

	report, err := uc.engine.RunTests(ctx, spec.Image, uc.buildCfg.Test.Command, uc.buildCfg.Test.ReportFile)
	if err != nil {
		return goerr.Wrap(err, "failed to run test suite", goerr.V("image", spec.Image.String()))
	}

	logger.Info("Test suite finished",
		"run_id", run.ID,
		"exit_code", report.ExitCode,
		"report_file", report.FileName,
		"report_bytes", len(report.Data),
	)

	url, err := uc.artifactStore.PutReport(ctx, run.ID, report)
	if err != nil {
		return goerr.Wrap(err, "failed to upload test report", goerr.V("run_id", run.ID))
	}
	run.ArtifactURL = url

	if !report.Passed() {
		return goerr.New("test suite failed",
			goerr.V("exit_code", report.ExitCode), goerr.V("report_url", url))
	}
	return nil
}

// cleanup deletes the ephemeral test image from the registry and locally.
func (uc *validationUseCase) cleanup(ctx context.Context, ref model.ImageRef, owner string) {
	logger := ctxlog.From(ctx)

	if err := uc.githubClient.DeletePackageVersion(ctx, owner, ref.Name, ref.Tag); err != nil {
		logger.Error("Failed to delete ephemeral registry package",
			"package", ref.Name, "tag", ref.Tag, "error", err)
	} else {
		logger.Info("Deleted ephemeral registry package",
			"package", ref.Name, "tag", ref.Tag)
	}

	if err := uc.engine.RemoveImage(ctx, ref); err != nil {
		logger.Warn("Failed to remove local test image",
			"image", ref.String(), "error", err)
	}
}

// ephemeralTag names the throwaway test image for one PR head.
func ephemeralTag(prNumber int, headSHA string) string {
	short := headSHA
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("pr%d-%s", prNumber, short)
}
