package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/cytomine/stevedore/pkg/domain/model"
	"github.com/cytomine/stevedore/pkg/usecase"
)

func passingReport() *model.TestReport {
	return &model.TestReport{
		FileName: "test-report.xml",
		Data:     []byte(`<testsuite tests="12" failures="0"/>`),
		ExitCode: 0,
	}
}

func TestValidatePullRequest(t *testing.T) {
	ctx := context.Background()
	cfg := model.DefaultBuildConfig()

	newUC := func(engine *fakeEngine, gh *fakeGitHub, store *fakeArtifactStore, opts ...usecase.Option) func(context.Context, string, int, string) error {
		uc := usecase.NewValidation(engine, gh, store, cfg, "ghcr.io", "cytomine", opts...)
		return uc.ValidatePullRequest
	}

	t.Run("green run uploads report and deletes ephemeral package", func(t *testing.T) {
		engine := &fakeEngine{report: passingReport()}
		gh := &fakeGitHub{}
		store := &fakeArtifactStore{}
		runs := &fakeRunStore{}

		validate := newUC(engine, gh, store, usecase.WithRunStore(runs))
		gt.NoError(t, validate(ctx, "cytomine/pims", 421, "deadbeefcafe0123"))

		gt.A(t, engine.builds).Length(1)
		gt.Equal(t, engine.builds[0].Image.String(), "ghcr.io/cytomine/pims-ci:pr421-deadbee")
		gt.A(t, engine.pushes).Length(1)
		gt.Equal(t, engine.runCalls, 1)

		// Ephemeral package deleted, local image removed.
		gt.A(t, gh.deletedPackages).Length(1)
		gt.Equal(t, gh.deletedPackages[0], "pims-ci:pr421-deadbee")
		gt.A(t, engine.removals).Length(1)

		run := runs.lastRun()
		gt.Equal(t, run.Status, model.RunStatusSucceeded)
		gt.B(t, strings.HasPrefix(run.ArtifactURL, "gs://test-bucket/reports/")).True()
		gt.A(t, store.uploads[run.ID].Data).Length(len(passingReport().Data))
	})

	t.Run("failing test suite still uploads report and deletes package", func(t *testing.T) {
		engine := &fakeEngine{report: &model.TestReport{
			FileName: "test-report.xml",
			Data:     []byte(`<testsuite tests="12" failures="3"/>`),
			ExitCode: 1,
		}}
		gh := &fakeGitHub{}
		store := &fakeArtifactStore{}
		runs := &fakeRunStore{}

		validate := newUC(engine, gh, store, usecase.WithRunStore(runs))
		err := validate(ctx, "cytomine/pims", 7, "0123456789abcdef")

		gt.Error(t, err)
		gt.A(t, gh.deletedPackages).Length(1)
		gt.Equal(t, len(store.uploads), 1)
		gt.Equal(t, runs.lastRun().Status, model.RunStatusFailed)
	})

	t.Run("report upload failure still deletes package", func(t *testing.T) {
		engine := &fakeEngine{report: passingReport()}
		gh := &fakeGitHub{}
		store := &fakeArtifactStore{putErr: errors.New("bucket unavailable")}

		validate := newUC(engine, gh, store)
		gt.Error(t, validate(ctx, "cytomine/pims", 7, "0123456789abcdef"))
		gt.A(t, gh.deletedPackages).Length(1)
	})

	t.Run("test runner failure still deletes package", func(t *testing.T) {
		engine := &fakeEngine{runErr: errors.New("container died")}
		gh := &fakeGitHub{}
		store := &fakeArtifactStore{}

		validate := newUC(engine, gh, store)
		gt.Error(t, validate(ctx, "cytomine/pims", 7, "0123456789abcdef"))
		gt.A(t, gh.deletedPackages).Length(1)
		gt.Equal(t, len(store.uploads), 0)
	})

	t.Run("package deletion failure does not fail a green run", func(t *testing.T) {
		engine := &fakeEngine{report: passingReport()}
		gh := &fakeGitHub{deleteErr: errors.New("404 package not found")}
		store := &fakeArtifactStore{}

		validate := newUC(engine, gh, store)
		gt.NoError(t, validate(ctx, "cytomine/pims", 7, "0123456789abcdef"))
	})

	t.Run("build failure skips test run and registry cleanup", func(t *testing.T) {
		engine := &fakeEngine{buildErr: errors.New("dockerfile missing")}
		gh := &fakeGitHub{}
		store := &fakeArtifactStore{}

		validate := newUC(engine, gh, store)
		gt.Error(t, validate(ctx, "cytomine/pims", 7, "0123456789abcdef"))
		gt.Equal(t, engine.runCalls, 0)
		// Nothing was pushed, so there is nothing to delete.
		gt.A(t, gh.deletedPackages).Length(0)
	})
}
