package usecase_test

import (
	"context"

	"github.com/cytomine/stevedore/pkg/domain/model"
)

// fakeEngine records calls and replays configured results.
type fakeEngine struct {
	builds   []*model.BuildSpec
	pushes   []model.ImageRef
	removals []model.ImageRef

	buildErr error
	pushErr  error
	report   *model.TestReport
	runErr   error
	runCalls int
}

func (f *fakeEngine) BuildImage(ctx context.Context, spec *model.BuildSpec) error {
	f.builds = append(f.builds, spec)
	return f.buildErr
}

func (f *fakeEngine) PushImage(ctx context.Context, ref model.ImageRef) error {
	f.pushes = append(f.pushes, ref)
	return f.pushErr
}

func (f *fakeEngine) RunTests(ctx context.Context, ref model.ImageRef, cmd []string, reportFile string) (*model.TestReport, error) {
	f.runCalls++
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.report, nil
}

func (f *fakeEngine) RemoveImage(ctx context.Context, ref model.ImageRef) error {
	f.removals = append(f.removals, ref)
	return nil
}

// fakeGitHub records release and package operations.
type fakeGitHub struct {
	releases   []*model.ReleaseInfo
	releaseErr error

	deletedPackages []string // "<package>:<tag>"
	deleteErr       error
}

func (f *fakeGitHub) CreateRelease(ctx context.Context, info *model.ReleaseInfo) (string, error) {
	f.releases = append(f.releases, info)
	if f.releaseErr != nil {
		return "", f.releaseErr
	}
	return "https://github.com/" + info.Owner + "/" + info.Repo + "/releases/tag/" + info.TagName, nil
}

func (f *fakeGitHub) DeletePackageVersion(ctx context.Context, owner, packageName, tag string) error {
	f.deletedPackages = append(f.deletedPackages, packageName+":"+tag)
	return f.deleteErr
}

// fakeArtifactStore keeps uploaded reports in memory.
type fakeArtifactStore struct {
	uploads map[string]*model.TestReport
	putErr  error
}

func (f *fakeArtifactStore) PutReport(ctx context.Context, runID string, report *model.TestReport) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	if f.uploads == nil {
		f.uploads = map[string]*model.TestReport{}
	}
	f.uploads[runID] = report
	return "gs://test-bucket/" + report.ObjectName(runID), nil
}

// fakeRunStore collects every saved run revision.
type fakeRunStore struct {
	saved []model.PipelineRun
}

func (f *fakeRunStore) SaveRun(ctx context.Context, run *model.PipelineRun) error {
	f.saved = append(f.saved, *run)
	return nil
}

// lastRun returns the most recently saved run record.
func (f *fakeRunStore) lastRun() *model.PipelineRun {
	if len(f.saved) == 0 {
		return nil
	}
	return &f.saved[len(f.saved)-1]
}

// fakeNotifier collects notified runs.
type fakeNotifier struct {
	notified []model.PipelineRun
}

func (f *fakeNotifier) NotifyRun(ctx context.Context, run *model.PipelineRun) error {
	f.notified = append(f.notified, *run)
	return nil
}
