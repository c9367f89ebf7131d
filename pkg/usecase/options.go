package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

// deps holds the optional collaborators shared by all pipelines. Both are
// nil-safe: a run without a store or notifier still executes.
type deps struct {
	runStore interfaces.RunStore
	notifier interfaces.Notifier
}

// Option configures optional pipeline collaborators.
type Option func(*deps)

// WithRunStore enables persistence of pipeline run records.
func WithRunStore(store interfaces.RunStore) Option {
	return func(d *deps) {
		d.runStore = store
	}
}

// WithNotifier enables run-completion notifications.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(d *deps) {
		d.notifier = notifier
	}
}

func newDeps(opts []Option) deps {
	var d deps
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// recordStart persists the freshly created run record. Failures are logged,
// not propagated: bookkeeping never blocks a pipeline.
func (d *deps) recordStart(ctx context.Context, run *model.PipelineRun) {
	if d.runStore == nil {
		return
	}
	if err := d.runStore.SaveRun(ctx, run); err != nil {
		ctxlog.From(ctx).Warn("Failed to record pipeline run start",
			"run_id", run.ID, "error", err)
	}
}

// recordFinish marks the run terminated, persists it and notifies.
func (d *deps) recordFinish(ctx context.Context, run *model.PipelineRun, runErr error) {
	run.Finish(runErr)

	logger := ctxlog.From(ctx)
	if d.runStore != nil {
		if err := d.runStore.SaveRun(ctx, run); err != nil {
			logger.Warn("Failed to record pipeline run result",
				"run_id", run.ID, "error", err)
		}
	}
	if d.notifier != nil {
		if err := d.notifier.NotifyRun(ctx, run); err != nil {
			logger.Warn("Failed to send run notification",
				"run_id", run.ID, "error", err)
		}
	}
}
