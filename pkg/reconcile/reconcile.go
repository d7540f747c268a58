// Package reconcile drives open change-request tasks through the MAC
// filter pipeline: decode the task, mutate the controller's SSID-scoped
// filter, update the mirror file, and mark the task complete.
//
// Each task is processed independently; a malformed or failing task is
// recorded in the run result and left open for the next run, it never
// aborts the batch. All mutations are idempotent, so a task whose side
// effects already happened (for example after a failed completion write)
// converges on replay instead of double-applying.
package reconcile

import (
	"context"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/filter"
	"github.com/efgnet/wifisync/pkg/logging"
	"github.com/efgnet/wifisync/pkg/mac"
	"github.com/efgnet/wifisync/pkg/macfile"
	"github.com/efgnet/wifisync/pkg/notify"
	"github.com/efgnet/wifisync/pkg/task"
)

// FilterClient is the controller-side filter transport. The controller's
// native operation is a full-list replace, so SetFilter always receives the
// complete membership, never a delta.
type FilterClient interface {
	// Filter returns the current filter membership for one network.
	Filter(ctx context.Context, network string) ([]mac.Address, error)
	// SetFilter overwrites the filter membership for one network.
	SetFilter(ctx context.Context, network string, members []mac.Address) error
}

// Mirror is the best-effort local shadow of filter contents. A nil Mirror
// disables mirroring.
type Mirror interface {
	Add(e macfile.Entry) bool
	Remove(addr mac.Address, network string) bool
	Flush() error
}

// Engine reconciles open tasks against the controller and the mirror file.
type Engine struct {
	source     task.Source
	controller FilterClient
	mirror     Mirror
	notifier   notify.Notifier
}

// New creates an Engine for the given task source and controller transport.
func New(source task.Source, controller FilterClient, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, errors.New("reconcile: task source is required")
	}
	if controller == nil {
		return nil, errors.New("reconcile: filter client is required")
	}

	e := &Engine{
		source:     source,
		controller: controller,
		notifier:   notify.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run fetches all open tasks and processes them one at a time in fetch
// order. It returns an error only when the open-task list itself cannot be
// fetched; per-task failures are recorded in the Result.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	log := logging.FromContext(ctx)

	raws, err := e.source.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Int("open_tasks", len(raws)).Msg("fetched open tasks")

	result := newResult()
	for _, raw := range raws {
		outcome := e.processTask(ctx, raw)
		result.record(outcome)

		if outcome.Err != nil {
			log.Error().
				Str("task_id", outcome.TaskID).
				Str("stage", string(outcome.Stage)).
				Err(outcome.Err).
				Msg("task failed, left open for next run")
		} else {
			log.Info().
				Str("task_id", outcome.TaskID).
				Bool("changed", outcome.Changed).
				Msg("task completed")
		}
	}
	result.finish()

	e.notifySummary(ctx, result)
	return result, nil
}

// processTask drives one task through decode → controller → mirror → mark.
func (e *Engine) processTask(ctx context.Context, raw task.Raw) Outcome {
	t, err := task.Decode(raw)
	if err != nil {
		return Outcome{TaskID: raw.ID, Stage: StageDecode, Err: err}
	}

	changed, err := e.applyController(ctx, t)
	if err != nil {
		return Outcome{TaskID: t.ID, Task: t, Stage: StageController, Err: err}
	}

	// Mirror writes are best-effort: the controller is the source of
	// truth, so a failure here is reported but never blocks completion.
	mirrorErr := e.applyMirror(ctx, t)

	if err := e.source.MarkComplete(ctx, t.ID); err != nil {
		return Outcome{
			TaskID:    t.ID,
			Task:      t,
			Stage:     StageMark,
			Err:       errors.NewTaskCompletionError(t.ID, err),
			Changed:   changed,
			MirrorErr: mirrorErr,
		}
	}

	return Outcome{TaskID: t.ID, Task: t, Changed: changed, MirrorErr: mirrorErr}
}

// applyController mutates the SSID-scoped filter and pushes the full
// updated membership. An already-applied mutation (replay of a task whose
// completion write failed last run) changes nothing and skips the push.
func (e *Engine) applyController(ctx context.Context, t *task.Task) (bool, error) {
	members, err := e.controller.Filter(ctx, t.Network)
	if err != nil {
		return false, err
	}

	set := filter.FromMembers(t.Network, members)
	var changed bool
	switch t.Kind {
	case task.Add:
		changed = set.Add(t.Addr)
	case task.Delete:
		changed = set.Remove(t.Addr)
	}

	if !changed {
		logging.FromContext(ctx).Debug().
			Str("task_id", t.ID).
			Str("mac", t.Addr.String()).
			Str("network", t.Network).
			Msg("filter membership already up to date")
		return false, nil
	}

	if err := e.controller.SetFilter(ctx, t.Network, set.Members()); err != nil {
		return false, err
	}
	return true, nil
}

// applyMirror applies the task's mutation to the mirror file, if mirroring
// is enabled. The flush happens per mutating task so an interrupted batch
// leaves the mirror consistent with the controller up to the last task.
func (e *Engine) applyMirror(ctx context.Context, t *task.Task) error {
	if e.mirror == nil {
		return nil
	}

	switch t.Kind {
	case task.Add:
		e.mirror.Add(macfile.Entry{Addr: t.Addr, Network: t.Network, Comment: t.Comment})
	case task.Delete:
		e.mirror.Remove(t.Addr, t.Network)
	}

	if err := e.mirror.Flush(); err != nil {
		logging.FromContext(ctx).Warn().
			Str("task_id", t.ID).
			Err(err).
			Msg("mirror update failed, continuing")
		return err
	}
	return nil
}

// notifySummary forwards the run summary to the notification sink. A
// delivery failure is logged and otherwise ignored.
func (e *Engine) notifySummary(ctx context.Context, result *Result) {
	severity := notify.Info
	if result.Failed() > 0 {
		severity = notify.Error
	}
	if err := e.notifier.Send(ctx, severity, result.Summary()); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("summary notification failed")
	}
}
