package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/efgnet/wifisync/pkg/task"
)

// Stage identifies where in the per-task pipeline a failure occurred.
type Stage string

const (
	// StageDecode means the task fields did not decode.
	StageDecode Stage = "decode"
	// StageController means the controller-side mutation failed.
	StageController Stage = "controller"
	// StageMark means the completion write on the task source failed.
	StageMark Stage = "mark"
)

// Outcome is the terminal result of one task within a run. A task with a
// non-nil Err failed at Stage and remains open on the task board; it is
// retried on the next run. MirrorErr is informational only: a mirror write
// failure never fails the task.
type Outcome struct {
	TaskID    string
	Task      *task.Task // nil when decoding failed
	Stage     Stage
	Err       error
	Changed   bool // whether the controller membership actually changed
	MirrorErr error
}

// Completed reports whether the task reached the completed state.
func (o Outcome) Completed() bool {
	return o.Err == nil
}

// Result is the aggregate of one batch run.
type Result struct {
	Outcomes []Outcome

	// StartTime when the run started
	StartTime time.Time
	// Duration of the run
	Duration time.Duration
}

func newResult() *Result {
	return &Result{StartTime: time.Now()}
}

func (r *Result) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Result) finish() {
	r.Duration = time.Since(r.StartTime)
}

// Completed returns the number of tasks that reached completion.
func (r *Result) Completed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Completed() {
			n++
		}
	}
	return n
}

// Failed returns the number of tasks that failed and stayed open.
func (r *Result) Failed() int {
	return len(r.Outcomes) - r.Completed()
}

// FailedByStage returns the failure count per pipeline stage.
func (r *Result) FailedByStage() map[Stage]int {
	counts := make(map[Stage]int)
	for _, o := range r.Outcomes {
		if o.Err != nil {
			counts[o.Stage]++
		}
	}
	return counts
}

// MirrorFailures returns the number of completed tasks whose mirror write
// failed.
func (r *Result) MirrorFailures() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.MirrorErr != nil {
			n++
		}
	}
	return n
}

// IsSuccess reports whether the run finished with zero failed tasks.
func (r *Result) IsSuccess() bool {
	return r.Failed() == 0
}

// Summary renders a short operator-facing report: aggregate counts plus one
// line per failed task.
func (r *Result) Summary() string {
	if len(r.Outcomes) == 0 {
		return "No open WiFi MAC tasks found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d WiFi MAC tasks: %d completed, %d failed.",
		len(r.Outcomes), r.Completed(), r.Failed())
	if n := r.MirrorFailures(); n > 0 {
		fmt.Fprintf(&b, " %d mirror write(s) failed.", n)
	}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(&b, "\ntask %s failed (%s): %v", o.TaskID, o.Stage, o.Err)
		}
	}
	return b.String()
}
