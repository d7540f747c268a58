package reconcile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/mac"
	"github.com/efgnet/wifisync/pkg/macfile"
	"github.com/efgnet/wifisync/pkg/notify"
	"github.com/efgnet/wifisync/pkg/reconcile"
	"github.com/efgnet/wifisync/pkg/task"
)

var (
	mac1 = mac.MustParse("11:22:33:44:55:66")
	mac2 = mac.MustParse("aa:bb:cc:dd:ee:ff")
)

func addRaw(id, comment, network, addr string) task.Raw {
	return task.Raw{
		ID:           id,
		Title:        "ADDMAC - " + comment + " - " + network,
		MACField:     addr,
		NetworkField: network,
		CommentField: comment,
	}
}

func delRaw(id, network, addr string) task.Raw {
	return task.Raw{
		ID:           id,
		Title:        "DELMAC - x - " + network,
		MACField:     addr,
		NetworkField: network,
	}
}

// fakeSource is an in-memory task.Source.
type fakeSource struct {
	open      []task.Raw
	completed []string
	listErr   error
	markErr   map[string]error
}

func (s *fakeSource) ListOpen(context.Context) ([]task.Raw, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.open, nil
}

func (s *fakeSource) MarkComplete(_ context.Context, id string) error {
	if err, ok := s.markErr[id]; ok {
		return err
	}
	s.completed = append(s.completed, id)
	return nil
}

// fakeController is an in-memory reconcile.FilterClient recording SetFilter
// calls.
type fakeController struct {
	filters  map[string][]mac.Address
	setCalls []setCall
	getErr   error
	setErr   error
}

type setCall struct {
	network string
	members []mac.Address
}

func newFakeController() *fakeController {
	return &fakeController{filters: make(map[string][]mac.Address)}
}

func (c *fakeController) Filter(_ context.Context, network string) ([]mac.Address, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.filters[network], nil
}

func (c *fakeController) SetFilter(_ context.Context, network string, members []mac.Address) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.setCalls = append(c.setCalls, setCall{network: network, members: members})
	c.filters[network] = members
	return nil
}

// failingMirror always fails to flush.
type failingMirror struct{}

func (failingMirror) Add(macfile.Entry) bool          { return true }
func (failingMirror) Remove(mac.Address, string) bool { return true }
func (failingMirror) Flush() error {
	return pkgerrors.NewMirrorWriteError("mirror", pkgerrors.New("disk full"))
}

// recordingNotifier captures the summary notification.
type recordingNotifier struct {
	severity notify.Severity
	message  string
	calls    int
	err      error
}

func (n *recordingNotifier) Send(_ context.Context, severity notify.Severity, message string) error {
	n.calls++
	n.severity = severity
	n.message = message
	return n.err
}

func TestAddTaskAgainstEmptyFilter(t *testing.T) {
	source := &fakeSource{open: []task.Raw{addRaw("t1", "Jane Doe", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()
	notifier := &recordingNotifier{}

	engine, err := reconcile.New(source, controller, reconcile.WithNotifier(notifier))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, controller.setCalls, 1, "setFilter must be invoked exactly once")
	assert.Equal(t, "Guest-WiFi", controller.setCalls[0].network)
	assert.Equal(t, []mac.Address{mac1}, controller.setCalls[0].members)

	assert.Equal(t, []string{"t1"}, source.completed)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, 1, result.Completed())

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, notify.Info, notifier.severity)
}

func TestDeleteTaskRemovesLastMember(t *testing.T) {
	source := &fakeSource{open: []task.Raw{delRaw("t1", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()
	controller.filters["Guest-WiFi"] = []mac.Address{mac1}

	engine, err := reconcile.New(source, controller)
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	require.Len(t, controller.setCalls, 1)
	assert.Empty(t, controller.setCalls[0].members, "filter must end up empty")
	assert.Equal(t, []string{"t1"}, source.completed)
}

func TestMalformedTaskDoesNotAbortBatch(t *testing.T) {
	source := &fakeSource{open: []task.Raw{
		addRaw("good-1", "a", "Guest-WiFi", "11:22:33:44:55:66"),
		{ID: "bad", Title: "no token here", MACField: "x", NetworkField: "y"},
		addRaw("good-2", "b", "Guest-WiFi", "aa:bb:cc:dd:ee:ff"),
	}}
	controller := newFakeController()

	engine, err := reconcile.New(source, controller)
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Completed())
	assert.Equal(t, 1, result.Failed())
	assert.Equal(t, map[reconcile.Stage]int{reconcile.StageDecode: 1}, result.FailedByStage())

	assert.ElementsMatch(t, []string{"good-1", "good-2"}, source.completed)
	assert.NotContains(t, source.completed, "bad", "failed task must stay open")

	var failed reconcile.Outcome
	for _, o := range result.Outcomes {
		if o.TaskID == "bad" {
			failed = o
		}
	}
	assert.True(t, pkgerrors.IsMalformedTask(failed.Err))
}

func TestControllerFailureLeavesTaskOpen(t *testing.T) {
	source := &fakeSource{open: []task.Raw{addRaw("t1", "a", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()
	controller.setErr = pkgerrors.NewControllerError("set filter", "Guest-WiFi", 502, "bad gateway", nil)
	notifier := &recordingNotifier{}

	engine, err := reconcile.New(source, controller, reconcile.WithNotifier(notifier))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed())
	assert.Empty(t, source.completed, "task must not be marked complete after controller failure")
	assert.Equal(t, notify.Error, notifier.severity)
	assert.Contains(t, notifier.message, "t1")
}

func TestMirrorFailureDoesNotGateCompletion(t *testing.T) {
	source := &fakeSource{open: []task.Raw{addRaw("t1", "a", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()

	engine, err := reconcile.New(source, controller, reconcile.WithMirror(failingMirror{}))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.IsSuccess(), "mirror failure must not fail the task")
	assert.Equal(t, []string{"t1"}, source.completed)
	assert.Equal(t, 1, result.MirrorFailures())
}

func TestMarkCompleteFailure(t *testing.T) {
	source := &fakeSource{
		open:    []task.Raw{addRaw("t1", "a", "Guest-WiFi", "11:22:33:44:55:66")},
		markErr: map[string]error{"t1": pkgerrors.New("412 precondition failed")},
	}
	controller := newFakeController()

	engine, err := reconcile.New(source, controller)
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, result.Failed())
	outcome := result.Outcomes[0]
	assert.Equal(t, reconcile.StageMark, outcome.Stage)
	assert.True(t, pkgerrors.IsTaskCompletionError(outcome.Err))
	assert.True(t, outcome.Changed, "controller mutation happened before the mark failed")
}

func TestReplayOfAppliedTaskSkipsControllerPush(t *testing.T) {
	// The MAC is already present: this models re-processing a task whose
	// completion write failed on the previous run.
	source := &fakeSource{open: []task.Raw{addRaw("t1", "a", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()
	controller.filters["Guest-WiFi"] = []mac.Address{mac1}

	engine, err := reconcile.New(source, controller)
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, controller.setCalls, "unchanged membership must not be pushed")
	assert.Equal(t, []string{"t1"}, source.completed, "replayed task still gets marked complete")
	assert.False(t, result.Outcomes[0].Changed)
}

func TestDeleteAbsentMACIsNoop(t *testing.T) {
	source := &fakeSource{open: []task.Raw{delRaw("t1", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()
	controller.filters["Guest-WiFi"] = []mac.Address{mac2}

	engine, err := reconcile.New(source, controller)
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.IsSuccess())
	assert.Empty(t, controller.setCalls)
	assert.Equal(t, []mac.Address{mac2}, controller.filters["Guest-WiFi"])
}

func TestMirrorUpdatedAlongsideController(t *testing.T) {
	dir := t.TempDir()
	mirror, err := macfile.Load(dir + "/mac_addresses.txt")
	require.NoError(t, err)

	source := &fakeSource{open: []task.Raw{addRaw("t1", "Jane Doe", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()

	engine, err := reconcile.New(source, controller, reconcile.WithMirror(mirror))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	reloaded, err := macfile.Load(dir + "/mac_addresses.txt")
	require.NoError(t, err)
	require.Len(t, reloaded.Entries(), 1)
	assert.Equal(t, "Jane Doe", reloaded.Entries()[0].Comment)
	assert.Equal(t, "Guest-WiFi", reloaded.Entries()[0].Network)
}

func TestEmptyBatchProducesZeroMutations(t *testing.T) {
	source := &fakeSource{}
	controller := newFakeController()
	notifier := &recordingNotifier{}

	engine, err := reconcile.New(source, controller, reconcile.WithNotifier(notifier))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, controller.setCalls)
	assert.Empty(t, result.Outcomes)
	assert.Equal(t, "No open WiFi MAC tasks found.", notifier.message)
}

func TestListFailureAbortsRun(t *testing.T) {
	source := &fakeSource{listErr: pkgerrors.New("graph api unreachable")}
	controller := newFakeController()

	engine, err := reconcile.New(source, controller)
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	assert.Error(t, err)
}

func TestNotifierFailureDoesNotAffectResult(t *testing.T) {
	source := &fakeSource{open: []task.Raw{addRaw("t1", "a", "Guest-WiFi", "11:22:33:44:55:66")}}
	controller := newFakeController()
	notifier := &recordingNotifier{err: pkgerrors.New("webhook down")}

	engine, err := reconcile.New(source, controller, reconcile.WithNotifier(notifier))
	require.NoError(t, err)

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
}

func TestNewValidation(t *testing.T) {
	controller := newFakeController()
	_, err := reconcile.New(nil, controller)
	assert.Error(t, err)

	_, err = reconcile.New(&fakeSource{}, nil)
	assert.Error(t, err)
}
