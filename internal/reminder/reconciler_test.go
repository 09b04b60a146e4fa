package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"teamtodo-backend/internal/task/domain"
	"teamtodo-backend/pkg/localnotify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type fakeScheduler struct {
	mu           sync.Mutex
	pending      map[string]localnotify.Notification
	calls        []string
	failIDs      map[string]bool
	pendingErr   error
	pendingCalls int
	onPending    func()
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: map[string]localnotify.Notification{}, failIDs: map[string]bool{}}
}

func (f *fakeScheduler) Schedule(ctx context.Context, n localnotify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "schedule:"+n.ID)
	if f.failIDs[n.ID] {
		return errors.New("permission denied")
	}
	f.pending[n.ID] = n
	return nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.calls = append(f.calls, "cancel:"+id)
		if f.failIDs[id] {
			return errors.New("cancel failed")
		}
		delete(f.pending, id)
	}
	return nil
}

func (f *fakeScheduler) Pending(ctx context.Context) ([]localnotify.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingCalls++
	if f.onPending != nil {
		f.onPending()
	}
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	out := make([]localnotify.Notification, 0, len(f.pending))
	for _, n := range f.pending {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeScheduler) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.pending))
	for id := range f.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func newReconciler(s Scheduler, locale string) *Reconciler {
	p := DefaultPolicy()
	p.Location = time.UTC
	r := NewReconciler(s, p, locale)
	r.now = func() time.Time { return now }
	return r
}

func dueTask(id string, due time.Time) *domain.Task {
	return &domain.Task{
		ID:         id,
		ProjectID:  "p1",
		Title:      "Task " + id,
		DueDate:    domain.DueAt(due),
		AssignedTo: domain.AssignedTo("u1"),
	}
}

func TestReconcile_SchedulesEligibleTasks(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")

	res, err := r.Reconcile(context.Background(), []*domain.Task{
		dueTask("a", now.Add(24*time.Hour)),
		dueTask("b", now.Add(2*time.Hour)), // trigger already passed
		{ID: "c", ProjectID: "p1", Title: "no due date"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Scheduled)
	assert.Equal(t, []string{"task-a"}, s.ids())

	n := s.pending["task-a"]
	assert.True(t, n.TriggerAt.Equal(now.Add(18*time.Hour)))
	assert.Equal(t, "Task due soon", n.Title)
	assert.Equal(t, "Task a (due Jun 11 09:00)", n.Body)
}

func TestReconcile_JapaneseContent(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "ja")

	_, err := r.Reconcile(context.Background(), []*domain.Task{dueTask("a", now.Add(24*time.Hour))})

	require.NoError(t, err)
	assert.Equal(t, "タスクの期限が迫っています", s.pending["task-a"].Title)
	assert.Equal(t, "Task a (期限: 2025/06/11 09:00)", s.pending["task-a"].Body)
}

func TestReconcile_Idempotent(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")
	tasks := []*domain.Task{dueTask("a", now.Add(24*time.Hour)), dueTask("b", now.Add(30*time.Hour))}

	_, err := r.Reconcile(context.Background(), tasks)
	require.NoError(t, err)
	s.calls = nil

	res, err := r.Reconcile(context.Background(), tasks)
	require.NoError(t, err)
	assert.Empty(t, s.calls)
	assert.Equal(t, 2, res.Unchanged)
	assert.Equal(t, 0, res.Operations())
}

func TestReconcile_ChangedContentIsCancelledThenScheduled(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")
	task := dueTask("a", now.Add(24*time.Hour))

	_, err := r.Reconcile(context.Background(), []*domain.Task{task})
	require.NoError(t, err)
	s.calls = nil

	renamed := dueTask("a", now.Add(24*time.Hour))
	renamed.Title = "Renamed"
	res, err := r.Reconcile(context.Background(), []*domain.Task{renamed})

	require.NoError(t, err)
	assert.Equal(t, []string{"cancel:task-a", "schedule:task-a"}, s.calls)
	assert.Equal(t, 1, res.Rescheduled)
	assert.Equal(t, "Renamed (due Jun 11 09:00)", s.pending["task-a"].Body)
}

func TestReconcile_CompletingCancelsOnlyThatReminder(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")
	a, b := dueTask("a", now.Add(24*time.Hour)), dueTask("b", now.Add(30*time.Hour))

	_, err := r.Reconcile(context.Background(), []*domain.Task{a, b})
	require.NoError(t, err)
	s.calls = nil

	completed := dueTask("a", now.Add(24*time.Hour))
	completed.IsCompleted = true
	res, err := r.Reconcile(context.Background(), []*domain.Task{completed, b})

	require.NoError(t, err)
	assert.Equal(t, []string{"cancel:task-a"}, s.calls)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, []string{"task-b"}, s.ids())
}

func TestReconcile_DueDateClearedOrDeleted(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")

	_, err := r.Reconcile(context.Background(), []*domain.Task{
		dueTask("a", now.Add(24*time.Hour)),
		dueTask("b", now.Add(24*time.Hour)),
	})
	require.NoError(t, err)

	cleared := &domain.Task{ID: "a", ProjectID: "p1", Title: "Task a", DueDate: domain.NoDueDate()}
	res, err := r.Reconcile(context.Background(), []*domain.Task{cleared})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Cancelled)
	assert.Empty(t, s.ids())
}

func TestReconcile_DeletingTaskWithoutDueDateTouchesNothing(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")
	noDue := &domain.Task{ID: "a", ProjectID: "p1", Title: "Task a"}

	_, err := r.Reconcile(context.Background(), []*domain.Task{noDue})
	require.NoError(t, err)
	_, err = r.Reconcile(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, s.calls)
}

func TestReconcile_LeavesForeignEntries(t *testing.T) {
	s := newFakeScheduler()
	s.pending["daily-digest"] = localnotify.Notification{ID: "daily-digest", TriggerAt: now.Add(time.Hour)}
	s.pending["task-gone"] = localnotify.Notification{ID: "task-gone", TriggerAt: now.Add(time.Hour)}
	r := newReconciler(s, "en")

	res, err := r.Reconcile(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, []string{"daily-digest"}, s.ids())
}

func TestReconcile_SkipsInvalidTasks(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")
	invalid := dueTask("a", now.Add(24*time.Hour))
	invalid.Title = ""

	res, err := r.Reconcile(context.Background(), []*domain.Task{invalid, nil})

	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, s.calls)
}

func TestReconcile_FailuresDoNotStopThePass(t *testing.T) {
	s := newFakeScheduler()
	s.failIDs["task-a"] = true
	s.pending["task-old"] = localnotify.Notification{ID: "task-old", TriggerAt: now.Add(time.Hour)}
	r := newReconciler(s, "en")

	res, err := r.Reconcile(context.Background(), []*domain.Task{
		dueTask("a", now.Add(24*time.Hour)),
		dueTask("b", now.Add(24*time.Hour)),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Scheduled)
	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, []string{"task-b"}, s.ids())
}

func TestReconcile_UnassignedTaskGetsNoReminder(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")

	_, err := r.Reconcile(context.Background(), []*domain.Task{dueTask("a", now.Add(24*time.Hour))})
	require.NoError(t, err)

	unassigned := dueTask("a", now.Add(24*time.Hour))
	unassigned.AssignedTo = domain.Unassigned()
	orphan := dueTask("b", now.Add(10*time.Hour))
	orphan.AssignedTo = domain.Unassigned()
	res, err := r.Reconcile(context.Background(), []*domain.Task{unassigned, orphan})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Scheduled)
	assert.Equal(t, 1, res.Cancelled)
	assert.Empty(t, s.ids())
}

func TestReconcile_EntryFiredDuringPassIsNotRescheduled(t *testing.T) {
	s := newFakeScheduler()
	r := newReconciler(s, "en")
	clock := now
	r.now = func() time.Time { return clock }
	task := dueTask("a", now.Add(6*time.Hour+time.Minute))

	_, err := r.Reconcile(context.Background(), []*domain.Task{task})
	require.NoError(t, err)
	require.Equal(t, []string{"task-a"}, s.ids())
	s.calls = nil

	// the dispatcher takes the entry while the pending set is being read
	s.onPending = func() {
		delete(s.pending, "task-a")
		clock = now.Add(2 * time.Minute)
	}
	res, err := r.Reconcile(context.Background(), []*domain.Task{task})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Scheduled)
	assert.Empty(t, s.calls)
	assert.Empty(t, s.ids())
}

func TestReconcile_PendingError(t *testing.T) {
	s := newFakeScheduler()
	s.pendingErr = errors.New("unavailable")
	r := newReconciler(s, "en")

	_, err := r.Reconcile(context.Background(), []*domain.Task{dueTask("a", now.Add(24*time.Hour))})

	assert.Error(t, err)
	assert.Empty(t, s.calls)
}

func TestReconcile_EligibilityProperty(t *testing.T) {
	r := newReconciler(newFakeScheduler(), "en")

	tests := []struct {
		name     string
		task     *domain.Task
		eligible bool
	}{
		{name: "due in 2h, lead 6h", task: dueTask("a", now.Add(2*time.Hour)), eligible: false},
		{name: "trigger exactly now", task: dueTask("a", now.Add(6*time.Hour)), eligible: false},
		{name: "trigger one minute ahead", task: dueTask("a", now.Add(6*time.Hour+time.Minute)), eligible: true},
		{name: "past due", task: dueTask("a", now.Add(-time.Hour)), eligible: false},
		{name: "completed", task: func() *domain.Task {
			t := dueTask("a", now.Add(48*time.Hour))
			t.IsCompleted = true
			return t
		}(), eligible: false},
		{name: "no due date", task: &domain.Task{ID: "a", ProjectID: "p1", Title: "x", AssignedTo: domain.AssignedTo("u1")}, eligible: false},
		{name: "unassigned", task: func() *domain.Task {
			t := dueTask("a", now.Add(48*time.Hour))
			t.AssignedTo = domain.Unassigned()
			return t
		}(), eligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := r.Desired(tt.task, now)
			assert.Equal(t, tt.eligible, ok)
		})
	}
}

func TestTaskIDFromIdentifier(t *testing.T) {
	id, ok := TaskIDFromIdentifier(Identifier("abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = TaskIDFromIdentifier("task-")
	assert.False(t, ok)
	_, ok = TaskIDFromIdentifier("other-abc")
	assert.False(t, ok)
}

func TestRunner_RunOnceAndCoalescing(t *testing.T) {
	s := newFakeScheduler()
	runner := NewRunner(newReconciler(s, "en"), 0)

	res, err := runner.RunOnce(context.Background(), []*domain.Task{dueTask("a", now.Add(24*time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Scheduled)

	runner.Submit([]*domain.Task{dueTask("a", now.Add(24*time.Hour))})
	runner.Submit([]*domain.Task{dueTask("b", now.Add(24*time.Hour))})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		ids := s.ids()
		return len(ids) == 1 && ids[0] == "task-b"
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	// one pass for RunOnce, one for both submits
	assert.Equal(t, 2, s.pendingCalls)
}

func TestRunner_RunOnceWhileRunning(t *testing.T) {
	s := newFakeScheduler()
	runner := NewRunner(newReconciler(s, "en"), 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	runner.Submit(nil)
	finished := make(chan error, 1)
	go func() {
		_, err := runner.RunOnce(context.Background(), []*domain.Task{dueTask("a", now.Add(24*time.Hour))})
		finished <- err
	}()

	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunOnce blocked while Run was active")
	}
	assert.Equal(t, []string{"task-a"}, s.ids())
}

func TestRunner_NoSnapshotNoPass(t *testing.T) {
	s := newFakeScheduler()
	s.pending["task-a"] = localnotify.Notification{ID: "task-a", TriggerAt: now.Add(time.Hour)}
	runner := NewRunner(newReconciler(s, "en"), 0)

	res, err := runner.reconcileLatest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, s.calls)
}
