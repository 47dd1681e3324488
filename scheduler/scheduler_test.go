package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xocoro/coroutine"
)

// recorder collects the order in which task bodies run.
type recorder struct{ trace []string }

func (r *recorder) yieldOnce(name string) coroutine.Func {
	return func(y *coroutine.Yielder) {
		r.trace = append(r.trace, name)
		y.Yield()
		r.trace = append(r.trace, name)
	}
}

func (r *recorder) forever(name string) coroutine.Func {
	return func(y *coroutine.Yielder) {
		for {
			r.trace = append(r.trace, name)
			y.Yield()
		}
	}
}

func newRuntime(t *testing.T, bodies ...coroutine.Func) (*coroutine.Runtime, []int) {
	t.Helper()
	rt := coroutine.New()
	t.Cleanup(rt.Close)
	ids := make([]int, 0, len(bodies))
	for _, b := range bodies {
		id, err := rt.Create(b)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return rt, ids
}

func TestRun_SchedulingOrder(t *testing.T) {
	rec := &recorder{}
	rt, ids := newRuntime(t, rec.yieldOnce("A"), rec.yieldOnce("B"), rec.yieldOnce("C"))

	s := New(rt)
	s.Add(ids...)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, rec.trace)
	assert.Equal(t, 2, s.Sweeps())
	for _, id := range ids {
		assert.False(t, rt.IsActive(id))
	}
}

func TestSweep_SkipsInactiveTasks(t *testing.T) {
	rec := &recorder{}
	rt, ids := newRuntime(t,
		func(*coroutine.Yielder) { rec.trace = append(rec.trace, "done") },
		rec.forever("B"),
	)
	s := New(rt)
	s.Add(ids...)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"done", "B", "B"}, rec.trace)
}

func TestRun_StopAtSweepBoundary(t *testing.T) {
	var flag Flag
	rec := &recorder{}
	resumes := map[int]int{}

	rt, ids := newRuntime(t,
		rec.forever("A"),
		rec.forever("B"),
		func(*coroutine.Yielder) {
			rec.trace = append(rec.trace, "C")
			flag.Set()
		},
	)

	cbs := NewCallbackManager()
	cbs.RegisterCallback(NewFunctionCallback(CallbackAfterResume, func(_ context.Context, c *CallbackContext) error {
		resumes[c.TaskID]++
		return nil
	}))

	s := New(rt, func(o *Options) {
		o.Stop = &flag
		o.Callbacks = cbs
	})
	s.Add(ids...)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"A", "B", "C"}, rec.trace)
	assert.Equal(t, 1, s.Sweeps())
	assert.False(t, rt.IsActive(ids[2]))
	assert.True(t, rt.IsActive(ids[0]))
	assert.True(t, rt.IsActive(ids[1]))
	assert.Equal(t, map[int]int{ids[0]: 1, ids[1]: 1, ids[2]: 1}, resumes)
}

func TestRun_StopAtSweepBoundary_FinishesSweep(t *testing.T) {
	var flag Flag
	rec := &recorder{}
	rt, ids := newRuntime(t,
		rec.forever("A"),
		func(y *coroutine.Yielder) {
			rec.trace = append(rec.trace, "B")
			flag.Set()
			y.Yield()
		},
		rec.forever("C"),
	)

	s := New(rt, func(o *Options) { o.Stop = &flag })
	s.Add(ids...)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"A", "B", "C"}, rec.trace, "C still gets its turn in the same sweep")
}

func TestRun_StopImmediately(t *testing.T) {
	var flag Flag
	rec := &recorder{}
	rt, ids := newRuntime(t,
		rec.forever("A"),
		func(y *coroutine.Yielder) {
			rec.trace = append(rec.trace, "B")
			flag.Set()
			y.Yield()
		},
		rec.forever("C"),
	)

	s := New(rt, func(o *Options) {
		o.Stop = &flag
		o.Policy = StopImmediately
	})
	s.Add(ids...)
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"A", "B"}, rec.trace)
	st, err := rt.Status(ids[2])
	require.NoError(t, err)
	assert.Equal(t, coroutine.StatusReady, st)
}

func TestRun_StopsWhenNothingIsActive(t *testing.T) {
	rt, ids := newRuntime(t, func(*coroutine.Yielder) {})
	s := New(rt)
	s.Add(ids...)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, s.Sweeps())
}

func TestRun_MaxSweeps(t *testing.T) {
	rec := &recorder{}
	rt, ids := newRuntime(t, rec.forever("A"))
	s := New(rt, func(o *Options) { o.MaxSweeps = 4 })
	s.Add(ids...)

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, rec.trace, 4)
}

func TestRun_ContextCancelled(t *testing.T) {
	rec := &recorder{}
	rt, ids := newRuntime(t, rec.forever("A"))

	ctx, cancel := context.WithCancel(context.Background())
	cbs := NewCallbackManager()
	cbs.RegisterCallback(NewFunctionCallback(CallbackOnSweep, func(_ context.Context, c *CallbackContext) error {
		if c.Sweep == 3 {
			cancel()
		}
		return nil
	}))

	s := New(rt, func(o *Options) { o.Callbacks = cbs })
	s.Add(ids...)

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, s.Sweeps())
}

func TestRun_IntervalRespectsCancellation(t *testing.T) {
	rec := &recorder{}
	rt, ids := newRuntime(t, rec.forever("A"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := New(rt, func(o *Options) { o.Interval = time.Hour })
	s.Add(ids...)

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"A"}, rec.trace)
}

func TestRun_CallbackErrorAborts(t *testing.T) {
	rec := &recorder{}
	rt, ids := newRuntime(t, rec.forever("A"), rec.forever("B"))
	boom := errors.New("boom")

	cbs := NewCallbackManager()
	cbs.RegisterCallback(NewFunctionCallback(CallbackBeforeResume, func(_ context.Context, c *CallbackContext) error {
		if c.TaskID == ids[1] {
			return boom
		}
		return nil
	}))

	s := New(rt, func(o *Options) { o.Callbacks = cbs })
	s.Add(ids...)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A"}, rec.trace)
}

func TestLoggingCallback(t *testing.T) {
	var lines []string
	cbs := NewCallbackManager()
	cbs.RegisterCallback(NewLoggingCallback(CallbackOnSweep, func(m string) { lines = append(lines, m) }))

	rec := &recorder{}
	rt, ids := newRuntime(t, rec.yieldOnce("A"))
	s := New(rt, func(o *Options) { o.Callbacks = cbs })
	s.Add(ids...)
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[on_sweep] sweep=1"))
}

type mockRuntime struct{ mock.Mock }

func (m *mockRuntime) IsActive(id int) bool { return m.Called(id).Bool(0) }
func (m *mockRuntime) Resume(id int) error  { return m.Called(id).Error(0) }

func TestSweep_ResumeErrorsAreNotEscalated(t *testing.T) {
	rt := &mockRuntime{}
	rt.On("IsActive", 0).Return(true)
	rt.On("IsActive", 1).Return(true)
	rt.On("Resume", 0).Return(coroutine.ErrInvalidOrInactiveTask)
	rt.On("Resume", 1).Return(nil)

	s := New(rt)
	s.Add(0, 1)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	rt.AssertExpectations(t)
}

func TestTasksReturnsCopy(t *testing.T) {
	s := New(&mockRuntime{})
	s.Add(0, 1, 2)
	ids := s.Tasks()
	ids[0] = 9
	assert.Equal(t, []int{0, 1, 2}, s.Tasks())
}

func TestParseStopPolicy(t *testing.T) {
	p, err := ParseStopPolicy("Immediate")
	require.NoError(t, err)
	assert.Equal(t, StopImmediately, p)

	p, err = ParseStopPolicy("")
	require.NoError(t, err)
	assert.Equal(t, StopAtSweepBoundary, p)
	assert.Equal(t, "sweep", p.String())

	_, err = ParseStopPolicy("later")
	assert.Error(t, err)
}

func TestFlagAndStopFunc(t *testing.T) {
	var f Flag
	assert.False(t, f.Stopped())
	f.Set()
	assert.True(t, f.Stopped())
	f.Clear()
	assert.False(t, f.Stopped())

	calls := 0
	var s Stopper = StopFunc(func() bool { calls++; return calls > 1 })
	assert.False(t, s.Stopped())
	assert.True(t, s.Stopped())
}
