package xocoro

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xocoro/coroutine"
	"github.com/hupe1980/xocoro/scheduler"
)

func TestGroup_RoundRobin(t *testing.T) {
	var trace []string
	step := func(name string, n int) coroutine.Func {
		return func(y *coroutine.Yielder) {
			for i := 0; i < n; i++ {
				trace = append(trace, name)
				y.Yield()
			}
		}
	}

	g := New()
	defer g.Close()
	for _, name := range []string{"A", "B", "C"} {
		_, err := g.Go(step(name, 2))
		require.NoError(t, err)
	}

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, trace)
	assert.Equal(t, 3, g.Sweeps())
}

func TestGroup_StopFromTask(t *testing.T) {
	g := New()
	defer g.Close()

	ticks := 0
	_, err := g.Go(func(y *coroutine.Yielder) {
		for {
			ticks++
			y.Yield()
		}
	})
	require.NoError(t, err)
	_, err = g.Go(func(y *coroutine.Yielder) {
		y.Yield()
		y.Yield()
		g.Stop()
	})
	require.NoError(t, err)

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 3, g.Sweeps())
}

func TestGroup_ExternalStopper(t *testing.T) {
	var flag scheduler.Flag
	g := New(func(o *Options) { o.Stop = &flag })
	defer g.Close()

	_, err := g.Go(func(y *coroutine.Yielder) {
		for {
			flag.Set()
			y.Yield()
		}
	})
	require.NoError(t, err)

	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, 1, g.Sweeps())
}

func TestGroup_Capacity(t *testing.T) {
	g := New(func(o *Options) { o.Capacity = 1 })
	defer g.Close()

	_, err := g.Go(func(*coroutine.Yielder) {})
	require.NoError(t, err)
	id, err := g.Go(func(*coroutine.Yielder) {})
	assert.ErrorIs(t, err, coroutine.ErrCapacityExceeded)
	assert.Equal(t, -1, id)
	assert.Equal(t, 1, g.Runtime().Count())
}

func TestRunSync(t *testing.T) {
	fns := make([]coroutine.Func, 12)
	done := 0
	for i := range fns {
		fns[i] = func(y *coroutine.Yielder) {
			y.Yield()
			done++
		}
	}
	require.NoError(t, RunSync(context.Background(), fns...))
	assert.Equal(t, 12, done)
}
