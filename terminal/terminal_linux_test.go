//go:build linux

package terminal

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboardPoll(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	kb := NewKeyboard(int(r.Fd()))

	_, ok, err := kb.Poll(5 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = w.Write([]byte{KeyCtrlP, 'x'})
	require.NoError(t, err)

	key, ok, err := kb.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KeyCtrlP, key)

	key, ok, err = kb.Poll(time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('x'), key)
}

func TestKeyboardPoll_HangupIsEOF(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	_, err = w.Write([]byte{'q'})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	kb := NewKeyboard(int(r.Fd()))

	key, ok, err := kb.Poll(time.Second)
	require.NoError(t, err, "buffered input is drained before the hangup is reported")
	require.True(t, ok)
	assert.Equal(t, byte('q'), key)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, ok, err = kb.Poll(time.Second)
		assert.False(t, ok)
		assert.ErrorIs(t, err, io.EOF)
	}
	assert.Less(t, time.Since(start), time.Second, "hangup must not be reported as an idle timeout")
}

func TestEnableRaw_NotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	_, err = EnableRaw(int(r.Fd()))
	assert.ErrorIs(t, err, ErrNotTerminal)
}
