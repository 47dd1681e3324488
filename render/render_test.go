package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/xocoro/kxo"
)

func TestBoard(t *testing.T) {
	var b kxo.Board
	b[kxo.Index(0, 0)] = kxo.X
	b[kxo.Index(1, 2)] = kxo.O
	b[kxo.Index(3, 3)] = kxo.X

	r := New(&bytes.Buffer{})
	want := "X . . . \n" +
		". . O . \n" +
		". . . . \n" +
		". . . X \n"
	assert.Equal(t, want, r.Board(b))
	assert.Equal(t, b.String(), r.Board(b))
}

func TestClock(t *testing.T) {
	r := New(&bytes.Buffer{})
	ts := time.Date(2024, 3, 9, 7, 5, 3, 0, time.UTC)
	assert.Equal(t, "Current time: 2024-03-09 07:05:03\n", r.Clock(ts))
}

func TestHistory(t *testing.T) {
	r := New(&bytes.Buffer{})
	hs := []kxo.History{
		kxo.NewHistory(kxo.Move{Row: 0, Col: 0}, kxo.Move{Row: 1, Col: 1}),
		{},
		kxo.NewHistory(kxo.Move{Row: 3, Col: 2}),
	}
	want := "Game history:\n" +
		"Moves: A1 -> B2\n" +
		"Moves: C4\n"
	assert.Equal(t, want, r.History(hs))
}

func TestHistory_AllEmpty(t *testing.T) {
	r := New(&bytes.Buffer{})
	assert.Equal(t, "Game history:\n", r.History(make([]kxo.History, kxo.HistorySize)))
}
