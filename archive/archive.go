package archive

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/xocoro/kxo"
)

// ErrEmptyRunID is returned when a run id is missing.
var ErrEmptyRunID = errors.New("archive: empty run id")

// Record is one archived game.
type Record struct {
	RunID   string
	Slot    int
	History kxo.History
	SavedAt time.Time
}

// Notation returns the moves in "A1 -> B2" form.
func (r Record) Notation() string { return r.History.String() }

// Store archives history tables.
type Store interface {
	// Save stores the non-empty records of hs under runID.
	Save(ctx context.Context, runID string, hs []kxo.History) error
	// List returns the records of runID ordered by slot. An unknown run
	// yields an empty slice.
	List(ctx context.Context, runID string) ([]Record, error)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
