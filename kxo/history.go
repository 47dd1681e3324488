package kxo

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

const (
	// HistorySize is the number of game records returned by the engine.
	HistorySize = 8
	// BoardHistorySize is the size of the packed move buffer of one record.
	BoardHistorySize = NGrids * moveBits / 8
	// HistoryRecordSize is the in-kernel size of one record: the move
	// buffer followed by a native size_t length. The move buffer is a
	// multiple of the word size, so there is no padding.
	HistoryRecordSize = BoardHistorySize + sizeTSize

	// GetBoardHistory is the ioctl request number for the history table.
	GetBoardHistory = 0

	moveBits  = 4
	sizeTSize = int(unsafe.Sizeof(uintptr(0)))
	maxMoves  = BoardHistorySize * 8 / moveBits
)

// Move is one placed piece.
type Move struct {
	Row, Col int
}

// String returns the move in column-letter, 1-based row form, e.g. "B3".
func (m Move) String() string {
	return fmt.Sprintf("%c%d", 'A'+rune(m.Col), m.Row+1)
}

// History is one finished game.
type History struct {
	Moves  [BoardHistorySize]byte
	Length uint64
}

// Empty reports whether the record slot is unused.
func (h History) Empty() bool { return h.Length == 0 }

// DecodedMoves unpacks the move sequence. Each move is a 4-bit cell index,
// low nibble first. Lengths beyond what the buffer holds are clamped.
func (h History) DecodedMoves() []Move {
	n := int(min(h.Length, uint64(maxMoves)))
	moves := make([]Move, 0, n)
	for i := 0; i < n; i++ {
		idx := (i * moveBits) >> 3
		bit := uint((i * moveBits) & 7)
		cell := int(h.Moves[idx]>>bit) & (1<<moveBits - 1)
		moves = append(moves, Move{Row: cell / BoardSize, Col: cell % BoardSize})
	}
	return moves
}

// String joins the moves with " -> ".
func (h History) String() string {
	moves := h.DecodedMoves()
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " -> ")
}

// NewHistory packs moves into a record.
func NewHistory(moves ...Move) History {
	var h History
	for i, m := range moves {
		if i >= maxMoves {
			break
		}
		cell := byte(Index(m.Row, m.Col))
		h.Moves[(i*moveBits)>>3] |= cell << uint((i*moveBits)&7)
		h.Length++
	}
	return h
}

// DecodeHistories unpacks the ioctl buffer into HistorySize records.
func DecodeHistories(raw []byte) ([]History, error) {
	if len(raw) < HistorySize*HistoryRecordSize {
		return nil, fmt.Errorf("history table %d bytes: %w", len(raw), ErrShortRead)
	}
	out := make([]History, HistorySize)
	for i := range out {
		rec := raw[i*HistoryRecordSize : (i+1)*HistoryRecordSize]
		copy(out[i].Moves[:], rec[:BoardHistorySize])
		out[i].Length = getSizeT(rec[BoardHistorySize:])
	}
	return out, nil
}

// EncodeHistories is the inverse of DecodeHistories.
func EncodeHistories(hs []History) []byte {
	raw := make([]byte, HistorySize*HistoryRecordSize)
	for i, h := range hs {
		if i >= HistorySize {
			break
		}
		rec := raw[i*HistoryRecordSize : (i+1)*HistoryRecordSize]
		copy(rec, h.Moves[:])
		putSizeT(rec[BoardHistorySize:], h.Length)
	}
	return raw
}

func getSizeT(b []byte) uint64 {
	if sizeTSize == 4 {
		return uint64(binary.NativeEndian.Uint32(b))
	}
	return binary.NativeEndian.Uint64(b)
}

// putSizeT saturates lengths that do not fit a 32-bit size_t.
func putSizeT(b []byte, v uint64) {
	if sizeTSize == 4 {
		binary.NativeEndian.PutUint32(b, uint32(min(v, uint64(^uint32(0)))))
		return
	}
	binary.NativeEndian.PutUint64(b, v)
}

// NonEmpty filters out unused slots, keeping order.
func NonEmpty(hs []History) []History {
	out := make([]History, 0, len(hs))
	for _, h := range hs {
		if !h.Empty() {
			out = append(out, h)
		}
	}
	return out
}
