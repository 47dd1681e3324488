package kxo

import (
	"fmt"
	"strings"
)

const (
	// BoardSize is the side length of the board.
	BoardSize = 4
	// NGrids is the number of cells.
	NGrids = BoardSize * BoardSize
	// BoardDataSize is the size of one snapshot read from the device: four
	// cells per byte plus one trailing byte.
	BoardDataSize = (NGrids+3)/4 + 1

	boardCellBytes = (NGrids + 3) / 4
)

// Cell is the content of one board square.
type Cell uint8

const (
	// Empty is an unoccupied cell.
	Empty Cell = iota
	// X is a cell taken by the first player.
	X
	// O is a cell taken by the second player.
	O
)

// String returns "X", "O" or ".".
func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// Board is a decoded snapshot in row-major order.
type Board [NGrids]Cell

// Index returns the row-major index of (row, col).
func Index(row, col int) int { return row*BoardSize + col }

// Cell returns the content at (row, col).
func (b Board) Cell(row, col int) Cell { return b[Index(row, col)] }

// String renders the board as rows of "X ", "O " and ". ".
func (b Board) String() string {
	var sb strings.Builder
	for i := 0; i < BoardSize; i++ {
		for j := 0; j < BoardSize; j++ {
			sb.WriteString(b.Cell(i, j).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DecodeBoard unpacks a device snapshot. Each cell takes two bits, low bit
// first: the low bit marks X, the high bit marks O.
func DecodeBoard(data []byte) (Board, error) {
	var b Board
	if len(data) < boardCellBytes {
		return b, fmt.Errorf("board snapshot %d bytes: %w", len(data), ErrShortRead)
	}
	for idx := 0; idx < NGrids; idx++ {
		byteIdx := idx >> 2
		bitIdx := uint(idx&3) << 1
		switch {
		case data[byteIdx]&(1<<bitIdx) != 0:
			b[idx] = X
		case data[byteIdx]&(1<<(bitIdx+1)) != 0:
			b[idx] = O
		default:
			b[idx] = Empty
		}
	}
	return b, nil
}

// EncodeBoard is the inverse of DecodeBoard. It produces BoardDataSize bytes.
func EncodeBoard(b Board) []byte {
	data := make([]byte, BoardDataSize)
	for idx, c := range b {
		bitIdx := uint(idx&3) << 1
		switch c {
		case X:
			data[idx>>2] |= 1 << bitIdx
		case O:
			data[idx>>2] |= 1 << (bitIdx + 1)
		}
	}
	return data
}
