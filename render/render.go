// Package render formats kxo board snapshots, the clock line and the game
// history for the terminal.
package render

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hupe1980/xocoro/kxo"
)

// TimeLayout is the layout of the clock line.
const TimeLayout = "2006-01-02 15:04:05"

// Renderer turns engine data into terminal text. Colours are only emitted
// when the output is a terminal that supports them.
type Renderer struct {
	x     lipgloss.Style
	o     lipgloss.Style
	empty lipgloss.Style
	label lipgloss.Style
}

// New returns a Renderer styled for w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		x:     r.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true),
		o:     r.NewStyle().Foreground(lipgloss.Color("#fab387")).Bold(true),
		empty: r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		label: r.NewStyle().Foreground(lipgloss.Color("#a6adc8")),
	}
}

// Board renders b one row per line, each cell followed by a space.
func (r *Renderer) Board(b kxo.Board) string {
	var sb strings.Builder
	for i := 0; i < kxo.BoardSize; i++ {
		for j := 0; j < kxo.BoardSize; j++ {
			sb.WriteString(r.cell(b.Cell(i, j)))
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Renderer) cell(c kxo.Cell) string {
	switch c {
	case kxo.X:
		return r.x.Render(c.String())
	case kxo.O:
		return r.o.Render(c.String())
	default:
		return r.empty.Render(c.String())
	}
}

// Clock renders the "Current time:" line for t in its own location.
func (r *Renderer) Clock(t time.Time) string {
	return r.label.Render("Current time:") + " " + t.Format(TimeLayout) + "\n"
}

// History renders the "Game history:" block. Empty records are skipped.
func (r *Renderer) History(hs []kxo.History) string {
	var sb strings.Builder
	sb.WriteString(r.label.Render("Game history:"))
	sb.WriteByte('\n')
	for _, h := range hs {
		if h.Empty() {
			continue
		}
		sb.WriteString(r.label.Render("Moves:"))
		sb.WriteByte(' ')
		sb.WriteString(h.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
