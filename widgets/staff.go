package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"note-trainer/notes"
	"note-trainer/theme"
)

// Horizontal mapping from note coordinates to terminal columns
const (
	minX   = 100
	xScale = 8
	gutter = 2 // clef marker + space

	DefaultStaffWidth = 80
)

// StaffNote is a note head to draw
type StaffNote struct {
	Slot  int    // notes.StaffSlot row
	X     int    // horizontal coordinate, same units as notes.Slots
	Label string // printed under the staff, empty for none
	Color lipgloss.Color
}

// Staff describes one staff to render
type Staff struct {
	Width     int
	Clef      notes.Clef
	Notes     []StaffNote
	Symbols   theme.Symbols
	LineColor lipgloss.Color
}

type cell struct {
	r     rune
	color lipgloss.Color
}

// Column converts a note coordinate to a column on the staff
func Column(x int) int {
	col := gutter + (x-minX)/xScale
	if col < gutter {
		return gutter
	}
	return col
}

// clefRow is the line the clef marker sits on (G line / F line)
func clefRow(c notes.Clef) (int, rune) {
	if c == notes.Bass {
		return 6, 'F'
	}
	return 10, 'G'
}

func (s Staff) width() int {
	if s.Width <= 0 {
		return DefaultStaffWidth
	}
	return s.Width
}

func (s Staff) grid() [][]cell {
	w := s.width()
	rows := make([][]cell, notes.StaffRows)
	for r := range rows {
		rows[r] = make([]cell, w)
		for c := range rows[r] {
			rows[r][c] = cell{r: s.Symbols.Space}
			if notes.IsStaffLine(r) && c >= gutter {
				rows[r][c] = cell{r: s.Symbols.Line, color: s.LineColor}
			}
		}
	}

	row, marker := clefRow(s.Clef)
	rows[row][0] = cell{r: marker, color: s.LineColor}

	for _, n := range s.Notes {
		if n.Slot < 0 || n.Slot >= notes.StaffRows {
			continue
		}
		col := min(Column(n.X), w-1)
		for _, lr := range notes.LedgerLines(n.Slot) {
			for c := col - 1; c <= col+1; c++ {
				if c >= gutter && c < w {
					rows[lr][c] = cell{r: s.Symbols.Ledger, color: s.LineColor}
				}
			}
		}
		rows[n.Slot][col] = cell{r: s.Symbols.NoteHead, color: n.Color}
	}
	return rows
}

func (s Staff) labels() []cell {
	w := s.width()
	line := make([]cell, w)
	for c := range line {
		line[c] = cell{r: ' '}
	}
	for _, n := range s.Notes {
		col := min(Column(n.X), w-1)
		for i, r := range []rune(n.Label) {
			if col+i < w {
				line[col+i] = cell{r: r, color: n.Color}
			}
		}
	}
	return line
}

func (s Staff) hasLabels() bool {
	for _, n := range s.Notes {
		if n.Label != "" {
			return true
		}
	}
	return false
}

// RenderStaff draws the staff, ledger lines and note heads, with a label
// line underneath when any note has a label
func RenderStaff(s Staff) string {
	var lines []string
	for _, row := range s.grid() {
		lines = append(lines, renderCells(row))
	}
	if s.hasLabels() {
		lines = append(lines, renderCells(s.labels()))
	}
	return strings.Join(lines, "\n")
}

// renderCells styles runs of same-colored cells together
func renderCells(cells []cell) string {
	var out strings.Builder
	var run []rune
	var color lipgloss.Color

	flush := func() {
		if len(run) == 0 {
			return
		}
		if color == "" {
			out.WriteString(string(run))
		} else {
			out.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(run)))
		}
		run = run[:0]
	}

	for _, c := range cells {
		if c.color != color {
			flush()
			color = c.color
		}
		run = append(run, c.r)
	}
	flush()
	return strings.TrimRight(out.String(), " ")
}
