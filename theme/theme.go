package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Staff
	Line     rune // ─ staff line
	Ledger   rune // ─ ledger line segment
	Space    rune // blank between lines
	NoteHead rune // ● note on the staff

	// Buttons
	Idle      rune // · no feedback
	Correct   rune // ✓
	Incorrect rune // ✗
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Line:     '─',
			Ledger:   '─',
			Space:    ' ',
			NoteHead: '●',

			Idle:      '·',
			Correct:   '✓',
			Incorrect: '✗',
		},
	}
}

// Default builds a theme from the embedded default palette
func Default() *Theme {
	return New(MustBuiltin(DefaultPalette))
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG        = 0.0  // deep blue
	RoleMuted     = 0.2  // violet
	RoleFG        = 0.45 // magenta (readable)
	RoleIncorrect = 0.55 // coral red
	RoleAccent    = 0.7  // orange
	RoleCorrect   = 1.0  // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Correct() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCorrect))
}

func (t *Theme) Incorrect() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleIncorrect))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
