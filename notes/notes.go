package notes

import "fmt"

// Letter is a natural note name
type Letter string

const (
	C Letter = "C"
	D Letter = "D"
	E Letter = "E"
	F Letter = "F"
	G Letter = "G"
	A Letter = "A"
	B Letter = "B"
)

// Letters lists the seven valid note letters in button order
var Letters = []Letter{C, D, E, F, G, A, B}

var solfege = map[Letter]string{
	C: "do",
	D: "re",
	E: "mi",
	F: "fa",
	G: "sol",
	A: "la",
	B: "ti",
}

// ParseLetter matches s exactly against the seven letters.
func ParseLetter(s string) (Letter, bool) {
	l := Letter(s)
	if _, ok := solfege[l]; ok {
		return l, true
	}
	return "", false
}

// Index returns the position of l in Letters, or -1
func (l Letter) Index() int {
	for i, x := range Letters {
		if x == l {
			return i
		}
	}
	return -1
}

func (l Letter) Solfege() string {
	return solfege[l]
}

// Label returns the name shown for l in the given display mode
func (l Letter) Label(mode DisplayMode) string {
	if mode == ModeSolfege {
		return l.Solfege()
	}
	return string(l)
}

// Clef selects which note table is in play
type Clef string

const (
	Treble Clef = "treble"
	Bass   Clef = "bass"
)

func ParseClef(s string) (Clef, error) {
	switch Clef(s) {
	case Treble, Bass:
		return Clef(s), nil
	}
	return "", fmt.Errorf("unknown clef %q", s)
}

// Other returns the opposite clef
func (c Clef) Other() Clef {
	if c == Bass {
		return Treble
	}
	return Bass
}

// DisplayMode controls how note names are labeled
type DisplayMode string

const (
	ModeLetter  DisplayMode = "letter"
	ModeSolfege DisplayMode = "solfege"
)

func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(s) {
	case ModeLetter, ModeSolfege:
		return DisplayMode(s), nil
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

func (m DisplayMode) Toggle() DisplayMode {
	if m == ModeSolfege {
		return ModeLetter
	}
	return ModeSolfege
}
