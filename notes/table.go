package notes

import "fmt"

// Descriptor is one entry of a clef's note table
type Descriptor struct {
	Letter    Letter `json:"letter"`
	Octave    int    `json:"octave"`
	StaffSlot int    `json:"staffSlot"` // rows from the top of the drawing area, one per diatonic step
	Clef      Clef   `json:"clef"`
}

// Name returns scientific pitch notation, e.g. "C4"
func (d Descriptor) Name() string {
	return fmt.Sprintf("%s%d", d.Letter, d.Octave)
}

func (d Descriptor) Label(mode DisplayMode) string {
	return d.Letter.Label(mode)
}

var semitones = map[Letter]int{C: 0, D: 2, E: 4, F: 5, G: 7, A: 9, B: 11}

// MIDINote returns the MIDI note number with C4 = 60
func (d Descriptor) MIDINote() uint8 {
	return uint8(12*(d.Octave+1) + semitones[d.Letter])
}

// Staff geometry, in StaffSlot rows
const (
	StaffRows   = 17
	StaffTop    = 4  // top line
	StaffBottom = 12 // bottom line
)

var trebleTable = []Descriptor{
	{C, 4, 14, Treble}, // one ledger line below
	{D, 4, 13, Treble},
	{E, 4, 12, Treble}, // first line
	{F, 4, 11, Treble},
	{G, 4, 10, Treble},
	{A, 4, 9, Treble},
	{B, 4, 8, Treble}, // middle line
	{C, 5, 7, Treble},
	{D, 5, 6, Treble},
	{E, 5, 5, Treble},
	{F, 5, 4, Treble}, // fifth line
	{G, 5, 3, Treble},
	{A, 5, 2, Treble},
	{B, 5, 1, Treble},
	{C, 6, 0, Treble}, // two ledger lines above
}

var bassTable = []Descriptor{
	{C, 4, 2, Bass}, // one ledger line above
	{B, 3, 3, Bass},
	{A, 3, 4, Bass}, // fifth line
	{G, 3, 5, Bass},
	{F, 3, 6, Bass},
	{E, 3, 7, Bass},
	{D, 3, 8, Bass}, // middle line
	{C, 3, 9, Bass},
	{B, 2, 10, Bass},
	{A, 2, 11, Bass},
	{G, 2, 12, Bass}, // first line
	{F, 2, 13, Bass},
	{E, 2, 14, Bass},
	{D, 2, 15, Bass},
	{C, 2, 16, Bass}, // two ledger lines below
}

// Table returns a copy of the note table for clef
func Table(clef Clef) []Descriptor {
	src := trebleTable
	if clef == Bass {
		src = bassTable
	}
	out := make([]Descriptor, len(src))
	copy(out, src)
	return out
}

// LedgerLines returns the ledger-line rows needed to draw a note at slot
func LedgerLines(slot int) []int {
	var rows []int
	for r := StaffTop - 2; r >= slot; r -= 2 {
		rows = append(rows, r)
	}
	for r := StaffBottom + 2; r <= slot; r += 2 {
		rows = append(rows, r)
	}
	return rows
}

// IsStaffLine reports whether row is one of the five staff lines
func IsStaffLine(row int) bool {
	return row >= StaffTop && row <= StaffBottom && (row-StaffTop)%2 == 0
}

// Slots are the horizontal coordinates notes are placed at, left to right
var Slots = []int{150, 230, 310, 390, 470, 550, 630, 710}

// RevealX is the horizontal coordinate of the i-th note in the reveal-all overlay
func RevealX(i int) int {
	return 120 + 35*i
}
