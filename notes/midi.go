package notes

// MIDI note range covered by the two clefs (C2..C6)
const (
	MIDILow  uint8 = 36
	MIDIHigh uint8 = 84
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MIDIName returns the pitch-class name for a MIDI note in range
func MIDIName(n uint8) (string, bool) {
	if n < MIDILow || n > MIDIHigh {
		return "", false
	}
	return pitchClasses[n%12], true
}

// LetterForMIDI maps a MIDI note to its natural letter. Accidentals and
// notes outside the range are not letters.
func LetterForMIDI(n uint8) (Letter, bool) {
	name, ok := MIDIName(n)
	if !ok {
		return "", false
	}
	return ParseLetter(name)
}
