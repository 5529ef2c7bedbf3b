package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"note-trainer/debug"
	"note-trainer/notes"
)

// Translate maps a note-on message to the letter it names. The channel is
// ignored. Note-offs, zero velocity, accidentals and notes outside C2..C6
// are dropped.
func Translate(msg gomidi.Message) (notes.Letter, bool) {
	var channel, key, velocity uint8
	if !msg.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
		return "", false
	}

	l, ok := notes.LetterForMIDI(key)
	if !ok {
		name, _ := notes.MIDIName(key)
		debug.Log("midi", "note %d (%s) not a natural in range, dropped", key, name)
		return "", false
	}
	return l, true
}
