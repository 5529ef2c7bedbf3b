package trainer

import "note-trainer/notes"

// Snapshot is a copy of the game state for rendering
type Snapshot struct {
	Clef        notes.Clef                `json:"clef"`
	DisplayMode notes.DisplayMode         `json:"displayMode"`
	Notes       []DisplayedNote           `json:"displayedNotes"`
	SlotIndex   int                       `json:"currentSlotIndex"`
	SlotCount   int                       `json:"slotCount"`
	Expected    *DisplayedNote            `json:"expectedNote"`
	Feedback    map[notes.Letter]Feedback `json:"feedback"`
	Revealed    bool                      `json:"allNotesRevealed"`
	RevealNotes []RevealedNote            `json:"revealedNotes,omitempty"`
}

// Button is one letter answer button
type Button struct {
	Letter   notes.Letter `json:"letter"`
	Label    string       `json:"label"`
	Feedback Feedback     `json:"feedback,omitempty"`
}

func (t *Trainer) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		Clef:        t.clef,
		DisplayMode: t.mode,
		Notes:       append([]DisplayedNote{}, t.displayed...),
		SlotIndex:   t.slotIdx,
		SlotCount:   len(t.slots),
		Feedback:    make(map[notes.Letter]Feedback, len(t.feedback)),
		Revealed:    t.revealed,
	}
	if t.expected != nil {
		e := *t.expected
		s.Expected = &e
	}
	for l, fb := range t.feedback {
		s.Feedback[l] = fb
	}
	if t.revealed {
		s.RevealNotes = append([]RevealedNote{}, t.reveal...)
	}
	return s
}

// Buttons returns the seven answer buttons labeled for the display mode
func (t *Trainer) Buttons() []Button {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Button, len(notes.Letters))
	for i, l := range notes.Letters {
		out[i] = Button{Letter: l, Label: l.Label(t.mode), Feedback: t.feedback[l]}
	}
	return out
}

// Expected returns the note the next correct guess must match
func (t *Trainer) Expected() (DisplayedNote, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.expected == nil {
		return DisplayedNote{}, false
	}
	return *t.expected, true
}

func (t *Trainer) Feedback(l notes.Letter) Feedback {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.feedback[l]
}

// FeedbackMap returns a copy of the live feedback per letter
func (t *Trainer) FeedbackMap() map[notes.Letter]Feedback {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[notes.Letter]Feedback, len(t.feedback))
	for l, fb := range t.feedback {
		out[l] = fb
	}
	return out
}

func (t *Trainer) Clef() notes.Clef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clef
}

func (t *Trainer) DisplayMode() notes.DisplayMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}
