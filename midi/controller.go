package midi

import (
	"note-trainer/notes"
	"note-trainer/trainer"
)

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Letters played on the controller
	Letters() <-chan notes.Letter

	// ShowFeedback mirrors the trainer's button feedback, if the
	// controller has lights. No-op otherwise.
	ShowFeedback(fb map[notes.Letter]trainer.Feedback) error

	// Lifecycle
	Close() error
}

// LEDUpdate is a single pad color change
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// ChannelStatic is the LED channel for a solid color. Channels 1 and 2
// flash and pulse on the Launchpad X.
const ChannelStatic uint8 = 0

// Pad colors for letter feedback
var (
	ColorIdle      = [3]uint8{40, 60, 120}
	ColorCorrect   = [3]uint8{0, 255, 0}
	ColorIncorrect = [3]uint8{255, 0, 0}
)

// FeedbackColor returns the pad color for a feedback value
func FeedbackColor(fb trainer.Feedback) [3]uint8 {
	switch fb {
	case trainer.FeedbackCorrect:
		return ColorCorrect
	case trainer.FeedbackIncorrect:
		return ColorIncorrect
	}
	return ColorIdle
}
