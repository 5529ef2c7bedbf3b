package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"note-trainer/debug"
	"note-trainer/notes"
	"note-trainer/trainer"
)

// letterRow is the pad row used as the letter keypad (bottom row, C..B from the left)
const letterRow = 0

// LaunchpadController turns a Novation Launchpad X into a seven-pad letter
// keypad with feedback lights.
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()

	letters chan notes.Letter

	mu   sync.Mutex
	last map[notes.Letter][3]uint8 // last color sent per pad
}

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		letters: make(chan notes.Letter, 32),
		last:    make(map[notes.Letter][3]uint8),
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send

		// Send SysEx to switch to Programmer mode
		// F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))

		// Enable external LED feedback
		// F0 00 20 29 02 0C 0A 01 01 F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))

		lp.ShowFeedback(nil)
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return
	}
	row, col := noteToRowCol(note)
	l, ok := padLetter(row, col)
	if !ok {
		return
	}
	select {
	case lp.letters <- l:
	default:
	}
}

// padLetter maps a grid position to the letter it stands for
func padLetter(row, col int) (notes.Letter, bool) {
	if row != letterRow || col < 0 || col >= len(notes.Letters) {
		return "", false
	}
	return notes.Letters[col], true
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) Letters() <-chan notes.Letter {
	return lp.letters
}

// ShowFeedback colors the letter pads. Only pads whose color changed are sent.
func (lp *LaunchpadController) ShowFeedback(fb map[notes.Letter]trainer.Feedback) error {
	updates := lp.feedbackUpdates(fb)
	return lp.SetLEDBatch(updates)
}

func (lp *LaunchpadController) feedbackUpdates(fb map[notes.Letter]trainer.Feedback) []LEDUpdate {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	var updates []LEDUpdate
	for col, l := range notes.Letters {
		color := FeedbackColor(fb[l])
		if prev, ok := lp.last[l]; ok && prev == color {
			continue
		}
		lp.last[l] = color
		updates = append(updates, LEDUpdate{Row: letterRow, Col: col, Color: color, Channel: ChannelStatic})
	}
	return updates
}

// SetLEDBatch sends multiple LED updates using individual NoteOn messages
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return fmt.Errorf("set led: %w", err)
		}
	}

	debug.LogEvery(50, "lp-send", "batch size=%d", len(updates))

	return nil
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	// Launchpad X palette - approximate RGB values for key colors
	// Format: {velocity, R, G, B}
	palette := [][4]uint8{
		{0, 0, 0, 0},         // off
		{5, 255, 0, 0},       // red
		{7, 180, 60, 60},     // dim red
		{9, 255, 100, 0},     // orange
		{13, 255, 200, 0},    // yellow
		{19, 0, 100, 0},      // dim green
		{21, 0, 255, 0},      // bright green
		{37, 0, 200, 200},    // cyan
		{43, 40, 60, 120},    // dim blue
		{45, 0, 100, 255},    // blue
		{49, 150, 0, 200},    // purple
		{119, 255, 255, 255}, // white
	}

	bestMatch := uint8(0)
	bestDist := 999999

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])

	for _, p := range palette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}

	return bestMatch
}

func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		var updates []LEDUpdate
		for col := range notes.Letters {
			updates = append(updates, LEDUpdate{Row: letterRow, Col: col})
		}
		lp.SetLEDBatch(updates)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.letters)
	return nil
}

// Launchpad X note mapping (Programmer mode)
// 8x8 Grid: Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88

func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return -1, -1
	}
	return row, col
}
