package trainer

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"note-trainer/debug"
	"note-trainer/notes"
)

// DefaultFeedbackDelay is how long a button stays marked correct/incorrect
const DefaultFeedbackDelay = 250 * time.Millisecond

// Feedback is the transient result shown on a letter button
type Feedback string

const (
	FeedbackNone      Feedback = ""
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// DisplayedNote is a note placed on the staff for the current round
type DisplayedNote struct {
	notes.Descriptor
	X  int       `json:"x"`
	ID uuid.UUID `json:"id"` // time-ordered, for UI keying only
}

// RevealedNote is one entry of the reveal-all overlay
type RevealedNote struct {
	notes.Descriptor
	X     int    `json:"x"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Scheduler runs f once after d. Must not block.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Trainer drives the note-guessing loop.
//
// The expected note is always nil or the last displayed note. Reaching the
// last horizontal slot wraps: the staff is cleared before the next note is
// placed. Unrecognized guesses are ignored.
type Trainer struct {
	mu sync.RWMutex

	clef  notes.Clef
	mode  notes.DisplayMode
	table []notes.Descriptor
	slots []int

	displayed []DisplayedNote
	slotIdx   int
	expected  *DisplayedNote

	feedback    map[notes.Letter]Feedback
	feedbackGen map[notes.Letter]uint64

	revealed bool
	reveal   []RevealedNote

	rng           *rand.Rand
	schedule      Scheduler
	feedbackDelay time.Duration
	log           *zap.Logger

	// Signalled after every state change
	UpdateChan chan struct{}
}

// Option configures a Trainer
type Option func(*Trainer)

func WithClef(c notes.Clef) Option {
	return func(t *Trainer) { t.clef = c }
}

func WithDisplayMode(m notes.DisplayMode) Option {
	return func(t *Trainer) { t.mode = m }
}

// WithSlots overrides the horizontal slot coordinates. Empty is ignored.
func WithSlots(slots []int) Option {
	return func(t *Trainer) {
		if len(slots) > 0 {
			t.slots = append([]int(nil), slots...)
		}
	}
}

func WithFeedbackDelay(d time.Duration) Option {
	return func(t *Trainer) {
		if d > 0 {
			t.feedbackDelay = d
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(t *Trainer) { t.rng = r }
}

func WithScheduler(s Scheduler) Option {
	return func(t *Trainer) { t.schedule = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Trainer) { t.log = l }
}

// New creates a trainer with an empty staff. Call ResetGame or
// DisplayNextNote to place the first note.
func New(opts ...Option) *Trainer {
	t := &Trainer{
		clef:          notes.Treble,
		mode:          notes.ModeLetter,
		slots:         append([]int(nil), notes.Slots...),
		feedback:      make(map[notes.Letter]Feedback),
		feedbackGen:   make(map[notes.Letter]uint64),
		schedule:      afterFunc,
		feedbackDelay: DefaultFeedbackDelay,
		UpdateChan:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if t.log == nil {
		t.log = debug.L().Named("trainer")
	}
	t.table = notes.Table(t.clef)
	return t
}

func (t *Trainer) notify() {
	select {
	case t.UpdateChan <- struct{}{}:
	default:
	}
}

// DisplayNextNote places a random note in the next slot and makes it the
// expected note.
func (t *Trainer) DisplayNextNote() {
	t.mu.Lock()
	t.displayNextNote()
	t.mu.Unlock()
	t.notify()
}

func (t *Trainer) displayNextNote() {
	if t.slotIdx >= len(t.slots) {
		t.displayed = nil
		t.slotIdx = 0
	}

	d := t.table[t.rng.IntN(len(t.table))]
	n := DisplayedNote{
		Descriptor: d,
		X:          t.slots[t.slotIdx],
		ID:         uuid.Must(uuid.NewV7()),
	}

	t.displayed = append(t.displayed, n)
	t.expected = &n
	t.slotIdx++

	t.log.Debug("note placed",
		zap.String("note", d.Name()),
		zap.Int("slot", t.slotIdx-1),
	)
}

// SubmitGuess scores a guessed letter against the expected note. A correct
// guess advances to the next note; a wrong but valid letter only marks the
// button; anything else is ignored.
func (t *Trainer) SubmitGuess(guess string) {
	t.mu.Lock()

	expected := ""
	if t.expected != nil {
		expected = string(t.expected.Letter)
	}
	t.log.Debug("guess", zap.String("guess", guess), zap.String("expected", expected))

	var (
		letter notes.Letter
		gen    uint64
	)
	switch {
	case t.expected != nil && guess == expected:
		letter = t.expected.Letter
		gen = t.setFeedback(letter, FeedbackCorrect)
		t.displayNextNote()
	default:
		l, ok := notes.ParseLetter(guess)
		if !ok {
			t.mu.Unlock()
			return
		}
		letter = l
		gen = t.setFeedback(letter, FeedbackIncorrect)
	}

	delay := t.feedbackDelay
	t.mu.Unlock()

	t.schedule(delay, func() { t.clearFeedback(letter, gen) })
	t.notify()
}

func (t *Trainer) setFeedback(l notes.Letter, fb Feedback) uint64 {
	t.feedback[l] = fb
	t.feedbackGen[l]++
	return t.feedbackGen[l]
}

// clearFeedback only clears if no newer feedback was set for the letter
func (t *Trainer) clearFeedback(l notes.Letter, gen uint64) {
	t.mu.Lock()
	if t.feedbackGen[l] != gen {
		t.mu.Unlock()
		return
	}
	delete(t.feedback, l)
	t.mu.Unlock()
	t.notify()
}

// ResetGame clears the staff and the reveal overlay and starts a new round
func (t *Trainer) ResetGame() {
	t.mu.Lock()
	t.resetGame()
	t.mu.Unlock()
	t.notify()
}

func (t *Trainer) resetGame() {
	t.displayed = nil
	t.slotIdx = 0
	t.expected = nil
	t.revealed = false
	t.reveal = nil
	t.displayNextNote()
}

// ToggleRevealAll shows every note of the clef with labels. Toggling off
// starts a fresh game rather than restoring the previous one.
func (t *Trainer) ToggleRevealAll() {
	t.mu.Lock()
	if t.revealed {
		t.resetGame()
	} else {
		t.revealed = true
		t.reveal = make([]RevealedNote, len(t.table))
		for i, d := range t.table {
			t.reveal[i] = RevealedNote{
				Descriptor: d,
				X:          notes.RevealX(i),
				ID:         "all-" + strconv.Itoa(i),
				Label:      d.Label(t.mode),
			}
		}
	}
	t.mu.Unlock()
	t.notify()
}

// SetClef switches the note table. A change restarts the game.
func (t *Trainer) SetClef(c notes.Clef) {
	t.mu.Lock()
	if c == t.clef {
		t.mu.Unlock()
		return
	}
	t.clef = c
	t.table = notes.Table(c)
	t.resetGame()
	t.mu.Unlock()
	t.notify()
}

// SetDisplayMode changes how labels are shown
func (t *Trainer) SetDisplayMode(m notes.DisplayMode) {
	t.mu.Lock()
	t.mode = m
	for i := range t.reveal {
		t.reveal[i].Label = t.reveal[i].Descriptor.Label(m)
	}
	t.mu.Unlock()
	t.notify()
}
