package trainer

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"note-trainer/notes"
)

// manualScheduler holds feedback timers until the test fires them
type manualScheduler struct {
	mu      sync.Mutex
	delays  []time.Duration
	pending []func()
}

func (s *manualScheduler) schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	s.pending = append(s.pending, f)
}

func (s *manualScheduler) fire(i int) {
	s.mu.Lock()
	f := s.pending[i]
	s.mu.Unlock()
	f()
}

func (s *manualScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func newTestTrainer(t *testing.T, opts ...Option) (*Trainer, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	base := []Option{
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithScheduler(sched.schedule),
		WithLogger(zap.NewNop()),
	}
	return New(append(base, opts...)...), sched
}

func wrongLetter(l notes.Letter) notes.Letter {
	return notes.Letters[(l.Index()+1)%len(notes.Letters)]
}

func assertExpectedIsLast(t *testing.T, s Snapshot) {
	t.Helper()
	if s.Expected == nil {
		return
	}
	require.NotEmpty(t, s.Notes)
	assert.Equal(t, s.Notes[len(s.Notes)-1], *s.Expected)
}

func TestNewStartsEmpty(t *testing.T) {
	tr, _ := newTestTrainer(t)
	s := tr.Snapshot()

	assert.Equal(t, notes.Treble, s.Clef)
	assert.Equal(t, notes.ModeLetter, s.DisplayMode)
	assert.Empty(t, s.Notes)
	assert.Zero(t, s.SlotIndex)
	assert.Equal(t, 8, s.SlotCount)
	assert.Nil(t, s.Expected)
	assert.False(t, s.Revealed)
}

func TestDisplayNextNoteWrapsAfterLastSlot(t *testing.T) {
	tr, _ := newTestTrainer(t)

	for i := 0; i < 8; i++ {
		tr.DisplayNextNote()
		s := tr.Snapshot()
		require.Len(t, s.Notes, i+1)
		assert.Equal(t, i+1, s.SlotIndex)
		assert.Equal(t, notes.Slots[i], s.Notes[i].X)
		require.NotNil(t, s.Expected)
		assertExpectedIsLast(t, s)
	}

	tr.DisplayNextNote()
	s := tr.Snapshot()
	require.Len(t, s.Notes, 1)
	assert.Equal(t, 1, s.SlotIndex)
	assert.Equal(t, notes.Slots[0], s.Notes[0].X)
	assertExpectedIsLast(t, s)
}

func TestDisplayedNotesComeFromClefTable(t *testing.T) {
	for _, clef := range []notes.Clef{notes.Treble, notes.Bass} {
		tr, _ := newTestTrainer(t, WithClef(clef))
		table := notes.Table(clef)

		seen := make(map[string]bool)
		for i := 0; i < 300; i++ {
			tr.DisplayNextNote()
			e, ok := tr.Expected()
			require.True(t, ok)
			assert.Contains(t, table, e.Descriptor)
			seen[e.Name()] = true
		}
		// uniform draws over 300 rounds reach every entry
		assert.Len(t, seen, len(table), clef)
	}
}

func TestDisplayedNoteIDsAreUnique(t *testing.T) {
	tr, _ := newTestTrainer(t)
	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tr.DisplayNextNote()
		e, _ := tr.Expected()
		assert.False(t, ids[e.ID.String()])
		ids[e.ID.String()] = true
	}
}

func TestCorrectGuessAdvances(t *testing.T) {
	tr, sched := newTestTrainer(t)
	tr.ResetGame()

	before, ok := tr.Expected()
	require.True(t, ok)

	tr.SubmitGuess(string(before.Letter))

	s := tr.Snapshot()
	assert.Len(t, s.Notes, 2)
	assert.Equal(t, 2, s.SlotIndex)
	require.NotNil(t, s.Expected)
	assert.NotEqual(t, before.ID, s.Expected.ID)
	assert.Equal(t, FeedbackCorrect, s.Feedback[before.Letter])
	assertExpectedIsLast(t, s)

	require.Equal(t, 1, sched.count())
	assert.Equal(t, DefaultFeedbackDelay, sched.delays[0])
}

func TestIncorrectGuessKeepsRound(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()
	before := tr.Snapshot()

	wrong := wrongLetter(before.Expected.Letter)
	tr.SubmitGuess(string(wrong))

	after := tr.Snapshot()
	assert.Equal(t, before.Notes, after.Notes)
	assert.Equal(t, before.SlotIndex, after.SlotIndex)
	assert.Equal(t, before.Expected, after.Expected)
	assert.Equal(t, FeedbackIncorrect, after.Feedback[wrong])
	assert.Equal(t, FeedbackNone, after.Feedback[before.Expected.Letter])
}

func TestUnrecognizedGuessIsIgnored(t *testing.T) {
	tr, sched := newTestTrainer(t)
	tr.ResetGame()
	before := tr.Snapshot()

	for _, g := range []string{"", "H", "c", "C#", "do", "Bb"} {
		tr.SubmitGuess(g)
		assert.Equal(t, before, tr.Snapshot(), g)
	}
	assert.Zero(t, sched.count())
}

func TestGuessBeforeFirstNote(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.SubmitGuess("C")

	s := tr.Snapshot()
	assert.Empty(t, s.Notes)
	assert.Nil(t, s.Expected)
	assert.Equal(t, FeedbackIncorrect, s.Feedback[notes.C])
}

func TestExpectedAlwaysLastDisplayed(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()

	guesses := []string{"C", "D", "E", "F", "G", "A", "B", "X", "", "g"}
	r := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 500; i++ {
		if i%3 == 0 {
			// steer toward correct answers so rounds keep wrapping
			e, _ := tr.Expected()
			tr.SubmitGuess(string(e.Letter))
		} else {
			tr.SubmitGuess(guesses[r.IntN(len(guesses))])
		}
		s := tr.Snapshot()
		assertExpectedIsLast(t, s)
		assert.LessOrEqual(t, s.SlotIndex, s.SlotCount)
		assert.LessOrEqual(t, len(s.Notes), s.SlotCount)
	}
}

func TestCorrectGuessesWrapRound(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()

	for i := 0; i < 7; i++ {
		e, _ := tr.Expected()
		tr.SubmitGuess(string(e.Letter))
	}
	assert.Len(t, tr.Snapshot().Notes, 8)

	e, _ := tr.Expected()
	tr.SubmitGuess(string(e.Letter))
	s := tr.Snapshot()
	assert.Len(t, s.Notes, 1)
	assert.Equal(t, 1, s.SlotIndex)
}

func TestFeedbackClearsAfterDelay(t *testing.T) {
	tr, sched := newTestTrainer(t, WithFeedbackDelay(100*time.Millisecond))
	tr.ResetGame()
	e, _ := tr.Expected()
	wrong := wrongLetter(e.Letter)

	tr.SubmitGuess(string(wrong))
	require.Equal(t, 1, sched.count())
	assert.Equal(t, 100*time.Millisecond, sched.delays[0])

	sched.fire(0)
	assert.Equal(t, FeedbackNone, tr.Feedback(wrong))
	assert.Empty(t, tr.FeedbackMap())
}

func TestFeedbackTimersAreIndependentPerLetter(t *testing.T) {
	tr, sched := newTestTrainer(t)
	tr.ResetGame()
	e, _ := tr.Expected()
	first := wrongLetter(e.Letter)
	second := wrongLetter(first)
	if second == e.Letter {
		second = wrongLetter(second)
	}

	tr.SubmitGuess(string(first))
	tr.SubmitGuess(string(second))

	sched.fire(0)
	assert.Equal(t, FeedbackNone, tr.Feedback(first))
	assert.Equal(t, FeedbackIncorrect, tr.Feedback(second))

	sched.fire(1)
	assert.Equal(t, FeedbackNone, tr.Feedback(second))
}

func TestStaleClearKeepsNewerFeedback(t *testing.T) {
	tr, sched := newTestTrainer(t)
	tr.ResetGame()
	e, _ := tr.Expected()
	wrong := wrongLetter(e.Letter)

	tr.SubmitGuess(string(wrong))
	tr.SubmitGuess(string(wrong))
	require.Equal(t, 2, sched.count())

	sched.fire(0)
	assert.Equal(t, FeedbackIncorrect, tr.Feedback(wrong))

	sched.fire(1)
	assert.Equal(t, FeedbackNone, tr.Feedback(wrong))
}

func TestRealTimerClearsFeedback(t *testing.T) {
	tr := New(WithLogger(zap.NewNop()), WithFeedbackDelay(10*time.Millisecond))
	tr.ResetGame()
	e, _ := tr.Expected()
	wrong := wrongLetter(e.Letter)

	tr.SubmitGuess(string(wrong))
	assert.Equal(t, FeedbackIncorrect, tr.Feedback(wrong))
	assert.Eventually(t, func() bool {
		return tr.Feedback(wrong) == FeedbackNone
	}, time.Second, 5*time.Millisecond)
}

func TestResetGame(t *testing.T) {
	tr, _ := newTestTrainer(t)
	for i := 0; i < 5; i++ {
		tr.DisplayNextNote()
	}
	tr.ToggleRevealAll()

	tr.ResetGame()
	s := tr.Snapshot()
	assert.Len(t, s.Notes, 1)
	assert.Equal(t, 1, s.SlotIndex)
	assert.False(t, s.Revealed)
	assert.Empty(t, s.RevealNotes)
	assertExpectedIsLast(t, s)
}

func TestToggleRevealAll(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()
	tr.DisplayNextNote()
	before := tr.Snapshot()

	tr.ToggleRevealAll()
	on := tr.Snapshot()
	assert.True(t, on.Revealed)
	assert.Equal(t, before.Notes, on.Notes)
	assert.Equal(t, before.Expected, on.Expected)
	require.Len(t, on.RevealNotes, 15)
	table := notes.Table(notes.Treble)
	for i, n := range on.RevealNotes {
		assert.Equal(t, table[i], n.Descriptor)
		assert.Equal(t, 120+35*i, n.X)
		assert.Equal(t, string(table[i].Letter), n.Label)
	}
	assert.Equal(t, "all-0", on.RevealNotes[0].ID)
	assert.Equal(t, "all-14", on.RevealNotes[14].ID)

	tr.ToggleRevealAll()
	off := tr.Snapshot()
	assert.False(t, off.Revealed)
	assert.Empty(t, off.RevealNotes)
	assert.Len(t, off.Notes, 1)
	assert.Equal(t, 1, off.SlotIndex)
	assert.NotEqual(t, before.Expected.ID, off.Expected.ID)
	assertExpectedIsLast(t, off)
}

func TestRevealUsesSolfegeLabels(t *testing.T) {
	tr, _ := newTestTrainer(t, WithDisplayMode(notes.ModeSolfege), WithClef(notes.Bass))
	tr.ResetGame()
	tr.ToggleRevealAll()

	s := tr.Snapshot()
	assert.Equal(t, "do", s.RevealNotes[0].Label)
	assert.Equal(t, "ti", s.RevealNotes[1].Label)
	assert.Equal(t, notes.Bass, s.RevealNotes[0].Clef)

	tr.SetDisplayMode(notes.ModeLetter)
	s = tr.Snapshot()
	assert.Equal(t, "C", s.RevealNotes[0].Label)
	assert.Equal(t, "B", s.RevealNotes[1].Label)
	assert.True(t, s.Revealed)
}

func TestSetClefResets(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()
	for i := 0; i < 4; i++ {
		tr.DisplayNextNote()
	}
	tr.ToggleRevealAll()

	tr.SetClef(notes.Bass)
	s := tr.Snapshot()
	assert.Equal(t, notes.Bass, s.Clef)
	assert.Len(t, s.Notes, 1)
	assert.Equal(t, 1, s.SlotIndex)
	assert.False(t, s.Revealed)
	require.NotNil(t, s.Expected)
	assert.Equal(t, notes.Bass, s.Expected.Clef)

	// same clef is not a change
	tr.SetClef(notes.Bass)
	assert.Equal(t, s.Expected.ID, tr.Snapshot().Expected.ID)
}

func TestSetDisplayModeKeepsRound(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()
	before := tr.Snapshot()

	tr.SetDisplayMode(notes.ModeSolfege)
	after := tr.Snapshot()
	assert.Equal(t, notes.ModeSolfege, after.DisplayMode)
	assert.Equal(t, before.Notes, after.Notes)
	assert.Equal(t, before.Expected, after.Expected)
}

func TestButtons(t *testing.T) {
	tr, _ := newTestTrainer(t, WithDisplayMode(notes.ModeSolfege))
	tr.ResetGame()
	e, _ := tr.Expected()
	wrong := wrongLetter(e.Letter)
	tr.SubmitGuess(string(wrong))

	buttons := tr.Buttons()
	require.Len(t, buttons, 7)
	assert.Equal(t, "do", buttons[0].Label)
	assert.Equal(t, "sol", buttons[4].Label)
	assert.Equal(t, FeedbackIncorrect, buttons[wrong.Index()].Feedback)
}

func TestCustomSlots(t *testing.T) {
	tr, _ := newTestTrainer(t, WithSlots([]int{10, 20, 30}))
	for i := 0; i < 3; i++ {
		tr.DisplayNextNote()
	}
	s := tr.Snapshot()
	assert.Equal(t, 3, s.SlotCount)
	assert.Len(t, s.Notes, 3)

	tr.DisplayNextNote()
	s = tr.Snapshot()
	assert.Len(t, s.Notes, 1)
	assert.Equal(t, 10, s.Notes[0].X)
}

func TestUpdateChanSignalled(t *testing.T) {
	tr, _ := newTestTrainer(t)
	tr.ResetGame()

	select {
	case <-tr.UpdateChan:
	default:
		t.Fatal("expected update after reset")
	}

	tr.SubmitGuess("nope")
	select {
	case <-tr.UpdateChan:
		t.Fatal("ignored guess should not signal")
	default:
	}
}
