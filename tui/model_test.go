package tui

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"note-trainer/midi"
	"note-trainer/notes"
	"note-trainer/theme"
	"note-trainer/trainer"
)

type fakeController struct {
	letters chan notes.Letter

	mu       sync.Mutex
	feedback []map[notes.Letter]trainer.Feedback
}

func newFakeController() *fakeController {
	return &fakeController{letters: make(chan notes.Letter, 4)}
}

func (f *fakeController) ID() string                   { return "fake" }
func (f *fakeController) Type() midi.ControllerType    { return midi.ControllerKeyboard }
func (f *fakeController) Letters() <-chan notes.Letter { return f.letters }
func (f *fakeController) Close() error                 { close(f.letters); return nil }

func (f *fakeController) ShowFeedback(fb map[notes.Letter]trainer.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, fb)
	return nil
}

func newTestModel(t *testing.T, save PrefsSaver) Model {
	t.Helper()
	tr := trainer.New(
		trainer.WithRand(rand.New(rand.NewPCG(3, 4))),
		trainer.WithLogger(zap.NewNop()),
		trainer.WithScheduler(func(time.Duration, func()) {}),
	)
	tr.ResetGame()
	return NewModel(tr, nil, theme.Default(), save)
}

func press(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	if k == "ctrl+c" {
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestLetterKeySubmitsGuess(t *testing.T) {
	m := newTestModel(t, nil)
	e, ok := m.Trainer.Expected()
	require.True(t, ok)

	m, _ = press(m, strings.ToLower(string(e.Letter)))

	s := m.Trainer.Snapshot()
	assert.Len(t, s.Notes, 2)
	assert.Equal(t, trainer.FeedbackCorrect, s.Feedback[e.Letter])
}

func TestUppercaseLetterKey(t *testing.T) {
	m := newTestModel(t, nil)
	e, _ := m.Trainer.Expected()

	m, _ = press(m, string(e.Letter))
	assert.Len(t, m.Trainer.Snapshot().Notes, 2)
}

func TestClefAndModeKeysSavePrefs(t *testing.T) {
	prefsDelay = 50 * time.Millisecond
	t.Cleanup(func() { prefsDelay = 500 * time.Millisecond })

	var (
		mu    sync.Mutex
		saved []string
	)
	m := newTestModel(t, func(c notes.Clef, d notes.DisplayMode) {
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, string(c)+"/"+string(d))
	})

	m, _ = press(m, "t")
	assert.Equal(t, notes.Bass, m.Trainer.Clef())
	assert.Len(t, m.Trainer.Snapshot().Notes, 1)

	m, _ = press(m, "s")
	assert.Equal(t, notes.ModeSolfege, m.Trainer.DisplayMode())

	// both toggles collapse into one write with the final values
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(saved) == 1
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, "bass/solfege", saved[0])
	mu.Unlock()
}

func TestRevealAndResetKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = press(m, "r")
	s := m.Trainer.Snapshot()
	assert.True(t, s.Revealed)
	assert.Len(t, s.RevealNotes, 15)
	assert.Contains(t, m.View(), s.RevealNotes[0].Label)

	m, _ = press(m, "r")
	assert.False(t, m.Trainer.Snapshot().Revealed)

	e, _ := m.Trainer.Expected()
	m, _ = press(m, strings.ToLower(string(e.Letter)))
	require.Len(t, m.Trainer.Snapshot().Notes, 2)
	m, _ = press(m, "n")
	assert.Len(t, m.Trainer.Snapshot().Notes, 1)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, nil)
	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	m = newTestModel(t, nil)
	_, cmd = press(m, "ctrl+c")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestConnectedControllerForwardsLetters(t *testing.T) {
	m := newTestModel(t, nil)
	fc := newFakeController()

	next, _ := m.Update(DeviceEventMsg{Type: midi.DeviceConnected, Controller: fc, ID: "fake"})
	m = next.(Model)
	assert.Contains(t, m.View(), "KB:1")

	e, _ := m.Trainer.Expected()
	fc.letters <- e.Letter
	assert.Eventually(t, func() bool {
		return len(m.Trainer.Snapshot().Notes) == 2
	}, time.Second, 5*time.Millisecond)

	// feedback is mirrored on update
	next, cmd := m.Update(UpdateMsg{})
	m = next.(Model)
	assert.NotNil(t, cmd)
	fc.mu.Lock()
	assert.GreaterOrEqual(t, len(fc.feedback), 2)
	fc.mu.Unlock()

	next, _ = m.Update(DeviceEventMsg{Type: midi.DeviceDisconnected, ID: "fake"})
	m = next.(Model)
	assert.NotContains(t, m.View(), "KB:1")
	fc.Close()
}

func TestUnavailableNoticeShown(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := m.Update(DeviceEventMsg{Type: midi.DeviceUnavailable, Err: midi.ErrNoInputs})
	m = next.(Model)
	assert.Contains(t, m.View(), "No MIDI keyboard found")

	next, _ = m.Update(DeviceEventMsg{Type: midi.DeviceConnected, Controller: newFakeController(), ID: "k"})
	m = next.(Model)
	assert.NotContains(t, m.View(), "No MIDI keyboard found")
}

func TestViewShowsHeaderAndButtons(t *testing.T) {
	m := newTestModel(t, nil)
	v := m.View()
	assert.Contains(t, v, "TREBLE")
	assert.Contains(t, v, "note 1/8")
	assert.Contains(t, v, "●")
	for _, l := range notes.Letters {
		assert.Contains(t, v, string(l))
	}
}
