package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"note-trainer/midi"
	"note-trainer/notes"
	"note-trainer/theme"
	"note-trainer/trainer"
	"note-trainer/widgets"
)

// prefsDelay batches rapid clef/mode toggles into one config write
var prefsDelay = 500 * time.Millisecond

// PrefsSaver persists the user's clef and display mode
type PrefsSaver func(clef notes.Clef, mode notes.DisplayMode)

type Model struct {
	Trainer   *trainer.Trainer
	DeviceMgr *midi.DeviceManager // nil = no MIDI
	Theme     *theme.Theme

	keys        keyMap
	help        help.Model
	controllers map[string]midi.Controller
	notice      string
	quitting    bool
	width       int

	save      PrefsSaver
	debounced func(f func())
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(tr *trainer.Trainer, deviceMgr *midi.DeviceManager, th *theme.Theme, save PrefsSaver) Model {
	return Model{
		Trainer:     tr,
		DeviceMgr:   deviceMgr,
		Theme:       th,
		keys:        defaultKeyMap(),
		help:        help.New(),
		controllers: make(map[string]midi.Controller),
		width:       widgets.DefaultStaffWidth,
		save:        save,
		debounced:   debounce.New(prefsDelay),
	}
}

func ListenForUpdates(tr *trainer.Trainer) tea.Cmd {
	return func() tea.Msg {
		<-tr.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Trainer)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Letters):
			m.Trainer.SubmitGuess(strings.ToUpper(msg.String()))

		case key.Matches(msg, m.keys.Clef):
			m.Trainer.SetClef(m.Trainer.Clef().Other())
			m.savePrefs()

		case key.Matches(msg, m.keys.Mode):
			m.Trainer.SetDisplayMode(m.Trainer.DisplayMode().Toggle())
			m.savePrefs()

		case key.Matches(msg, m.keys.Reveal):
			m.Trainer.ToggleRevealAll()

		case key.Matches(msg, m.keys.Reset):
			m.Trainer.ResetGame()
		}

	case UpdateMsg:
		fb := m.Trainer.FeedbackMap()
		for _, c := range m.controllers {
			c.ShowFeedback(fb)
		}
		return m, ListenForUpdates(m.Trainer)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		if m.DeviceMgr == nil {
			return m, nil
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m *Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		m.controllers[event.ID] = event.Controller
		m.notice = ""
		event.Controller.ShowFeedback(m.Trainer.FeedbackMap())

		// Forward letters from the controller
		tr := m.Trainer
		go func() {
			for l := range event.Controller.Letters() {
				tr.SubmitGuess(string(l))
			}
		}()

	case midi.DeviceDisconnected:
		delete(m.controllers, event.ID)

	case midi.DeviceUnavailable:
		m.notice = midi.Issue(event.Err)
	}
}

func (m Model) savePrefs() {
	if m.save == nil {
		return
	}
	clef, mode := m.Trainer.Clef(), m.Trainer.DisplayMode()
	save := m.save
	m.debounced(func() { save(clef, mode) })
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Trainer.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	mode := "letters"
	if s.DisplayMode == notes.ModeSolfege {
		mode = "solfège"
	}
	header := headerStyle.Render(fmt.Sprintf("note-trainer  %s  %s  note %d/%d%s",
		strings.ToUpper(string(s.Clef)), mode, s.SlotIndex, s.SlotCount, m.deviceStatus()))

	staff := widgets.Staff{
		Width:     max(m.width, widgets.DefaultStaffWidth),
		Clef:      s.Clef,
		Symbols:   m.Theme.Symbols,
		LineColor: m.Theme.Muted(),
		Notes:     m.staffNotes(s),
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderStaff(staff))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderLetterButtons(m.Trainer.Buttons(), m.Theme))
	out.WriteString("\n")
	if m.notice != "" {
		out.WriteString(dimStyle.Render(m.notice))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(m.help.View(m.keys))

	return out.String()
}

func (m Model) staffNotes(s trainer.Snapshot) []widgets.StaffNote {
	if s.Revealed {
		out := make([]widgets.StaffNote, len(s.RevealNotes))
		for i, n := range s.RevealNotes {
			out[i] = widgets.StaffNote{Slot: n.StaffSlot, X: n.X, Label: n.Label, Color: m.Theme.FG()}
		}
		return out
	}

	out := make([]widgets.StaffNote, len(s.Notes))
	for i, n := range s.Notes {
		color := m.Theme.FG()
		if s.Expected != nil && n.ID == s.Expected.ID {
			color = m.Theme.Accent()
		}
		out[i] = widgets.StaffNote{Slot: n.StaffSlot, X: n.X, Color: color}
	}
	return out
}

func (m Model) deviceStatus() string {
	if len(m.controllers) == 0 {
		return ""
	}
	var kb, lp int
	for _, c := range m.controllers {
		if c.Type() == midi.ControllerLaunchpad {
			lp++
		} else {
			kb++
		}
	}
	var parts []string
	if kb > 0 {
		parts = append(parts, fmt.Sprintf("KB:%d", kb))
	}
	if lp > 0 {
		parts = append(parts, fmt.Sprintf("LP:%d", lp))
	}
	return "  " + strings.Join(parts, " ")
}
