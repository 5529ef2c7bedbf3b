package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Letters key.Binding
	Clef    key.Binding
	Mode    key.Binding
	Reveal  key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

func newKey(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

func defaultKeyMap() keyMap {
	letters := key.NewBinding(
		key.WithKeys("c", "d", "e", "f", "g", "a", "b", "C", "D", "E", "F", "G", "A", "B"),
		key.WithHelp("c-b", "name the note"),
	)
	return keyMap{
		Letters: letters,
		Clef:    newKey("treble/bass", "t"),
		Mode:    newKey("letters/solfège", "s"),
		Reveal:  newKey("show all notes", "r"),
		Reset:   newKey("new round", "n"),
		Quit:    newKey("quit", "q", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Letters, k.Clef, k.Mode, k.Reveal, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Letters},
		{k.Clef, k.Mode},
		{k.Reveal, k.Reset, k.Quit},
	}
}
