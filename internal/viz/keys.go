package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause   key.Binding
	Restart key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Pause, k.Restart}, {k.Faster, k.Slower}, {k.Help, k.Quit}}
}

var keys = keyMap{
	Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart from the initial configuration")),
	Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "double the steps per frame")),
	Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "halve the steps per frame")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
