package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Pick    key.Binding
	Confirm key.Binding
	Explain key.Binding
	Next    key.Binding
	Prev    key.Binding
	Finish  key.Binding
	Start   key.Binding
	Review  key.Binding
	Back    key.Binding
	Restart key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "select")),
		Pick:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "pick option")),
		Confirm: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "confirm")),
		Explain: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "explanation")),
		Next:    key.NewBinding(key.WithKeys("right", "n", "l"), key.WithHelp("→/n", "next")),
		Prev:    key.NewBinding(key.WithKeys("left", "p", "h"), key.WithHelp("←/p", "previous")),
		Finish:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Start:   key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start")),
		Review:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "review answers")),
		Back:    key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// examHelp adapts the key map to help.KeyMap for the state being shown.
type examHelp struct {
	keys  keyMap
	short []key.Binding
	full  [][]key.Binding
}

func (h examHelp) ShortHelp() []key.Binding  { return h.short }
func (h examHelp) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) notStartedHelp() examHelp {
	b := []key.Binding{k.Start, k.Quit}
	return examHelp{keys: k, short: b, full: [][]key.Binding{b}}
}

func (k keyMap) inProgressHelp() examHelp {
	return examHelp{
		keys:  k,
		short: []key.Binding{k.Select, k.Confirm, k.Explain, k.Next, k.Prev, k.Finish, k.Help},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Select, k.Pick},
			{k.Confirm, k.Explain},
			{k.Next, k.Prev},
			{k.Finish, k.Restart, k.Quit},
		},
	}
}

func (k keyMap) finishedHelp(reviewing bool) examHelp {
	if reviewing {
		b := []key.Binding{k.Up, k.Down, k.Back, k.Restart, k.Quit}
		return examHelp{keys: k, short: b, full: [][]key.Binding{b}}
	}
	b := []key.Binding{k.Review, k.Restart, k.Quit}
	return examHelp{keys: k, short: b, full: [][]key.Binding{b}}
}
