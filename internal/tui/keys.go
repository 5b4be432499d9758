package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Left     key.Binding
	Right    key.Binding
	Toggle   key.Binding
	Activate key.Binding
	Photo    key.Binding
	Abandon  key.Binding
	Locate   key.Binding
	Submit   key.Binding
	Reset    key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev")),
		Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "change")),
		Right:    key.NewBinding(key.WithKeys("right")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		Activate: key.NewBinding(key.WithKeys("enter")),
		Photo:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "photo")),
		Abandon:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close camera")),
		Locate:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "location")),
		Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "analyze")),
		Reset:    key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "new check")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQ:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// bindings adapts a slice of key bindings to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (a *App) helpBindings() bindings {
	switch a.phase {
	case phaseLoading:
		return bindings{a.keys.ForceQ}
	case phaseResult:
		return bindings{a.keys.Reset, a.keys.Quit}
	}
	out := bindings{a.keys.Next, a.keys.Prev, a.keys.Left, a.keys.Toggle, a.keys.Photo}
	if a.photoLive {
		out = append(out, a.keys.Abandon)
	}
	return append(out, a.keys.Locate, a.keys.Submit, a.keys.ForceQ)
}
