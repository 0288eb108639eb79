package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Toggle  key.Binding
	Focus   key.Binding
	Search  key.Binding
	Cancel  key.Binding
	Back    key.Binding
	Forward key.Binding
	Prev    key.Binding
	Next    key.Binding
	Home    key.Binding
	Theme   key.Binding
	Sidebar key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "right", "left"), key.WithHelp("space", "expand")),
	Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Back:    key.NewBinding(key.WithKeys("b", "alt+left"), key.WithHelp("b", "back")),
	Forward: key.NewBinding(key.WithKeys("f", "alt+right"), key.WithHelp("f", "forward")),
	Prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
	Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	Home:    key.NewBinding(key.WithKeys("h", "home"), key.WithHelp("h", "home")),
	Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Sidebar: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sidebar")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Search, k.Open, k.Toggle, k.Focus, k.Back, k.Prev, k.Next, k.Theme, k.Sidebar, k.Quit}
}
