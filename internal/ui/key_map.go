package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	nextView  key.Binding
	prevView  key.Binding
	search    key.Binding
	recommend key.Binding
	favorite  key.Binding
	sort      key.Binding
	open      key.Binding
	login     key.Binding
	logout    key.Binding
	refresh   key.Binding
	submit    key.Binding
	switchTo  key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		nextView:  key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab", "next view")),
		prevView:  key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab", "prev view")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		recommend: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "similar")),
		favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		login:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
		logout:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "logout")),
		refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		switchTo:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.nextView, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.nextView, k.prevView, k.search, k.recommend},
		{k.favorite, k.sort, k.open, k.refresh},
		{k.login, k.logout, k.quit},
	}
}
