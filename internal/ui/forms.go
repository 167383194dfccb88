package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginForm is the email/password modal shared by login and registration.
type loginForm struct {
	inputs      []textinput.Model
	focused     int
	registering bool
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{inputs: []textinput.Model{email, password}}
}

func (f *loginForm) email() string    { return strings.TrimSpace(f.inputs[0].Value()) }
func (f *loginForm) password() string { return f.inputs[1].Value() }

// focus moves focus to input i.
func (f *loginForm) focus(i int) tea.Cmd {
	f.focused = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
			continue
		}
		f.inputs[j].Blur()
	}
	return cmd
}

func (f *loginForm) reset() {
	for j := range f.inputs {
		f.inputs[j].Reset()
	}
	f.focus(0)
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.login
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		f.reset()
		m.rec.DismissLoginPrompt()
		m.sync()
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, f.focus((f.focused + 1) % len(f.inputs))

	case tea.KeyCtrlR:
		f.registering = !f.registering
		return m, nil

	case tea.KeyEnter:
		if f.focused == 0 {
			return m, f.focus(1)
		}
		email, password := f.email(), f.password()
		if email == "" || password == "" {
			return m, nil
		}
		f.inputs[1].Reset()

		if f.registering {
			return m, m.run("register", func(ctx context.Context) error { return m.rec.Register(ctx, email, password) })
		}
		return m, m.run("login", func(ctx context.Context) error { return m.rec.Login(ctx, email, password) })
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return m, cmd
}
