package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/anirec/internal/reconciler"
	"github.com/desertthunder/anirec/internal/shared"
)

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch {
	case m.state.LoginPrompt:
		body = m.renderLogin()
	case m.state.Loading:
		body = fmt.Sprintf("\n  %s loading…\n", m.spinner.View())
	case m.detail != nil:
		body = m.renderDetail()
	case m.state.View == reconciler.ViewHome:
		body = m.renderHome()
	case m.state.View == reconciler.ViewMyPage:
		body = m.renderMyPage()
	default:
		body = m.list.View()
	}

	parts := []string{m.renderTabs(), body}
	if m.mode != inputNone {
		parts = append(parts, m.input.View())
	}
	parts = append(parts, m.renderStatus(), m.renderHelp())
	return strings.Join(parts, "\n")
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(reconciler.Views))
	for i, v := range reconciler.Views {
		if v == m.state.View {
			tabs[i] = styles.active.Render(v.String())
		} else {
			tabs[i] = styles.tab.Render(v.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("anirec"))
	b.WriteString("\n")

	if m.state.LoggedIn && m.state.User != nil {
		b.WriteString(fmt.Sprintf("Signed in as %s\n", m.state.User.Email))
	} else if m.state.LoggedIn {
		b.WriteString("Signed in\n")
	} else {
		b.WriteString(styles.help.Render("Not signed in. Press L to log in.") + "\n")
	}

	b.WriteString(fmt.Sprintf("\nPopular titles: %d\n", len(m.state.Popular)))
	if m.state.LoggedIn {
		b.WriteString(fmt.Sprintf("Favorites: %d\n", len(m.state.Favorites)))
		b.WriteString(fmt.Sprintf("Recommendations: %d\n", len(m.state.Recommendations)))
	}

	if len(m.recent) > 0 {
		b.WriteString("\n" + styles.ok.Render("Recent searches") + "\n")
		for _, e := range m.recent {
			b.WriteString(fmt.Sprintf("  %s (%d)\n", e.Keyword, e.ResultCount))
		}
	}
	return b.String()
}

func (m *Model) renderMyPage() string {
	if !m.state.LoggedIn {
		return styles.help.Render("\nLog in (L) to see your account.\n")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("My Page"))
	b.WriteString("\n")
	if u := m.state.User; u != nil {
		b.WriteString(fmt.Sprintf("Email:  %s\n", u.Email))
		b.WriteString(fmt.Sprintf("ID:     %d\n", u.ID))
		b.WriteString(fmt.Sprintf("Active: %t\n", u.IsActive))
	}
	b.WriteString(fmt.Sprintf("\nFavorites: %d\n", len(m.state.Favorites)))
	b.WriteString(styles.help.Render("\nPress X to log out."))
	return b.String()
}

func (m *Model) renderDetail() string {
	a := m.detail.Anime

	var b strings.Builder
	title := a.Title
	if m.rec.IsFavorite(a.ID()) {
		title = "★ " + title
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	if a.Score > 0 {
		b.WriteString(fmt.Sprintf("Score:  %.2f\n", a.Score))
	}
	if len(a.Genres) > 0 {
		b.WriteString(fmt.Sprintf("Genres: %s\n", a.GenreLine()))
	}
	if a.Key() != "" {
		b.WriteString(fmt.Sprintf("Page:   %s\n", shared.AnimePageURL(a.Key())))
	}

	if len(m.detail.Similar) > 0 {
		b.WriteString("\n" + styles.ok.Render("Similar") + "\n")
		for _, s := range m.detail.Similar {
			b.WriteString(fmt.Sprintf("  • %s\n", s.Title))
		}
	}
	return styles.box.Render(b.String())
}

func (m *Model) renderLogin() string {
	heading := "Log in"
	if m.login.registering {
		heading = "Create account"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")
	for _, in := range m.login.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.switchTo, m.keys.back}))
	return styles.box.Render(b.String())
}

func (m *Model) renderStatus() string {
	switch {
	case m.state.Notice != "":
		return styles.err.Render(m.state.Notice)
	case m.err != nil:
		return styles.err.Render(errorText(m.err))
	case m.status != "":
		return styles.ok.Render(m.status)
	}

	if !m.filter.IsZero() {
		return styles.warn.Render(fmt.Sprintf("filter: genre=%q min=%.1f sort=%s", m.filter.Genre, m.filter.MinScore, sortLabel(m.filter.Sort)))
	}
	return ""
}

func (m *Model) renderHelp() string {
	if m.state.LoginPrompt {
		return ""
	}
	if m.detail != nil {
		return m.help.ShortHelpView([]key.Binding{m.keys.favorite, m.keys.recommend, m.keys.open, m.keys.back, m.keys.quit})
	}

	keys := []key.Binding{m.keys.search, m.keys.nextView}
	if len(m.list.Items()) > 0 {
		keys = append(keys, m.keys.enter, m.keys.favorite, m.keys.recommend, m.keys.sort)
	}
	if m.state.LoggedIn {
		keys = append(keys, m.keys.logout)
	} else {
		keys = append(keys, m.keys.login)
	}
	keys = append(keys, m.keys.quit)
	return m.help.ShortHelpView(keys)
}
