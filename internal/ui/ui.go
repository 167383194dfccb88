package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/reconciler"
	"github.com/desertthunder/anirec/internal/repositories"
	"github.com/desertthunder/anirec/internal/shared"
)

// inputMode is the purpose of the single-line prompt, if open.
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputRecommend
	inputGenre
)

// SearchHistory supplies recent searches for the home view.
type SearchHistory interface {
	Recent(limit int) ([]repositories.SearchEntry, error)
}

// Options configures a [Model].
type Options struct {
	Logger  *log.Logger
	History SearchHistory
	// Events must be the channel the reconciler was built with.
	Events <-chan reconciler.Event
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	rec     *reconciler.Reconciler
	events  <-chan reconciler.Event
	history SearchHistory
	logger  *log.Logger

	state  reconciler.State
	width  int
	height int

	list    list.Model
	input   textinput.Model
	mode    inputMode
	login   loginForm
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	filter models.Filter
	detail *models.AnimeDetail
	recent []repositories.SearchEntry
	status string
	err    error
}

// NewModel creates a new TUI model over rec.
func NewModel(ctx context.Context, rec *reconciler.Reconciler, opts Options) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	input := textinput.New()
	input.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	m := &Model{
		ctx:     ctx,
		rec:     rec,
		events:  opts.Events,
		history: opts.History,
		logger:  logger,
		list:    l,
		input:   input,
		login:   newLoginForm(),
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.sync()
	return m
}

// Init restores the session and starts listening for reconciler events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.run("initialize", func(ctx context.Context) error {
			m.rec.Initialize(ctx)
			return nil
		}),
		m.waitForEvent(),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.state.LoginPrompt:
			return m.handleLoginKeys(msg)
		case m.mode != inputNone:
			return m.handleInputKeys(msg)
		case m.detail != nil:
			return m.handleDetailKeys(msg)
		default:
			return m.handleListKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgOpDone:
		res := msg.data.(opResult)
		m.err = nil
		if res.err != nil {
			m.logger.Error("operation failed", "op", res.op, "error", res.err)
			m.err = res.err
		} else {
			m.status = statusFor(res.op)
		}
		switch {
		case res.op == "register" && res.err == nil:
			m.login.registering = false
			m.rec.RequestLoginPrompt()
		case res.op == "login" && res.err == nil:
			m.login.reset()
		}
		m.sync()
		return m, nil

	case MsgEvent:
		m.sync()
		return m, m.waitForEvent()

	case MsgDetailFetched:
		res := msg.data.(detailResult)
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.detail = res.detail
		return m, nil

	case MsgEventsClosed:
		m.events = nil
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.nextView):
		m.rec.SetView(m.shiftView(1))
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.prevView):
		m.rec.SetView(m.shiftView(-1))
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.search):
		return m, m.openInput(inputSearch, "Search anime…", "")

	case key.Matches(msg, m.keys.recommend):
		seed := ""
		if a, ok := m.selected(); ok {
			seed = a.Title
		}
		return m, m.openInput(inputRecommend, "Similar to title…", seed)

	case msg.String() == "g":
		return m, m.openInput(inputGenre, "Genre filter (empty clears)…", m.filter.Genre)

	case key.Matches(msg, m.keys.sort):
		m.filter.Sort = nextSort(m.filter.Sort)
		m.status = "sort: " + sortLabel(m.filter.Sort)
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.favorite):
		a, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.rec.IsFavorite(a.ID()) {
			return m, m.run("unfavorite", func(ctx context.Context) error { return m.rec.RemoveFavorite(ctx, a.ID()) })
		}
		return m, m.run("favorite", func(ctx context.Context) error { return m.rec.AddFavorite(ctx, a) })

	case key.Matches(msg, m.keys.enter):
		if a, ok := m.selected(); ok && a.ID() != 0 {
			return m, m.fetchDetail(a.ID())
		}
		return m, nil

	case key.Matches(msg, m.keys.open):
		if a, ok := m.selected(); ok {
			m.openPage(a)
		}
		return m, nil

	case key.Matches(msg, m.keys.login):
		if !m.state.LoggedIn {
			m.rec.RequestLoginPrompt()
			m.sync()
			return m, m.login.focus(0)
		}
		return m, nil

	case key.Matches(msg, m.keys.logout):
		if m.state.LoggedIn {
			m.rec.Logout()
			m.status = "logged out"
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		return m, m.run("refresh", func(ctx context.Context) error {
			if err := m.rec.LoadPopular(ctx); err != nil {
				return err
			}
			if m.rec.Snapshot().LoggedIn {
				return m.rec.Refresh(ctx)
			}
			return nil
		})

	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.rec.ClearNotice()
		m.sync()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.closeInput()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()

		switch mode {
		case inputSearch:
			if value == "" {
				return m, nil
			}
			return m, m.run("search", func(ctx context.Context) error { return m.rec.Search(ctx, value) })
		case inputRecommend:
			if value == "" {
				return m, nil
			}
			return m, m.run("recommend", func(ctx context.Context) error { return m.rec.GetRecommendations(ctx, value) })
		case inputGenre:
			m.filter.Genre = value
			m.sync()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.detail = nil
	case key.Matches(msg, m.keys.open):
		m.openPage(m.detail.Anime)
	case key.Matches(msg, m.keys.favorite):
		a := m.detail.Anime
		if m.rec.IsFavorite(a.ID()) {
			return m, m.run("unfavorite", func(ctx context.Context) error { return m.rec.RemoveFavorite(ctx, a.ID()) })
		}
		return m, m.run("favorite", func(ctx context.Context) error { return m.rec.AddFavorite(ctx, a) })
	case key.Matches(msg, m.keys.recommend):
		title := m.detail.Anime.Title
		m.detail = nil
		return m, m.run("recommend", func(ctx context.Context) error { return m.rec.GetRecommendations(ctx, title) })
	}
	return m, nil
}

// sync re-reads the reconciler state and rebuilds the visible list.
func (m *Model) sync() {
	m.state = m.rec.Snapshot()

	items := m.filter.Apply(m.collection())
	idx := m.list.Index()
	m.list.SetItems(animeItems(items, m.rec.IsFavorite))
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.list.Title = viewTitle(m.state.View)

	if m.state.LoginPrompt && !m.login.inputs[m.login.focused].Focused() {
		m.login.focus(m.login.focused)
	}

	if m.history != nil && m.state.View == reconciler.ViewHome {
		recent, err := m.history.Recent(5)
		if err != nil {
			m.logger.Warn("failed to read search history", "error", err)
		}
		m.recent = recent
	}
}

// collection returns the anime backing the active view.
func (m *Model) collection() []models.Anime {
	switch m.state.View {
	case reconciler.ViewSearch:
		return m.state.SearchResults
	case reconciler.ViewPopular:
		return m.state.Popular
	case reconciler.ViewRecommendations:
		return m.state.Recommendations
	case reconciler.ViewFavorites:
		out := make([]models.Anime, len(m.state.Favorites))
		for i, f := range m.state.Favorites {
			out[i] = f.Anime()
		}
		return out
	default:
		return nil
	}
}

func (m *Model) selected() (models.Anime, bool) {
	item, ok := m.list.SelectedItem().(animeItem)
	if !ok {
		return models.Anime{}, false
	}
	return item.anime, true
}

func (m *Model) shiftView(delta int) reconciler.View {
	i := slices.Index(reconciler.Views, m.state.View)
	n := len(reconciler.Views)
	return reconciler.Views[((i+delta)%n+n)%n]
}

func (m *Model) openInput(mode inputMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

// openPage opens the catalog page, preferring the catalog's own id.
func (m *Model) openPage(a models.Anime) {
	id := a.MalID
	if id == 0 {
		id = a.ID()
	}
	if id == 0 {
		return
	}
	if err := shared.OpenBrowser(shared.AnimePageURL(strconv.FormatInt(id, 10))); err != nil {
		m.err = err
	}
}

// run executes op against the reconciler off the update loop.
func (m *Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.status = ""
	return func() tea.Msg {
		return opDoneMsg(op, fn(m.ctx))
	}
}

func (m *Model) fetchDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.rec.AnimeDetail(m.ctx, id)
		return detailFetchedMsg(detail, err)
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return Msg{kind: MsgEventsClosed}
		}
		return eventMsg(e)
	}
}

func statusFor(op string) string {
	switch op {
	case "favorite":
		return "added to favorites"
	case "unfavorite":
		return "removed from favorites"
	case "login":
		return "logged in"
	case "register":
		return "account created, log in to continue"
	case "refresh":
		return "refreshed"
	default:
		return ""
	}
}

func nextSort(s models.SortOrder) models.SortOrder {
	switch s {
	case models.SortNone:
		return models.SortPopular
	case models.SortPopular:
		return models.SortScore
	case models.SortScore:
		return models.SortTitle
	default:
		return models.SortNone
	}
}

func sortLabel(s models.SortOrder) string {
	if s == models.SortNone {
		return "backend order"
	}
	return string(s)
}

func viewTitle(v reconciler.View) string {
	switch v {
	case reconciler.ViewSearch:
		return "Search Results"
	case reconciler.ViewPopular:
		return "Popular"
	case reconciler.ViewFavorites:
		return "Favorites"
	case reconciler.ViewRecommendations:
		return "Recommendations"
	case reconciler.ViewMyPage:
		return "My Page"
	default:
		return "Home"
	}
}

// errorText renders err for the status line; session failures read as a prompt to log in.
func errorText(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "log in to manage favorites"
	case errors.Is(err, shared.ErrUnauthorized):
		return "session expired, log in again"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
