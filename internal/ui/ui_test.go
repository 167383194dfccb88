package ui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/reconciler"
	tu "github.com/desertthunder/anirec/internal/testing"
)

// stubBackend serves fixed collections; account calls succeed with empty results.
type stubBackend struct {
	popular []models.Anime
	search  []models.Anime
}

func (s *stubBackend) Search(context.Context, string) ([]models.Anime, error) { return s.search, nil }
func (s *stubBackend) Recommend(context.Context, string) ([]models.Anime, error) {
	return s.popular, nil
}
func (s *stubBackend) Popular(context.Context) ([]models.Anime, error) { return s.popular, nil }
func (s *stubBackend) Anime(_ context.Context, id int64) (*models.Anime, error) {
	return &models.Anime{AnimeID: id, Title: "Naruto"}, nil
}
func (s *stubBackend) Register(context.Context, string, string) (*models.User, error) {
	return &models.User{}, nil
}
func (s *stubBackend) Login(context.Context, string, string) (string, error) { return "tok", nil }
func (s *stubBackend) Me(context.Context) (*models.User, error) {
	return &models.User{ID: 1, Email: "a@b.c"}, nil
}
func (s *stubBackend) UpdatePassword(context.Context, string) (*models.User, error) {
	return &models.User{}, nil
}
func (s *stubBackend) DeleteAccount(context.Context) error { return nil }
func (s *stubBackend) AddFavorite(_ context.Context, req models.FavoriteRequest) (*models.Favorite, error) {
	return &models.Favorite{AnimeID: req.AnimeID}, nil
}
func (s *stubBackend) Favorites(context.Context) ([]models.Favorite, error) { return nil, nil }
func (s *stubBackend) RemoveFavorite(context.Context, int64) error         { return nil }
func (s *stubBackend) PersonalRecommendations(context.Context) ([]models.Anime, error) {
	return nil, nil
}
func (s *stubBackend) SubmitFeedback(context.Context, models.Feedback) error { return nil }

func newTestModel(t *testing.T, b *stubBackend) *Model {
	t.Helper()
	rec := reconciler.New(b, tu.NewTokenStore(""), reconciler.Options{})
	m := NewModel(context.Background(), rec, Options{Logger: log.New(io.Discard)})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// exec runs cmd and feeds its message back into the model.
func exec(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func TestModel(t *testing.T) {
	popular := []models.Anime{
		{AnimeID: 1, Title: "Naruto", Score: 8},
		{AnimeID: 2, Title: "Bleach", Score: 7.9},
		{AnimeID: 1, Title: "Naruto (dup)"},
	}

	t.Run("Tab Navigates To Popular", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{popular: popular})
		m.rec.Initialize(context.Background())
		m.Update(opDoneMsg("initialize", nil))

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m.Update(tea.KeyMsg{Type: tea.KeyTab})

		if m.state.View != reconciler.ViewPopular {
			t.Fatalf("expected popular view, got %s", m.state.View)
		}
		if len(m.list.Items()) != 2 {
			t.Errorf("expected 2 deduplicated items, got %d", len(m.list.Items()))
		}
		if !strings.Contains(m.View(), "Bleach") {
			t.Error("expected list to render titles")
		}
	})

	t.Run("Shift Tab Wraps", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{})
		m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})

		if m.state.View != reconciler.ViewRecommendations {
			t.Errorf("expected recommendations view, got %s", m.state.View)
		}
	})

	t.Run("Search Prompt", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{search: popular})

		m.Update(runes("/"))
		if m.mode != inputSearch {
			t.Fatal("expected search prompt open")
		}
		m.input.SetValue("naruto")

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		exec(t, m, cmd)

		if m.mode != inputNone {
			t.Error("expected prompt closed")
		}
		if m.state.View != reconciler.ViewSearch || m.state.SearchKeyword != "naruto" {
			t.Errorf("expected search view for naruto, got %s %q", m.state.View, m.state.SearchKeyword)
		}
		if len(m.list.Items()) != 2 {
			t.Errorf("expected 2 results, got %d", len(m.list.Items()))
		}
	})

	t.Run("Escape Cancels Prompt", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{})
		m.Update(runes("/"))
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.mode != inputNone {
			t.Error("expected prompt closed")
		}
		if m.state.View != reconciler.ViewHome {
			t.Error("expected view unchanged")
		}
	})

	t.Run("Favorite While Signed Out Shows Login", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{search: popular})
		m.rec.Search(context.Background(), "naruto")
		m.sync()

		_, cmd := m.Update(runes("f"))
		exec(t, m, cmd)

		if !m.state.LoginPrompt {
			t.Fatal("expected login prompt")
		}
		if !strings.Contains(m.View(), "Log in") {
			t.Error("expected login form to render")
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.state.LoginPrompt {
			t.Error("expected prompt dismissed")
		}
	})

	t.Run("Login Form Submits", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{})
		m.Update(runes("L"))
		if !m.state.LoginPrompt {
			t.Fatal("expected login prompt")
		}

		m.login.inputs[0].SetValue("a@b.c")
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m.login.inputs[1].SetValue("pw")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		exec(t, m, cmd)

		if !m.state.LoggedIn || m.state.LoginPrompt {
			t.Errorf("expected logged in with prompt closed, got %+v", m.state)
		}
		if m.status != "logged in" {
			t.Errorf("expected status, got %q", m.status)
		}
	})

	t.Run("Sort Cycles", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{})
		for _, want := range []models.SortOrder{models.SortPopular, models.SortScore, models.SortTitle, models.SortNone} {
			m.Update(runes("s"))
			if m.filter.Sort != want {
				t.Errorf("expected sort %q, got %q", want, m.filter.Sort)
			}
		}
	})

	t.Run("Detail", func(t *testing.T) {
		m := newTestModel(t, &stubBackend{popular: popular})
		m.rec.LoadPopular(context.Background())
		m.rec.SetView(reconciler.ViewPopular)
		m.sync()

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		exec(t, m, cmd)

		if m.detail == nil || m.detail.Anime.AnimeID != 1 {
			t.Fatalf("expected detail for first item, got %+v", m.detail)
		}
		if !strings.Contains(m.View(), "Similar") {
			t.Error("expected similar titles to render")
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.detail != nil {
			t.Error("expected detail closed")
		}
	})
}

func TestAnimeItem(t *testing.T) {
	tests := []struct {
		name  string
		item  animeItem
		title string
		desc  string
	}{
		{
			name:  "full",
			item:  animeItem{anime: models.Anime{Title: "Naruto", Score: 8, Genres: []string{"Action"}, FavoritesCount: 3}, favorite: true},
			title: "★ Naruto",
			desc:  "8.00 • Action • ♥ 3",
		},
		{
			name:  "bare",
			item:  animeItem{anime: models.Anime{Title: "Bleach"}},
			title: "Bleach",
			desc:  "no details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.item.Title() != tt.title {
				t.Errorf("Title() = %q, want %q", tt.item.Title(), tt.title)
			}
			if tt.item.Description() != tt.desc {
				t.Errorf("Description() = %q, want %q", tt.item.Description(), tt.desc)
			}
		})
	}
}
