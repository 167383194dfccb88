package reconciler

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/anirec/internal/models"
)

// Backend is the recommendation API as the reconciler consumes it.
type Backend interface {
	Search(ctx context.Context, keyword string) ([]models.Anime, error)
	Recommend(ctx context.Context, title string) ([]models.Anime, error)
	Popular(ctx context.Context) ([]models.Anime, error)
	Anime(ctx context.Context, id int64) (*models.Anime, error)
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*models.User, error)
	UpdatePassword(ctx context.Context, newPassword string) (*models.User, error)
	DeleteAccount(ctx context.Context) error
	AddFavorite(ctx context.Context, req models.FavoriteRequest) (*models.Favorite, error)
	Favorites(ctx context.Context) ([]models.Favorite, error)
	RemoveFavorite(ctx context.Context, animeID int64) error
	PersonalRecommendations(ctx context.Context) ([]models.Anime, error)
	SubmitFeedback(ctx context.Context, fb models.Feedback) error
}

// TokenStore persists the bearer credential between runs.
type TokenStore interface {
	Token() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// SearchRecorder keeps a log of submitted searches.
type SearchRecorder interface {
	Record(keyword string, resultCount int) error
}

// Options configures a [Reconciler].
type Options struct {
	Logger *log.Logger
	// Events, when set, receives non-blocking notifications.
	Events chan<- Event
	// History, when set, records each successful search.
	History SearchRecorder
}

// Reconciler owns session, favorites and result state and keeps it in step with the backend.
type Reconciler struct {
	backend Backend
	tokens  TokenStore
	logger  *log.Logger
	events  chan<- Event
	history SearchRecorder

	mu    sync.Mutex
	state State
}

// New creates a reconciler in the signed-out home state.
func New(backend Backend, tokens TokenStore, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Reconciler{
		backend: backend,
		tokens:  tokens,
		logger:  logger,
		events:  opts.Events,
		history: opts.History,
		state:   initialState(),
	}
}

// Snapshot returns a copy of the current state.
func (r *Reconciler) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// IsFavorite reports whether animeID is in the current favorites.
func (r *Reconciler) IsFavorite(animeID int64) bool {
	if animeID == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return models.Contains(r.state.Favorites, strconv.FormatInt(animeID, 10))
}

// SetView switches the active view. It has no network effect.
func (r *Reconciler) SetView(v View) {
	r.update(func(s *State) { s.View = v })
}

// RequestLoginPrompt asks the presentation layer to show the login form.
func (r *Reconciler) RequestLoginPrompt() {
	r.update(func(s *State) { s.LoginPrompt = true })
	r.emit(Event{Kind: EventLoginPrompt})
}

// DismissLoginPrompt hides the login form.
func (r *Reconciler) DismissLoginPrompt() {
	r.update(func(s *State) { s.LoginPrompt = false })
}

// ClearNotice removes the visible error message.
func (r *Reconciler) ClearNotice() {
	r.update(func(s *State) { s.Notice = "" })
}

// update applies fn under the lock and notifies observers.
func (r *Reconciler) update(fn func(s *State)) {
	r.mu.Lock()
	fn(&r.state)
	r.mu.Unlock()

	r.emit(Event{Kind: EventChanged})
}

func (r *Reconciler) loggedIn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.LoggedIn
}

func (r *Reconciler) setLoading(loading bool) {
	r.update(func(s *State) { s.Loading = loading })
}

func (r *Reconciler) setNotice(msg string) {
	r.update(func(s *State) { s.Notice = msg })
	r.emit(Event{Kind: EventNotice, Message: msg})
}

func (r *Reconciler) emit(e Event) {
	if r.events == nil {
		return
	}
	select {
	case r.events <- e:
	default:
		r.logger.Debug("event dropped", "kind", e.Kind)
	}
}
