package reconciler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/shared"
)

// View is the active top-level screen.
type View string

const (
	ViewHome            View = "home"
	ViewSearch          View = "search"
	ViewPopular         View = "popular"
	ViewFavorites       View = "favorites"
	ViewMyPage          View = "mypage"
	ViewRecommendations View = "recommendations"
)

// Views lists every view in navigation order.
var Views = []View{ViewHome, ViewSearch, ViewPopular, ViewFavorites, ViewMyPage, ViewRecommendations}

func (v View) String() string { return string(v) }

// ParseView parses a view name, case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Views, v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown view %q", shared.ErrInvalidArgument, s)
}

// State is a point-in-time copy of everything the reconciler owns.
type State struct {
	LoggedIn        bool
	User            *models.User
	Favorites       []models.Favorite
	Recommendations []models.Anime
	Popular         []models.Anime
	SearchResults   []models.Anime
	SearchKeyword   string
	View            View
	Loading         bool
	LoginPrompt     bool
	Notice          string
}

func initialState() State {
	return State{
		Favorites:       []models.Favorite{},
		Recommendations: []models.Anime{},
		Popular:         []models.Anime{},
		SearchResults:   []models.Anime{},
		View:            ViewHome,
	}
}

// clone deep-copies the slices and the user so callers cannot mutate owned state.
func (s State) clone() State {
	out := s
	out.Favorites = slices.Clone(s.Favorites)
	out.Recommendations = slices.Clone(s.Recommendations)
	out.Popular = slices.Clone(s.Popular)
	out.SearchResults = slices.Clone(s.SearchResults)
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// EventKind classifies an [Event].
type EventKind int

const (
	// EventChanged is sent after any state change.
	EventChanged EventKind = iota
	// EventLoginPrompt is sent when the login prompt should be shown.
	EventLoginPrompt
	// EventSessionEnded is sent after logout or an unauthorized teardown.
	EventSessionEnded
	// EventNotice is sent when a user-visible error is set.
	EventNotice
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventLoginPrompt:
		return "login_prompt"
	case EventSessionEnded:
		return "session_ended"
	case EventNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Event notifies observers; Message is set for [EventNotice].
type Event struct {
	Kind    EventKind
	Message string
}
