package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/anirec/internal/models"
)

var _ list.Item = animeItem{}

// animeItem wraps [models.Anime] to implement [list.Item].
type animeItem struct {
	anime    models.Anime
	favorite bool
}

func (i animeItem) FilterValue() string { return i.anime.Title }
func (i animeItem) Title() string {
	if i.favorite {
		return "★ " + i.anime.Title
	}
	return i.anime.Title
}

func (i animeItem) Description() string {
	var parts []string
	if i.anime.Score > 0 {
		parts = append(parts, fmt.Sprintf("%.2f", i.anime.Score))
	}
	if len(i.anime.Genres) > 0 {
		parts = append(parts, i.anime.GenreLine())
	}
	if i.anime.FavoritesCount > 0 {
		parts = append(parts, fmt.Sprintf("♥ %d", i.anime.FavoritesCount))
	}
	if len(parts) == 0 {
		return "no details"
	}
	return strings.Join(parts, " • ")
}

// animeItems converts a collection, marking favorites with isFavorite.
func animeItems(items []models.Anime, isFavorite func(int64) bool) []list.Item {
	out := make([]list.Item, len(items))
	for i, a := range items {
		out[i] = animeItem{anime: a, favorite: isFavorite(a.ID())}
	}
	return out
}
