package models

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder selects how [Filter.Apply] orders a list.
type SortOrder string

const (
	SortNone    SortOrder = ""
	SortPopular SortOrder = "popular" // favorites count, descending
	SortScore   SortOrder = "score"   // score, descending
	SortTitle   SortOrder = "title"   // title, ascending, case-insensitive
)

// ParseSortOrder validates a user-supplied sort name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortPopular, SortScore, SortTitle:
		return o, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q (want popular, score or title)", s)
	}
}

// Filter narrows and orders an anime list for display. The zero Filter keeps everything in order.
type Filter struct {
	Genre    string // empty matches every genre
	MinScore float64
	Sort     SortOrder
}

// IsZero reports whether the filter would return its input unchanged.
func (f Filter) IsZero() bool {
	return f.Genre == "" && f.MinScore <= 0 && f.Sort == SortNone
}

// Apply returns a new slice holding the matching items, ordered by f.Sort.
// Ties keep their input order.
func (f Filter) Apply(items []Anime) []Anime {
	out := make([]Anime, 0, len(items))
	for _, a := range items {
		if f.Genre != "" && !a.HasGenre(f.Genre) {
			continue
		}
		if f.MinScore > 0 && a.Score < f.MinScore {
			continue
		}
		out = append(out, a)
	}

	switch f.Sort {
	case SortPopular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].FavoritesCount > out[j].FavoritesCount })
	case SortScore:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title) })
	}

	return out
}
