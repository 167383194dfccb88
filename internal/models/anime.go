package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Anime is the canonical anime summary.
//
// AnimeID is assigned by the recommendation backend, MalID by the external catalog.
// Either may be zero depending on which source produced the record.
type Anime struct {
	AnimeID        int64    `json:"anime_id,omitempty"`
	MalID          int64    `json:"mal_id,omitempty"`
	Title          string   `json:"title"`
	ImageURL       string   `json:"image_url,omitempty"`
	Score          float64  `json:"score,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	FavoritesCount int      `json:"favorites_count"`
}

// ID returns the first non-zero of AnimeID and MalID.
func (a Anime) ID() int64 {
	if a.AnimeID != 0 {
		return a.AnimeID
	}
	return a.MalID
}

// Key is the identity used for deduplication; empty when the record carries no id.
func (a Anime) Key() string {
	return idKey(a.ID())
}

// GenreLine joins genres for single-line display.
func (a Anime) GenreLine() string {
	return strings.Join(a.Genres, ", ")
}

// HasGenre reports whether genre (case-insensitive) is one of the anime's genres.
func (a Anime) HasGenre(genre string) bool {
	for _, g := range a.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// rawAnime mirrors every shape the backend and catalog are known to send.
type rawAnime struct {
	AnimeID  flexID  `json:"anime_id"`
	MalID    flexID  `json:"mal_id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score"`
	Images   struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Genres         flexGenres `json:"genres"`
	FavoritesCount int        `json:"favorites_count"`
}

// UnmarshalJSON normalizes a backend or catalog record into an [Anime].
//
// A bare JSON string (search returns titles only) becomes an Anime with just a Title.
func (a *Anime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*a = Anime{Title: title}
		return nil
	}

	var raw rawAnime
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode anime: %w", err)
	}

	image := raw.ImageURL
	if image == "" {
		image = raw.Images.JPG.ImageURL
	}

	*a = Anime{
		AnimeID:        int64(raw.AnimeID),
		MalID:          int64(raw.MalID),
		Title:          raw.Title,
		ImageURL:       image,
		Score:          raw.Score,
		Genres:         []string(raw.Genres),
		FavoritesCount: raw.FavoritesCount,
	}
	return nil
}

// AnimeDetail is a single anime with titles similar to it.
type AnimeDetail struct {
	Anime   Anime   `json:"anime"`
	Similar []Anime `json:"similar"`
}

// flexID accepts a JSON number, a numeric string, or null.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid id %q", s)
		}
		n = int64(fl)
	}
	*f = flexID(n)
	return nil
}

// flexGenres accepts a JSON array of strings, an array of {"name": ...} objects,
// or a comma-separated string.
type flexGenres []string

func (g *flexGenres) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*g = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = splitGenres(s)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode genres: %w", err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			var named struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(item, &named); err != nil {
				continue
			}
			name = named.Name
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	*g = out
	return nil
}

func splitGenres(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func idKey(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
