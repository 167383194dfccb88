package models

import (
	"encoding/json"
	"fmt"
)

// User is the signed-in identity returned by GET /users/me.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Favorite is an anime the signed-in user has favorited.
//
// ID and UserID are backend row fields; AnimeID is the identity.
type Favorite struct {
	ID       int64  `json:"id,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	AnimeID  int64  `json:"anime_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
}

// Key is the identity used for deduplication and favorite lookups.
func (f Favorite) Key() string {
	return idKey(f.AnimeID)
}

// Anime converts the favorite into an anime summary for list rendering.
func (f Favorite) Anime() Anime {
	return Anime{AnimeID: f.AnimeID, Title: f.Title, ImageURL: f.ImageURL}
}

func (f *Favorite) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       flexID `json:"id"`
		UserID   flexID `json:"user_id"`
		AnimeID  flexID `json:"anime_id"`
		MalID    flexID `json:"mal_id"`
		Title    string `json:"title"`
		ImageURL string `json:"image_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode favorite: %w", err)
	}

	animeID := int64(raw.AnimeID)
	if animeID == 0 {
		animeID = int64(raw.MalID)
	}

	*f = Favorite{
		ID:       int64(raw.ID),
		UserID:   int64(raw.UserID),
		AnimeID:  animeID,
		Title:    raw.Title,
		ImageURL: raw.ImageURL,
	}
	return nil
}

// FavoriteRequest is the body of POST /users/me/favorites.
type FavoriteRequest struct {
	AnimeID  int64  `json:"anime_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
}

// NewFavoriteRequest builds the request body from whichever id the anime carries.
func NewFavoriteRequest(a Anime) FavoriteRequest {
	return FavoriteRequest{AnimeID: a.ID(), Title: a.Title, ImageURL: a.ImageURL}
}

// Feedback kinds accepted by POST /users/me/feedback.
const (
	FeedbackPersonal = "personal"
	FeedbackSimilar  = "similar"
)

// Feedback is the body of POST /users/me/feedback.
type Feedback struct {
	RecommendationType string `json:"recommendation_type"`
	IsSatisfied        bool   `json:"is_satisfied"`
	FeedbackText       string `json:"feedback_text"`
}

// Credentials is the body of POST /users/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordChange is the body of PUT /users/me.
type PasswordChange struct {
	NewPassword string `json:"new_password"`
}
