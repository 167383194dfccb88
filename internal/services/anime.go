package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/anirec/internal/models"
	"golang.org/x/oauth2"
)

// AnimeService is the typed client for the recommendation backend.
type AnimeService struct {
	api *APIService
}

// NewAnimeService wraps api with one method per backend endpoint.
func NewAnimeService(api *APIService) *AnimeService {
	return &AnimeService{api: api}
}

// API returns the underlying transport.
func (s *AnimeService) API() *APIService { return s.api }

// Home probes GET / and returns the decoded body.
func (s *AnimeService) Home(ctx context.Context) (any, error) {
	resp, err := s.call(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	if !resp.IsJSON {
		return string(resp.Body), nil
	}
	return resp.JSONData, nil
}

// Search returns the anime matching keyword.
func (s *AnimeService) Search(ctx context.Context, keyword string) ([]models.Anime, error) {
	return s.list(ctx, "/animes/search?keyword="+url.QueryEscape(keyword))
}

// List returns the first limit anime in catalog order; limit <= 0 leaves paging to the backend.
func (s *AnimeService) List(ctx context.Context, limit int) ([]models.Anime, error) {
	path := "/animes"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	return s.list(ctx, path)
}

// Recommend returns similarity recommendations seeded by title.
func (s *AnimeService) Recommend(ctx context.Context, title string) ([]models.Anime, error) {
	return s.list(ctx, "/animes/recommend?title="+url.QueryEscape(title))
}

// Popular returns the popular listing.
func (s *AnimeService) Popular(ctx context.Context) ([]models.Anime, error) {
	return s.list(ctx, "/animes/popular")
}

// Anime returns a single anime by id.
func (s *AnimeService) Anime(ctx context.Context, id int64) (*models.Anime, error) {
	resp, err := s.call(ctx, http.MethodGet, "/animes/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}

	var anime models.Anime
	if err := json.Unmarshal(resp.Body, &anime); err != nil {
		return nil, fmt.Errorf("failed to decode anime: %w", err)
	}
	return &anime, nil
}

// Register creates an account.
func (s *AnimeService) Register(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.call(ctx, http.MethodPost, "/users/register", models.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return decodeUser(resp.Body)
}

// Login exchanges email and password for a bearer token.
//
// The backend's login endpoint is an OAuth2 password grant: a form-encoded
// username/password post answered with {"access_token": ..., "token_type": "bearer"}.
func (s *AnimeService) Login(ctx context.Context, email, password string) (string, error) {
	if err := s.api.wait(ctx); err != nil {
		return "", err
	}

	cfg := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.api.baseURL + "/users/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.api.httpClient)
	token, err := cfg.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return "", newAPIError(http.MethodPost, "/users/login", re.Response.StatusCode, re.Body)
		}
		return "", fmt.Errorf("login request failed: %w", err)
	}

	s.api.logger.Debug("login succeeded", "token_type", token.Type())
	return token.AccessToken, nil
}

// Me returns the signed-in identity.
func (s *AnimeService) Me(ctx context.Context) (*models.User, error) {
	resp, err := s.call(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(resp.Body)
}

// UpdatePassword changes the signed-in user's password.
func (s *AnimeService) UpdatePassword(ctx context.Context, newPassword string) (*models.User, error) {
	resp, err := s.call(ctx, http.MethodPut, "/users/me", models.PasswordChange{NewPassword: newPassword})
	if err != nil {
		return nil, err
	}
	return decodeUser(resp.Body)
}

// DeleteAccount deletes the signed-in user.
func (s *AnimeService) DeleteAccount(ctx context.Context) error {
	_, err := s.call(ctx, http.MethodDelete, "/users/me", nil)
	return err
}

// AddFavorite favorites an anime for the signed-in user.
func (s *AnimeService) AddFavorite(ctx context.Context, req models.FavoriteRequest) (*models.Favorite, error) {
	resp, err := s.call(ctx, http.MethodPost, "/users/me/favorites", req)
	if err != nil {
		return nil, err
	}

	var fav models.Favorite
	if err := json.Unmarshal(resp.Body, &fav); err != nil {
		// The favorite was stored; only the echo is unreadable.
		s.api.logger.Warn("unexpected favorite response", "error", err)
		return &models.Favorite{AnimeID: req.AnimeID, Title: req.Title, ImageURL: req.ImageURL}, nil
	}
	return &fav, nil
}

// Favorites lists the signed-in user's favorites.
func (s *AnimeService) Favorites(ctx context.Context) ([]models.Favorite, error) {
	resp, err := s.call(ctx, http.MethodGet, "/users/me/favorites", nil)
	if err != nil {
		return nil, err
	}
	return models.DecodeFavoriteList(resp.Body), nil
}

// RemoveFavorite removes animeID from the signed-in user's favorites.
func (s *AnimeService) RemoveFavorite(ctx context.Context, animeID int64) error {
	_, err := s.call(ctx, http.MethodDelete, "/users/me/favorites/"+strconv.FormatInt(animeID, 10), nil)
	return err
}

// PersonalRecommendations returns recommendations derived from the user's favorites.
func (s *AnimeService) PersonalRecommendations(ctx context.Context) ([]models.Anime, error) {
	return s.list(ctx, "/users/me/recommendations")
}

// SubmitFeedback records whether a recommendation set was useful.
func (s *AnimeService) SubmitFeedback(ctx context.Context, fb models.Feedback) error {
	_, err := s.call(ctx, http.MethodPost, "/users/me/feedback", fb)
	return err
}

func (s *AnimeService) list(ctx context.Context, path string) ([]models.Anime, error) {
	resp, err := s.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return models.DecodeAnimeList(resp.Body), nil
}

// call performs a request with an optional JSON body and turns non-2xx statuses into [*APIError].
func (s *AnimeService) call(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	var (
		resp *APIResponse
		err  error
	)

	switch method {
	case http.MethodGet:
		resp, err = s.api.Get(ctx, path)
	case http.MethodDelete:
		resp, err = s.api.Delete(ctx, path)
	default:
		data, mErr := json.Marshal(body)
		if mErr != nil {
			return nil, fmt.Errorf("failed to encode request: %w", mErr)
		}
		if method == http.MethodPut {
			resp, err = s.api.Put(ctx, path, data)
		} else {
			resp, err = s.api.Post(ctx, path, data)
		}
	}
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, newAPIError(method, path, resp.StatusCode, resp.Body)
	}
	return resp, nil
}

func decodeUser(body []byte) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}
