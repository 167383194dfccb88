package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
)

// SimilarLimit caps the similar titles attached to an [models.AnimeDetail].
const SimilarLimit = 6

// Search replaces the search results with the deduplicated matches for keyword
// and switches to the search view. On failure prior results and view are kept.
func (r *Reconciler) Search(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("%w: empty search keyword", shared.ErrInvalidInput)
	}

	r.setLoading(true)
	defer r.setLoading(false)

	results, err := r.backend.Search(ctx, keyword)
	if err != nil {
		r.logger.Error("search failed", "keyword", keyword, "error", err)
		return fmt.Errorf("search %q: %w", keyword, err)
	}

	results = models.Dedupe(results)
	r.update(func(s *State) {
		s.SearchResults = results
		s.SearchKeyword = keyword
		s.View = ViewSearch
	})
	r.logger.Info("search", "keyword", keyword, "count", len(results))

	if r.history != nil {
		if err := r.history.Record(keyword, len(results)); err != nil {
			r.logger.Warn("failed to record search", "keyword", keyword, "error", err)
		}
	}
	return nil
}

// GetRecommendations replaces the recommendations with titles similar to title
// and switches to the recommendations view. On failure state is kept.
func (r *Reconciler) GetRecommendations(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: empty seed title", shared.ErrInvalidInput)
	}

	r.setLoading(true)
	defer r.setLoading(false)

	recs, err := r.backend.Recommend(ctx, title)
	if err != nil {
		r.logger.Error("recommendations failed", "title", title, "error", err)
		return fmt.Errorf("recommend %q: %w", title, err)
	}

	recs = models.Dedupe(recs)
	r.update(func(s *State) {
		s.Recommendations = recs
		s.View = ViewRecommendations
	})
	r.logger.Info("recommendations", "title", title, "count", len(recs))
	return nil
}

// LoadPopular replaces the popular collection. It does not change the view.
func (r *Reconciler) LoadPopular(ctx context.Context) error {
	popular, err := r.backend.Popular(ctx)
	if err != nil {
		r.logger.Error("failed to load popular anime", "error", err)
		return fmt.Errorf("popular: %w", err)
	}

	popular = models.Dedupe(popular)
	r.update(func(s *State) { s.Popular = popular })
	return nil
}

// Refresh re-fetches favorites and, when there is at least one, personal recommendations.
//
// A 404 on either fetch is an empty collection, not an error. Other favorites
// failures leave state as it was and are returned; a 401 also ends the session.
func (r *Reconciler) Refresh(ctx context.Context) error {
	favorites, err := r.backend.Favorites(ctx)
	if err != nil {
		switch {
		case services.IsNotFound(err):
			r.update(func(s *State) {
				s.Favorites = []models.Favorite{}
				s.Recommendations = []models.Anime{}
			})
			return nil
		case services.IsUnauthorized(err):
			r.logger.Warn("session rejected during refresh", "error", err)
			r.endSession(false)
			return fmt.Errorf("favorites: %w", shared.ErrUnauthorized)
		default:
			r.logger.Error("failed to load favorites", "error", err)
			return fmt.Errorf("favorites: %w", err)
		}
	}

	favorites = models.Dedupe(favorites)
	if len(favorites) == 0 {
		r.update(func(s *State) {
			s.Favorites = favorites
			s.Recommendations = []models.Anime{}
		})
		return nil
	}
	r.update(func(s *State) { s.Favorites = favorites })

	recs, err := r.backend.PersonalRecommendations(ctx)
	switch {
	case err == nil:
		recs = models.Dedupe(recs)
	case services.IsNotFound(err):
		recs = []models.Anime{}
	default:
		r.logger.Error("failed to load personal recommendations", "error", err)
		recs = []models.Anime{}
	}

	r.update(func(s *State) { s.Recommendations = recs })
	return nil
}

// AnimeDetail fetches one anime and up to [SimilarLimit] titles similar to it.
// State is not modified; a failed similarity lookup yields no similar titles.
func (r *Reconciler) AnimeDetail(ctx context.Context, id int64) (*models.AnimeDetail, error) {
	anime, err := r.backend.Anime(ctx, id)
	if err != nil {
		if services.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %d", shared.ErrAnimeNotFound, id)
		}
		return nil, fmt.Errorf("anime %d: %w", id, err)
	}

	detail := &models.AnimeDetail{Anime: *anime, Similar: []models.Anime{}}
	if anime.Title == "" {
		return detail, nil
	}

	similar, err := r.backend.Recommend(ctx, anime.Title)
	if err != nil {
		r.logger.Warn("similar titles unavailable", "title", anime.Title, "error", err)
		return detail, nil
	}

	for _, a := range models.Dedupe(similar) {
		if len(detail.Similar) == SimilarLimit {
			break
		}
		if a.Key() == anime.Key() {
			continue
		}
		detail.Similar = append(detail.Similar, a)
	}
	return detail, nil
}
