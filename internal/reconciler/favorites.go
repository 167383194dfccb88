package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/shared"
)

// AddFavorite favorites anime and refreshes dependent collections.
//
// Signed out, it only raises the login prompt.
func (r *Reconciler) AddFavorite(ctx context.Context, anime models.Anime) error {
	if !r.requireSession() {
		return shared.ErrNotAuthenticated
	}
	if anime.ID() == 0 {
		return fmt.Errorf("%w: %q has no id", shared.ErrInvalidInput, anime.Title)
	}

	if _, err := r.backend.AddFavorite(ctx, models.NewFavoriteRequest(anime)); err != nil {
		return r.mutationFailed("add favorite", err, shared.ErrFavoriteFailed, "Failed to add favorite.")
	}

	r.logger.Info("favorite added", "anime_id", anime.ID(), "title", anime.Title)
	r.Refresh(ctx)
	return nil
}

// RemoveFavorite removes animeID from favorites and refreshes dependent collections.
func (r *Reconciler) RemoveFavorite(ctx context.Context, animeID int64) error {
	if !r.requireSession() {
		return shared.ErrNotAuthenticated
	}

	if err := r.backend.RemoveFavorite(ctx, animeID); err != nil {
		return r.mutationFailed("remove favorite", err, shared.ErrFavoriteFailed, "Failed to remove favorite.")
	}

	r.logger.Info("favorite removed", "anime_id", animeID)
	r.Refresh(ctx)
	return nil
}

// SubmitFeedback records whether a recommendation set ([models.FeedbackPersonal]
// or [models.FeedbackSimilar]) was useful.
func (r *Reconciler) SubmitFeedback(ctx context.Context, kind string, satisfied bool, text string) error {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != models.FeedbackPersonal && kind != models.FeedbackSimilar {
		return fmt.Errorf("%w: unknown recommendation type %q", shared.ErrInvalidInput, kind)
	}
	if !r.requireSession() {
		return shared.ErrNotAuthenticated
	}

	fb := models.Feedback{RecommendationType: kind, IsSatisfied: satisfied, FeedbackText: strings.TrimSpace(text)}
	if err := r.backend.SubmitFeedback(ctx, fb); err != nil {
		return r.mutationFailed("submit feedback", err, shared.ErrFeedbackFailed, "Failed to send feedback.")
	}

	r.logger.Info("feedback submitted", "type", kind, "satisfied", satisfied)
	return nil
}
