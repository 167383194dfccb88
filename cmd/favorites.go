package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/anirec/internal/formatter"
	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
	"github.com/desertthunder/anirec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the signed-in user's favorites.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	favorites := r.rec.Snapshot().Favorites
	if cmd.Bool("json") {
		return r.writeJSON(favorites, true)
	}

	items := make([]models.Anime, len(favorites))
	for i, f := range favorites {
		items[i] = f.Anime()
	}
	return r.writeAnimeList("Favorites", items, false)
}

// FavoritesAdd looks up an anime by id and favorites it.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}
	if r.rec.IsFavorite(id) {
		return r.writePlain("Anime %d is already a favorite.\n", id)
	}

	anime, err := r.backend.Anime(ctx, id)
	if err != nil {
		if services.IsNotFound(err) {
			return fmt.Errorf("%w: %d", shared.ErrAnimeNotFound, id)
		}
		return err
	}

	if err := r.rec.AddFavorite(ctx, *anime); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to favorites\n", anime.Title)
}

// FavoritesRemove removes an anime from favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}
	if !r.rec.IsFavorite(id) {
		return r.writePlain("Anime %d is not a favorite.\n", id)
	}

	if err := r.rec.RemoveFavorite(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %d from favorites\n", id)
}

// FavoritesExport writes favorites in the chosen format.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	export := formatter.FavoritesExport(r.rec.Snapshot().Favorites)
	output := cmd.String("output")

	if format == formatter.FormatMarkdown {
		result, err := formatter.WriteMarkdownExport(export, output, cmd.Bool("images"), r.output)
		if err != nil {
			return err
		}
		r.logger.Info("exported favorites", "dir", result.Directory, "files", len(result.Files))
		r.writePlain("✓ Exported %d favorites to %s\n", len(export.Anime), result.Directory)
		if n := len(result.Images); n > 0 {
			r.writePlain("  %d images saved\n", n)
		}
		return nil
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}
	r.logger.Info("exported favorites", "path", path, "format", format)
	return r.writePlain("✓ Exported %d favorites to %s\n", len(export.Anime), path)
}

// Recommendations prints personal recommendations. Accounts without favorites get none.
func (r *Runner) Recommendations(ctx context.Context, cmd *cli.Command) error {
	filter, err := r.filter(cmd)
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	state := r.rec.Snapshot()
	if len(state.Favorites) == 0 && !cmd.Bool("json") {
		return r.writePlain("Add favorites to get personal recommendations.\n")
	}
	return r.writeAnimeList("Recommended for you", filter.Apply(state.Recommendations), cmd.Bool("json"))
}

// FavoritesSimilar exports the titles similar to each favorite.
func (r *Runner) FavoritesSimilar(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	favorites := r.rec.Snapshot().Favorites
	if len(favorites) == 0 {
		return r.writePlain("No favorites to export.\n")
	}

	seeds := make([]models.Anime, len(favorites))
	for i, f := range favorites {
		seeds[i] = f.Anime()
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := r.drainProgress(progress)

	result, err := r.engine.ExportSimilar(ctx, progress, seeds, tasks.SimilarExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Backend.RequestsPerSecond,
		Limit:      cmd.Int("limit"),
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlainln("✓ %d exported, %d failed in %s", result.Successful, result.Failed, result.OutputDirectory)
	}
	return err
}
