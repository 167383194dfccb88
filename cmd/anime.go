package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/shared"
	"github.com/urfave/cli/v3"
)

// AnimeHome prints the backend's home payload.
func (r *Runner) AnimeHome(ctx context.Context, cmd *cli.Command) error {
	c, err := r.catalogService()
	if err != nil {
		return err
	}
	data, err := c.Home(ctx)
	if err != nil {
		return err
	}
	return r.writeJSON(data, true)
}

// AnimeSearch searches by keyword and prints the deduplicated results.
func (r *Runner) AnimeSearch(ctx context.Context, cmd *cli.Command) error {
	keyword := strings.TrimSpace(cmd.StringArg("keyword"))
	if keyword == "" {
		return fmt.Errorf("%w: keyword", shared.ErrMissingArgument)
	}
	filter, err := r.filter(cmd)
	if err != nil {
		return err
	}

	if err := r.rec.Search(ctx, keyword); err != nil {
		return err
	}

	results := filter.Apply(r.rec.Snapshot().SearchResults)
	r.logger.Debug("search", "keyword", keyword, "count", len(results))
	return r.writeAnimeList(fmt.Sprintf("Results for %q", keyword), results, cmd.Bool("json"))
}

// AnimeList prints catalog titles up to --limit.
func (r *Runner) AnimeList(ctx context.Context, cmd *cli.Command) error {
	filter, err := r.filter(cmd)
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = r.config.UI.ListLimit
	}

	c, err := r.catalogService()
	if err != nil {
		return err
	}
	items, err := c.List(ctx, limit)
	if err != nil {
		return err
	}
	return r.writeAnimeList("Anime", filter.Apply(models.Dedupe(items)), cmd.Bool("json"))
}

// AnimePopular prints the popular titles.
func (r *Runner) AnimePopular(ctx context.Context, cmd *cli.Command) error {
	filter, err := r.filter(cmd)
	if err != nil {
		return err
	}

	if err := r.rec.LoadPopular(ctx); err != nil {
		return err
	}
	return r.writeAnimeList("Popular", filter.Apply(r.rec.Snapshot().Popular), cmd.Bool("json"))
}

// AnimeRecommend prints titles similar to the given title.
func (r *Runner) AnimeRecommend(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}
	filter, err := r.filter(cmd)
	if err != nil {
		return err
	}

	if err := r.rec.GetRecommendations(ctx, title); err != nil {
		return err
	}
	return r.writeAnimeList(fmt.Sprintf("Similar to %q", title), filter.Apply(r.rec.Snapshot().Recommendations), cmd.Bool("json"))
}

// AnimeShow prints one anime with its similar titles.
func (r *Runner) AnimeShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	detail, err := r.rec.AnimeDetail(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	a := detail.Anime
	r.writePlainHeader(a.Title)
	if a.Score > 0 {
		r.writePlain("Score:     %.2f\n", a.Score)
	}
	if genres := a.GenreLine(); genres != "" {
		r.writePlain("Genres:    %s\n", genres)
	}
	r.writePlain("Favorites: %d\n", a.FavoritesCount)
	if a.MalID != 0 {
		r.writePlain("Page:      %s\n", shared.AnimePageURL(strconv.FormatInt(a.MalID, 10)))
	}

	r.writePlainln("Similar titles:")
	if len(detail.Similar) == 0 {
		return r.writePlain("  none\n")
	}
	for i, s := range detail.Similar {
		r.writePlain("%3d. %s\n", i+1, animeLine(s))
	}
	return nil
}

// AnimeOpen opens the catalog page for an anime id in the default browser.
func (r *Runner) AnimeOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	url := shared.AnimePageURL(strconv.FormatInt(id, 10))
	r.logger.Info("opening browser", "url", url)
	if err := shared.OpenBrowser(url); err != nil {
		r.writePlain("Open %s in your browser.\n", url)
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// AnimeHistory prints or clears the local search history.
func (r *Runner) AnimeHistory(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: search history store not initialized", shared.ErrServiceUnavailable)
	}

	if cmd.Bool("clear") {
		if err := r.history.Clear(); err != nil {
			return err
		}
		return r.writePlain("✓ Search history cleared\n")
	}

	entries, err := r.history.Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}

	r.writePlainHeader("Recent searches")
	if len(entries) == 0 {
		return r.writePlain("No searches yet.\n")
	}
	for _, e := range entries {
		r.writePlain("%s  %-30s %d results\n", e.SearchedAt.Local().Format("2006-01-02 15:04"), e.Keyword, e.ResultCount)
	}
	return nil
}

// filter builds a display filter from --genre, --min-score and --sort.
func (r *Runner) filter(cmd *cli.Command) (models.Filter, error) {
	order, err := models.ParseSortOrder(cmd.String("sort"))
	if err != nil {
		return models.Filter{}, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return models.Filter{
		Genre:    strings.TrimSpace(cmd.String("genre")),
		MinScore: cmd.Float("min-score"),
		Sort:     order,
	}, nil
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q must be a positive integer", shared.ErrInvalidArgument, s)
	}
	return id, nil
}
