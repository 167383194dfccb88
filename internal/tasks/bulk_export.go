package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/anirec/internal/formatter"
	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/shared"
	"golang.org/x/time/rate"
)

// SimilarExportOpts contains configuration for [Engine.ExportSimilar].
type SimilarExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: similar_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Backend requests per second (default: 5)
	Limit      int              // Titles kept per seed; 0 keeps all
}

// SimilarExportResult is the outcome for one seed.
type SimilarExportResult struct {
	Seed    models.Anime `json:"seed"`
	Count   int          `json:"count"`
	Files   []string     `json:"files"`
	Success bool         `json:"success"`
	Error   error        `json:"-"`

	index int
}

// BulkExportResult summarizes an [Engine.ExportSimilar] run.
type BulkExportResult struct {
	Total           int                   `json:"total"`
	Successful      int                   `json:"successful"`
	Failed          int                   `json:"failed"`
	OutputDirectory string                `json:"output_directory"`
	Results         []SimilarExportResult `json:"results"`
	ManifestPath    string                `json:"-"`
}

type similarJob struct {
	index   int
	seed    models.Anime
	similar []models.Anime
}

// ExportSimilar writes, for each seed, an export of the titles similar to it.
//
// Fetches are paced by a rate limiter on a single producer; a pool of workers writes files.
// Results are returned in seed order and summarized in {OutputDir}/export_manifest.json.
func (e *Engine) ExportSimilar(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	seeds []models.Anime,
	opts SimilarExportOpts,
) (*BulkExportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("similar_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	seeds = models.Dedupe(seeds)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Total:           len(seeds),
		OutputDirectory: opts.OutputDir,
		Results:         make([]SimilarExportResult, 0, len(seeds)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan similarJob, len(seeds))
	results := make(chan SimilarExportResult, len(seeds))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(&wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, seed := range seeds {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchingSimilarUpdate(i+1, len(seeds), seed))
			similar, err := e.catalog.Recommend(ctx, seed.Title)
			if err != nil {
				results <- SimilarExportResult{
					Seed:  seed,
					Error: fmt.Errorf("failed to fetch similar titles: %w", err),
					index: i,
				}
				continue
			}

			jobs <- similarJob{index: i, seed: seed, similar: similar}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(seeds), res))
		} else {
			result.Failed++
			e.sendProgress(prog, exportFailedUpdate(completed, len(seeds), res))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].index < result.Results[j].index })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes exports for jobs until the channel closes.
func (e *Engine) exportWorker(
	wg *sync.WaitGroup,
	jobs <-chan similarJob,
	results chan<- SimilarExportResult,
	opts SimilarExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		results <- writeSimilar(job, opts)
	}
}

// writeSimilar writes one seed's similar titles, excluding the seed itself.
func writeSimilar(j similarJob, opts SimilarExportOpts) SimilarExportResult {
	result := SimilarExportResult{Seed: j.seed, Files: []string{}, index: j.index}

	items := make([]models.Anime, 0, len(j.similar))
	for _, a := range models.Dedupe(j.similar) {
		if a.Key() == j.seed.Key() {
			continue
		}
		if opts.Limit > 0 && len(items) == opts.Limit {
			break
		}
		items = append(items, a)
	}
	result.Count = len(items)

	export := formatter.NewExport("Similar to "+j.seed.Title, items)
	name := strconv.FormatInt(j.seed.ID(), 10)

	if opts.Format == formatter.FormatMarkdown {
		md, err := formatter.WriteMarkdownExport(export, filepath.Join(opts.OutputDir, name), false, io.Discard)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = md.Files
		result.Success = true
		return result
	}

	path, err := formatter.WriteExport(export, opts.Format, filepath.Join(opts.OutputDir, name+"."+opts.Format.Extension()))
	if err != nil {
		result.Error = err
		return result
	}
	result.Files = []string{path}
	result.Success = true
	return result
}

type manifestEntry struct {
	AnimeID int64    `json:"anime_id"`
	Title   string   `json:"title"`
	Count   int      `json:"count"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func writeManifest(result *BulkExportResult, path string) error {
	manifest := struct {
		ExportedAt time.Time       `json:"exported_at"`
		Total      int             `json:"total"`
		Successful int             `json:"successful"`
		Failed     int             `json:"failed"`
		Seeds      []manifestEntry `json:"seeds"`
	}{
		ExportedAt: time.Now().UTC(),
		Total:      result.Total,
		Successful: result.Successful,
		Failed:     result.Failed,
		Seeds:      make([]manifestEntry, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		entry := manifestEntry{AnimeID: res.Seed.ID(), Title: res.Seed.Title, Count: res.Count, Files: res.Files}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		manifest.Seeds = append(manifest.Seeds, entry)
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
