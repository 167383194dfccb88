// package formatter provides functions to export anime collections to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or its usual file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension is the file extension written for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// Export is a titled anime collection ready to be written out.
type Export struct {
	Title      string         `json:"title"`
	ExportedAt time.Time      `json:"exported_at"`
	Anime      []models.Anime `json:"anime"`
}

// NewExport builds an export of items stamped with the current time.
func NewExport(title string, items []models.Anime) *Export {
	return &Export{Title: title, ExportedAt: time.Now().UTC(), Anime: items}
}

// FavoritesExport builds an export of a favorites collection.
func FavoritesExport(favorites []models.Favorite) *Export {
	items := make([]models.Anime, 0, len(favorites))
	for _, f := range favorites {
		items = append(items, f.Anime())
	}
	return NewExport("Favorites", items)
}

// ExportToCSV converts an Export to CSV format with columns: ID, Title, Score, Genres, Favorites, Image
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Score", "Genres", "Favorites", "Image"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range export.Anime {
		record := []string{
			a.Key(),
			a.Title,
			formatScore(a.Score),
			a.GenreLine(),
			strconv.Itoa(a.FavoritesCount),
			a.ImageURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to Markdown. images maps anime keys to local image paths;
// entries without one fall back to the remote image URL.
func ExportToMarkdown(export *Export, images map[string]string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Title))
	buf.WriteString(fmt.Sprintf("**Titles**: %d\n", len(export.Anime)))
	buf.WriteString(fmt.Sprintf("**Exported**: %s\n\n", export.ExportedAt.Format(time.DateOnly)))

	for i, a := range export.Anime {
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, a.Title))

		image := images[a.Key()]
		if image == "" {
			image = a.ImageURL
		}
		if image != "" {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", a.Title, image))
		}

		if a.Score > 0 {
			buf.WriteString(fmt.Sprintf("- **Score**: %s\n", formatScore(a.Score)))
		}
		if len(a.Genres) > 0 {
			buf.WriteString(fmt.Sprintf("- **Genres**: %s\n", a.GenreLine()))
		}
		if id := a.Key(); id != "" {
			buf.WriteString(fmt.Sprintf("- **Link**: %s\n", shared.AnimePageURL(id)))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", export.Title))
	buf.WriteString(fmt.Sprintf("Titles: %d\n\n", len(export.Anime)))

	for i, a := range export.Anime {
		line := fmt.Sprintf("%d. %s", i+1, a.Title)
		if a.Score > 0 {
			line += fmt.Sprintf(" [%s]", formatScore(a.Score))
		}
		if len(a.Genres) > 0 {
			line += " - " + a.GenreLine()
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts an Export to indented JSON.
func ExportToJSON(export *Export) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Images    []string
}

// WriteMarkdownExport exports a collection to Markdown in a dedicated directory.
//
// Creates {dir}/README.md and, when withImages is set, {dir}/images/{id}.jpg for every
// image that downloads; failed downloads are reported on w and linked remotely instead.
func WriteMarkdownExport(export *Export, outputDir string, withImages bool, w io.Writer) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = slug(export.Title)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}
	images := map[string]string{}

	if withImages {
		imageDir := filepath.Join(outputDir, "images")
		if err := os.MkdirAll(imageDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create image directory: %w", err)
		}

		for _, a := range export.Anime {
			if a.ImageURL == "" || a.Key() == "" {
				continue
			}
			data, err := DownloadImage(a.ImageURL)
			if err != nil {
				fmt.Fprintf(w, "Warning: image for %s: %v\n", a.Title, err)
				continue
			}

			name := a.Key() + ".jpg"
			path := filepath.Join(imageDir, name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				fmt.Fprintf(w, "Warning: failed to save image for %s: %v\n", a.Title, err)
				continue
			}
			images[a.Key()] = "images/" + name
			result.Images = append(result.Images, path)
			result.Files = append(result.Files, path)
		}
	}

	mdData, err := ExportToMarkdown(export, images)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteExport writes export in a single-file format to path and returns the path written.
//
// Defaults to {slug(title)}.{ext} as the filename.
func WriteExport(export *Export, format Format, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatCSV:
		data, err = ExportToCSV(export)
	case FormatJSON:
		data, err = ExportToJSON(export)
	case FormatText:
		data, err = ExportToText(export)
	case FormatMarkdown:
		data, err = ExportToMarkdown(export, nil)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if path == "" {
		path = slug(export.Title) + "." + format.Extension()
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

func formatScore(score float64) string {
	if score == 0 {
		return ""
	}
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// slug lowercases title and joins its words with underscores.
func slug(title string) string {
	s := strings.Join(strings.Fields(strings.ToLower(title)), "_")
	if s == "" {
		return "anime"
	}
	return s
}
