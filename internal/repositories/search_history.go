package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SearchEntry is one submitted search.
type SearchEntry struct {
	ID          int64
	Keyword     string
	ResultCount int
	SearchedAt  time.Time
}

// SearchHistoryRepository records submitted search keywords.
type SearchHistoryRepository struct {
	db *sql.DB
}

// NewSearchHistoryRepository creates a new [SearchHistoryRepository] with the given database connection
func NewSearchHistoryRepository(db *sql.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Record appends a search. Blank keywords are ignored.
func (r *SearchHistoryRepository) Record(keyword string, resultCount int) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	_, err := r.db.Exec(`INSERT INTO search_history (keyword, result_count) VALUES (?, ?)`, keyword, resultCount)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// Recent returns up to limit searches, newest first.
func (r *SearchHistoryRepository) Recent(limit int) ([]SearchEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT id, keyword, result_count, searched_at
		FROM search_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var (
			entry      SearchEntry
			searchedAt sql.NullTime
		)
		if err := rows.Scan(&entry.ID, &entry.Keyword, &entry.ResultCount, &searchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entry.SearchedAt = searchedAt.Time
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search history: %w", err)
	}
	return entries, nil
}

// Clear deletes the whole history.
func (r *SearchHistoryRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM search_history`); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}
