package tasks

import (
	"fmt"

	"github.com/desertthunder/anirec/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchEndpoint Phase = iota
	FetchSimilar
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchEndpoint:
		return "fetch_endpoint"
	case FetchSimilar:
		return "fetch_similar"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

func endpointUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEndpoint,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] GET %s", step, total, path),
	}
}

func fetchingSimilarUpdate(step, total int, seed models.Anime) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilar,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching titles similar to %s...", step, total, seed.Title),
		Data:    seed,
	}
}

func exportCompletedUpdate(step, total int, res SimilarExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d titles)", step, total, res.Seed.Title, res.Count),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res SimilarExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Seed.Title, res.Error),
		Data:    res,
	}
}
