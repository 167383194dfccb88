package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
)

// Catalog is the backend lookup used by [Engine.ExportSimilar].
type Catalog interface {
	Recommend(ctx context.Context, title string) ([]models.Anime, error)
}

// APIClient defines the raw request interface used by [Engine.Dump].
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// Engine runs jobs that span many backend requests.
type Engine struct {
	catalog Catalog
	api     APIClient
}

// NewEngine creates an Engine. Either dependency may be nil; operations needing it fail with
// [shared.ErrServiceUnavailable].
func NewEngine(catalog Catalog, api APIClient) *Engine {
	return &Engine{catalog: catalog, api: api}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// EndpointResult records a failed endpoint fetch.
type EndpointResult struct {
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
}

// DumpResult contains the raw payload of every fetched endpoint.
type DumpResult struct {
	Home            any              `json:"home"`
	Popular         any              `json:"popular,omitempty"`
	Catalog         any              `json:"catalog,omitempty"`
	User            any              `json:"user,omitempty"`
	Favorites       any              `json:"favorites,omitempty"`
	Recommendations any              `json:"recommendations,omitempty"`
	Errors          []EndpointResult `json:"errors,omitempty"`
}

type endpointOperation struct {
	path   string
	target *any
}

// Dump fetches every read endpoint. Signed-in endpoints are fetched only when withUser is set.
//
// Endpoint failures are collected in the result; only a missing client is an error.
func (e *Engine) Dump(ctx context.Context, progress chan<- ProgressUpdate, withUser bool) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{Errors: []EndpointResult{}}

	endpoints := []endpointOperation{
		{path: "/", target: &result.Home},
		{path: "/animes/popular", target: &result.Popular},
		{path: "/animes", target: &result.Catalog},
	}
	if withUser {
		endpoints = append(endpoints,
			endpointOperation{path: "/users/me", target: &result.User},
			endpointOperation{path: "/users/me/favorites", target: &result.Favorites},
			endpointOperation{path: "/users/me/recommendations", target: &result.Recommendations},
		)
	}

	for i, endpoint := range endpoints {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.sendProgress(progress, endpointUpdate(i+1, len(endpoints), endpoint.path))

		resp, err := e.api.Get(ctx, endpoint.path)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, EndpointResult{Endpoint: endpoint.path, Error: err.Error()})
		case !resp.OK():
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    fmt.Sprintf("status %d", resp.StatusCode),
			})
		case resp.IsJSON:
			*endpoint.target = resp.JSONData
		default:
			*endpoint.target = string(resp.Body)
		}
	}

	return result, nil
}
