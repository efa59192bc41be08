package searchindex

import (
	"context"

	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/search"
)

// SearchOptions carry the page window and optional sort for an index query.
type SearchOptions struct {
	Limit  int
	Offset int
	Sort   *search.Sort
	Facets []string
}

// Result is the raw outcome of an index-path search before normalization.
type Result struct {
	Hits              []*model.Advertisement
	Total             int64
	ProcessingTimeMs  int64
	FacetDistribution map[string]map[string]int
}

// Index maintains a denormalized advertisement document per record in the
// external engine and serves search, suggestion and facet queries against
// it. The index is a derived cache keyed by advertisement ID, never
// authoritative. Every failure surfaces as model.ErrIndexUnavailable so the
// orchestrator can decide the fallback; nothing is swallowed at this layer.
type Index interface {
	// EnsureIndex idempotently creates the index and applies its settings.
	// Safe to call repeatedly; never destroys existing documents.
	EnsureIndex(ctx context.Context) error

	// IndexAll bulk-loads documents. Administrative; not incremental-safe.
	IndexAll(ctx context.Context, ads []*model.Advertisement) error

	// Upsert and Remove are the incremental per-write sync hooks.
	Upsert(ctx context.Context, ad *model.Advertisement) error
	Remove(ctx context.Context, id string) error

	Search(ctx context.Context, query string, filters []search.Predicate, opts SearchOptions) (*Result, error)

	// Suggest returns deduplicated autocomplete candidates in engine
	// relevance order, truncated to limit.
	Suggest(ctx context.Context, prefix string, limit int) ([]model.Suggestion, error)

	Stats(ctx context.Context) (*model.IndexStats, error)
}
