package store

import (
	"context"

	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/search"
)

// Query bundles the translated predicates, sort and page window for one
// store read. Total counts are computed from the same predicate set so the
// pagination metadata stays consistent with the returned page.
type Query struct {
	Filters []search.Predicate
	Sort    search.Sort
	Limit   int
	Offset  int
}

// SuggestFields are the columns the fallback suggestion path may probe.
var SuggestFields = map[string]bool{
	"title":    true,
	"category": true,
	"location": true,
}

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Advertisements() Advertisements
}

// Advertisements is the Record Store over the primary relational database.
// GetByID/Update/Delete return model.ErrNotFound for unknown identifiers.
type Advertisements interface {
	Create(ctx context.Context, ad *model.Advertisement) (*model.Advertisement, error)
	GetByID(ctx context.Context, id string) (*model.Advertisement, error)
	Update(ctx context.Context, id string, upd model.AdvertisementUpdate) (*model.Advertisement, error)
	Delete(ctx context.Context, id string) error

	// Query returns one page plus the total count of the filtered set.
	Query(ctx context.Context, q Query) ([]*model.Advertisement, int, error)

	// All returns up to limit rows matching the predicates in insertion
	// order. It feeds the in-memory relevance ranking of the fallback path;
	// the cap bounds memory at the cost of recall on large corpora.
	All(ctx context.Context, filters []search.Predicate, limit int) ([]*model.Advertisement, error)

	// DistinctMatches returns distinct non-empty values of field containing
	// term (case-insensitive), eligible rows only, capped at limit. Field
	// must be one of SuggestFields.
	DistinctMatches(ctx context.Context, field, term string, limit int) ([]string, error)
}
