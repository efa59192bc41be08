package search

import "github.com/mellihq/melli-ads/internal/model"

// Op is a predicate operator understood by both backends.
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	// OpEligible is the composite active-and-not-expired predicate applied
	// to every public listing view.
	OpEligible Op = "eligible"
)

// Predicate is a backend-neutral filter descriptor. Store adapters translate
// it to SQL, the index gateway to the engine's filter expression syntax.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Sort is a backend-neutral sort descriptor.
type Sort struct {
	Field string
	Order model.SortOrder
}

// sortable is the allow-list of sort fields. Anything else requested falls
// back to the default; arbitrary field names never reach a backend sort
// clause.
var sortable = map[string]bool{
	"title":      true,
	"price":      true,
	"created_at": true,
	"expires_at": true,
}

// DefaultSort orders newest first.
var DefaultSort = Sort{Field: "created_at", Order: model.SortDesc}

// BuildFilters translates a request's filter parameters into predicate
// descriptors. The eligibility predicate always comes first.
func BuildFilters(req model.SearchRequest) []Predicate {
	preds := []Predicate{{Op: OpEligible}}
	if req.Category != "" {
		preds = append(preds, Predicate{Field: "category", Op: OpEq, Value: req.Category})
	}
	if req.Location != "" {
		preds = append(preds, Predicate{Field: "location", Op: OpContains, Value: req.Location})
	}
	if req.MinPrice != nil {
		preds = append(preds, Predicate{Field: "price", Op: OpGte, Value: *req.MinPrice})
	}
	if req.MaxPrice != nil {
		preds = append(preds, Predicate{Field: "price", Op: OpLte, Value: *req.MaxPrice})
	}
	return preds
}

// BuildSort resolves the requested sort against the allow-list, falling back
// to created_at descending for unknown fields.
func BuildSort(req model.SearchRequest) Sort {
	if !sortable[req.SortBy] {
		return DefaultSort
	}
	order := req.SortOrder
	if order != model.SortAsc && order != model.SortDesc {
		order = model.SortDesc
	}
	return Sort{Field: req.SortBy, Order: order}
}
