package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellihq/melli-ads/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestBuildFiltersAlwaysStartsWithEligibility(t *testing.T) {
	preds := BuildFilters(model.SearchRequest{})
	require.Len(t, preds, 1)
	assert.Equal(t, OpEligible, preds[0].Op)
}

func TestBuildFiltersFullSet(t *testing.T) {
	preds := BuildFilters(model.SearchRequest{
		Category: "electronics",
		Location: "Berlin",
		MinPrice: floatPtr(10),
		MaxPrice: floatPtr(99.5),
	})
	require.Len(t, preds, 5)
	assert.Equal(t, Predicate{Field: "category", Op: OpEq, Value: "electronics"}, preds[1])
	assert.Equal(t, Predicate{Field: "location", Op: OpContains, Value: "Berlin"}, preds[2])
	assert.Equal(t, Predicate{Field: "price", Op: OpGte, Value: 10.0}, preds[3])
	assert.Equal(t, Predicate{Field: "price", Op: OpLte, Value: 99.5}, preds[4])
}

func TestBuildFiltersSingleBoundPriceRange(t *testing.T) {
	preds := BuildFilters(model.SearchRequest{MaxPrice: floatPtr(50)})
	require.Len(t, preds, 2)
	assert.Equal(t, OpLte, preds[1].Op)
}

func TestBuildSortAllowList(t *testing.T) {
	for _, field := range []string{"title", "price", "created_at", "expires_at"} {
		s := BuildSort(model.SearchRequest{SortBy: field, SortOrder: model.SortAsc})
		assert.Equal(t, field, s.Field)
		assert.Equal(t, model.SortAsc, s.Order)
	}
}

func TestBuildSortRejectsUnknownFields(t *testing.T) {
	// Anything off the allow-list falls back to the default sort; a raw
	// field name must never reach a backend sort clause.
	for _, field := range []string{"", "id; DROP TABLE advertisements", "contact_email", "unknown"} {
		s := BuildSort(model.SearchRequest{SortBy: field, SortOrder: model.SortAsc})
		assert.Equal(t, DefaultSort, s, "field %q", field)
	}
}

func TestBuildSortNormalizesDirection(t *testing.T) {
	s := BuildSort(model.SearchRequest{SortBy: "price", SortOrder: "sideways"})
	assert.Equal(t, model.SortDesc, s.Order)
}
