package searchindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mellihq/melli-ads/internal/search"
)

func TestFilterExpressionJoinsWithAnd(t *testing.T) {
	expr := filterExpression([]search.Predicate{
		{Op: search.OpEligible},
		{Field: "category", Op: search.OpEq, Value: "books"},
		{Field: "price", Op: search.OpGte, Value: 10.0},
		{Field: "price", Op: search.OpLte, Value: 25.0},
	})
	assert.Equal(t, "is_active = true AND category = 'books' AND price >= 10 AND price <= 25", expr)
}

func TestFilterExpressionEscapesQuotes(t *testing.T) {
	// A quote in user input must stay inside the value literal.
	expr := filterExpression([]search.Predicate{
		{Field: "category", Op: search.OpEq, Value: `books' OR is_active = false`},
	})
	assert.Equal(t, `category = 'books\' OR is_active = false'`, expr)
}

func TestFilterExpressionEscapesBackslashes(t *testing.T) {
	expr := filterExpression([]search.Predicate{
		{Field: "location", Op: search.OpEq, Value: `a\'b`},
	})
	assert.Equal(t, `location = 'a\\\'b'`, expr)
}

func TestFilterExpressionContainsDegradesToEquality(t *testing.T) {
	expr := filterExpression([]search.Predicate{
		{Field: "location", Op: search.OpContains, Value: "Berlin"},
	})
	assert.Equal(t, "location = 'Berlin'", expr)
}

func TestFilterExpressionFractionalPrice(t *testing.T) {
	expr := filterExpression([]search.Predicate{
		{Field: "price", Op: search.OpLte, Value: 19.99},
	})
	assert.Equal(t, "price <= 19.99", expr)
}

func TestFilterExpressionEmpty(t *testing.T) {
	assert.Equal(t, "", filterExpression(nil))
}
