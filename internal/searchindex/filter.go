package searchindex

import (
	"fmt"
	"strings"

	"github.com/mellihq/melli-ads/internal/search"
)

// filterExpression renders predicate descriptors into the engine's filter
// syntax: `field = value` style clauses joined by AND. Values are quoted and
// escaped here rather than interpolated by callers, so quote characters in
// user input cannot break out of a clause.
func filterExpression(filters []search.Predicate) string {
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case search.OpEligible:
			// The engine cannot evaluate "expires_at > now" against a null
			// field cheaply; public searches filter on the active flag and
			// leave the expiry edge to store-path reads.
			clauses = append(clauses, "is_active = true")
		case search.OpEq, search.OpContains:
			// The engine has no substring operator; contains degrades to
			// equality on the index path.
			clauses = append(clauses, fmt.Sprintf("%s = %s", f.Field, quoteValue(f.Value)))
		case search.OpGte:
			clauses = append(clauses, fmt.Sprintf("%s >= %s", f.Field, quoteValue(f.Value)))
		case search.OpLte:
			clauses = append(clauses, fmt.Sprintf("%s <= %s", f.Field, quoteValue(f.Value)))
		}
	}
	return strings.Join(clauses, " AND ")
}

func quoteValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return "'" + escapeString(val) + "'"
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), ".")
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return "'" + escapeString(fmt.Sprintf("%v", val)) + "'"
	}
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
