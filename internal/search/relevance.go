package search

import (
	"strings"

	"github.com/mellihq/melli-ads/internal/model"
)

// Field weights for the degraded-mode ranking heuristic. Title hits dominate,
// free text counts more than metadata, tags least.
const (
	weightTitle       = 10
	weightContent     = 5
	weightDescription = 3
	weightCategory    = 3
	weightLocation    = 3
	weightTag         = 1
)

// Score computes a relevance score for one advertisement against a query
// string. The query is lower-cased and split on whitespace; each term adds
// weighted points per case-insensitive substring hit. Missing optional fields
// contribute nothing. This is a crude bag-of-substrings approximation of the
// engine's ranking, used only when the index is unreachable.
func Score(ad *model.Advertisement, query string) int {
	score := 0
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if containsFold(ad.Title, term) {
			score += weightTitle
		}
		if containsFold(ad.Content, term) {
			score += weightContent
		}
		if containsFold(ad.Description, term) {
			score += weightDescription
		}
		if ad.Category != nil && containsFold(*ad.Category, term) {
			score += weightCategory
		}
		if ad.Location != nil && containsFold(*ad.Location, term) {
			score += weightLocation
		}
		for _, tag := range ad.Tags {
			if containsFold(tag, term) {
				score += weightTag
			}
		}
	}
	return score
}

// containsFold reports whether s contains substr, case-insensitively.
// substr is expected to be lower-case already.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
