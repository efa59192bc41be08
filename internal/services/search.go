package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/search"
	"github.com/mellihq/melli-ads/internal/searchindex"
	"github.com/mellihq/melli-ads/internal/store"
)

const (
	// fallbackCandidateLimit caps the rows fetched for in-memory relevance
	// ranking. Matches beyond the cap are not recalled in degraded mode.
	fallbackCandidateLimit = 1000

	suggestionsPerField = 5
	suggestionsTotal    = 10
)

var suggestionFields = []string{"title", "category", "location"}

// SearchService decides which backend serves a request. Queries go to the
// external index first; any index failure transparently degrades to the
// store path with the same response shape, flagged as fallback-served.
type SearchService struct {
	store store.Store
	idx   searchindex.Index
	log   zerolog.Logger
}

func NewSearchService(s store.Store, idx searchindex.Index, log zerolog.Logger) *SearchService {
	return &SearchService{store: s, idx: idx, log: log}
}

// Search serves the list/search endpoint. Without a query string it is a
// plain filtered listing straight from the store; with one it attempts the
// index path and falls back on any index failure.
func (s *SearchService) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if req.Query == "" {
		return s.list(ctx, req)
	}

	res, err := s.indexSearch(ctx, req)
	if err == nil {
		return res, nil
	}
	s.log.Warn().Err(err).Str("query", req.Query).Msg("index path failed, serving fallback")
	return s.fallbackSearch(ctx, req)
}

// AdvancedSearch always ranks by relevance score when a query is supplied,
// regardless of index availability; its contract promises score-sorted
// results. Without a query it is a plain filtered listing.
func (s *SearchService) AdvancedSearch(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if req.Query == "" {
		return s.list(ctx, req)
	}
	res, err := s.rankedStoreSearch(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Fallback = false // ranked by contract, not degraded
	return res, nil
}

// Suggest returns autocomplete candidates. Inputs under 2 characters
// short-circuit to an empty list; lower-layer failures degrade to the store
// path and finally to an empty list, never to an error.
func (s *SearchService) Suggest(ctx context.Context, prefix string) (*model.SuggestionResult, error) {
	if len(prefix) < 2 {
		return &model.SuggestionResult{Suggestions: []model.Suggestion{}}, nil
	}

	if sugg, err := s.idx.Suggest(ctx, prefix, suggestionsTotal); err == nil {
		return &model.SuggestionResult{Suggestions: sugg}, nil
	} else {
		s.log.Warn().Err(err).Str("prefix", prefix).Msg("index suggestions failed, serving fallback")
	}

	// Fallback: independent substring probes per field, tagged with their
	// source, merged in field order with no relevance ranking.
	merged := make([]model.Suggestion, 0, suggestionsTotal)
	for _, field := range suggestionFields {
		values, err := s.store.Advertisements().DistinctMatches(ctx, field, prefix, suggestionsPerField)
		if err != nil {
			s.log.Warn().Err(err).Str("field", field).Msg("fallback suggestions probe failed")
			continue
		}
		for _, v := range values {
			merged = append(merged, model.Suggestion{Type: field, Value: v})
		}
	}
	if len(merged) > suggestionsTotal {
		merged = merged[:suggestionsTotal]
	}
	return &model.SuggestionResult{Suggestions: merged, Fallback: true}, nil
}

// list is the no-query path: eligibility plus optional filters, store sort,
// limit/offset pagination.
func (s *SearchService) list(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	ads, total, err := s.store.Advertisements().Query(ctx, store.Query{
		Filters: search.BuildFilters(req),
		Sort:    search.BuildSort(req),
		Limit:   req.PerPage,
		Offset:  req.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{
		Advertisements: ads,
		Pagination:     model.NewPagination(req.Page, req.PerPage, total, len(ads)),
	}, nil
}

func (s *SearchService) indexSearch(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	srt := search.BuildSort(req)
	res, err := s.idx.Search(ctx, req.Query, search.BuildFilters(req), searchindex.SearchOptions{
		Limit:  req.PerPage,
		Offset: req.Offset(),
		Sort:   &srt,
		Facets: []string{"category", "location"},
	})
	if err != nil {
		return nil, err
	}
	return &model.SearchResult{
		Advertisements: res.Hits,
		Pagination:     model.NewPagination(req.Page, req.PerPage, int(res.Total), len(res.Hits)),
		IndexMeta: &model.IndexMeta{
			ProcessingTimeMs:  res.ProcessingTimeMs,
			FacetDistribution: res.FacetDistribution,
		},
	}, nil
}

// fallbackSearch is the degraded query path: fetch the eligible candidate
// set, rank by relevance score, paginate in memory.
func (s *SearchService) fallbackSearch(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	res, err := s.rankedStoreSearch(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Fallback = true
	return res, nil
}

func (s *SearchService) rankedStoreSearch(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	candidates, err := s.store.Advertisements().All(ctx, search.BuildFilters(req), fallbackCandidateLimit)
	if err != nil {
		return nil, err
	}

	// Scores only rank, they never filter: zero-score records stay in the
	// result set. Stable sort keeps insertion order on ties.
	scores := make(map[string]int, len(candidates))
	for _, ad := range candidates {
		scores[ad.ID] = search.Score(ad, req.Query)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].ID] > scores[candidates[j].ID]
	})

	total := len(candidates)
	page := paginate(candidates, req.Offset(), req.PerPage)
	return &model.SearchResult{
		Advertisements: page,
		Pagination:     model.NewPagination(req.Page, req.PerPage, total, len(page)),
	}, nil
}

func paginate(ads []*model.Advertisement, offset, limit int) []*model.Advertisement {
	if offset >= len(ads) {
		return []*model.Advertisement{}
	}
	end := offset + limit
	if end > len(ads) {
		end = len(ads)
	}
	return ads[offset:end]
}
