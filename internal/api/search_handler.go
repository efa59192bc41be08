package api

import (
	"net/http"

	"github.com/mellihq/melli-ads/internal/api/respond"
	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/services"
)

// SearchHandler serves the list/search, advanced search and suggestion
// endpoints. The response shape is identical whichever backend served the
// request; fallback-served responses carry an observable flag.
type SearchHandler struct {
	svc *services.SearchService
}

func NewSearchHandler(svc *services.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// List GET /advertisements — plain filtered listing, or a search when the
// `search` parameter is present.
func (h *SearchHandler) List(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)
	res, err := h.svc.Search(r.Context(), req)
	if err != nil {
		respond.WriteInternalError(w, "Failed to fetch advertisements")
		return
	}
	writeSearchResult(w, req, res, true)
}

// Advanced GET /advertisements/search/advanced — forced relevance-ranked.
func (h *SearchHandler) Advanced(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)
	res, err := h.svc.AdvancedSearch(r.Context(), req)
	if err != nil {
		respond.WriteInternalError(w, "Failed to fetch advertisements")
		return
	}
	writeSearchResult(w, req, res, false)
}

// Suggestions GET /advertisements/search/suggestions?q=
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		// Suggestions degrade, they never hard-fail.
		res = &model.SuggestionResult{Suggestions: []model.Suggestion{}}
	}
	body := map[string]interface{}{
		"success":     true,
		"suggestions": res.Suggestions,
	}
	if res.Fallback {
		body["fallback"] = true
	}
	respond.WriteJSON(w, http.StatusOK, body)
}

func writeSearchResult(w http.ResponseWriter, req model.SearchRequest, res *model.SearchResult, withSort bool) {
	ads := res.Advertisements
	if ads == nil {
		ads = []*model.Advertisement{}
	}
	body := map[string]interface{}{
		"success":    true,
		"data":       ads,
		"pagination": res.Pagination,
		"filters":    echoFilters(req, withSort),
	}
	if res.Fallback {
		body["fallback"] = true
	}
	if res.IndexMeta != nil {
		body["meilisearch"] = res.IndexMeta
	}
	respond.WriteJSON(w, http.StatusOK, body)
}
