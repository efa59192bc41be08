package api

import (
	"net/http"
	"strconv"

	"github.com/mellihq/melli-ads/internal/model"
)

const (
	defaultPerPage = 15
	maxPerPage     = 50
)

// parseSearchRequest extracts the shared list/search query parameters,
// clamping pagination and normalizing the sort direction. Unparsable numeric
// values are ignored rather than rejected.
func parseSearchRequest(r *http.Request) model.SearchRequest {
	q := r.URL.Query()

	req := model.SearchRequest{
		Query:     q.Get("search"),
		Category:  q.Get("category"),
		Location:  q.Get("location"),
		SortBy:    q.Get("sort_by"),
		SortOrder: model.SortOrder(q.Get("sort_order")),
		Page:      1,
		PerPage:   defaultPerPage,
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	if req.SortOrder != model.SortAsc {
		req.SortOrder = model.SortDesc
	}

	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		req.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		req.MaxPrice = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		req.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v >= 1 {
		req.PerPage = v
	}
	if req.PerPage > maxPerPage {
		req.PerPage = maxPerPage
	}
	return req
}

// echoFilters mirrors the applied parameters back to the caller.
func echoFilters(req model.SearchRequest, withSort bool) map[string]interface{} {
	filters := map[string]interface{}{
		"search":    req.Query,
		"category":  req.Category,
		"location":  req.Location,
		"min_price": req.MinPrice,
		"max_price": req.MaxPrice,
	}
	if withSort {
		filters["sort_by"] = req.SortBy
		filters["sort_order"] = string(req.SortOrder)
	}
	return filters
}
