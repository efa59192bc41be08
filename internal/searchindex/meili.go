package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/search"
)

const indexUID = "advertisements"

// Searchable attribute order is the engine's attribute-priority ranking:
// title beats content beats description/category/location beats tags.
var indexSettings = map[string]interface{}{
	"searchableAttributes": []string{"title", "content", "description", "category", "location", "tags"},
	"filterableAttributes": []string{"category", "location", "price", "is_active", "expires_at"},
	"sortableAttributes":   []string{"price", "created_at", "expires_at"},
	"rankingRules":         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
}

// indexSortable restricts index-path sort clauses to the engine's sortable
// attributes. Title sorting is store-path only.
var indexSortable = map[string]bool{"price": true, "created_at": true, "expires_at": true}

// Meili talks to a Meilisearch instance over its document API. Every call is
// bounded by the client timeout; any failure, including timeout, surfaces as
// model.ErrIndexUnavailable.
type Meili struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewMeili creates a gateway for the engine at host using the given API key.
func NewMeili(host, apiKey string, timeout time.Duration, log zerolog.Logger) *Meili {
	c := resty.New().
		SetBaseURL(host).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Meili{client: c, log: log}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrIndexUnavailable, op, err)
}

func unavailableStatus(op string, resp *resty.Response) error {
	return fmt.Errorf("%w: %s: status %d: %s", model.ErrIndexUnavailable, op, resp.StatusCode(), resp.String())
}

// EnsureIndex creates the advertisements index when missing and applies the
// search settings. Re-invocation only re-applies settings; documents are
// untouched.
func (m *Meili) EnsureIndex(ctx context.Context) error {
	resp, err := m.client.R().SetContext(ctx).Get("/indexes/" + indexUID)
	if err != nil {
		return unavailable("get index", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		// exists; fall through to settings
	case http.StatusNotFound:
		body := map[string]string{"uid": indexUID, "primaryKey": "id"}
		cresp, err := m.client.R().SetContext(ctx).SetBody(body).Post("/indexes")
		if err != nil {
			return unavailable("create index", err)
		}
		if cresp.IsError() {
			return unavailableStatus("create index", cresp)
		}
	default:
		return unavailableStatus("get index", resp)
	}

	sresp, err := m.client.R().SetContext(ctx).SetBody(indexSettings).Patch("/indexes/" + indexUID + "/settings")
	if err != nil {
		return unavailable("update settings", err)
	}
	if sresp.IsError() {
		return unavailableStatus("update settings", sresp)
	}
	return nil
}

// IndexAll bulk-loads documents. Concurrent writes during the load may be
// absent from the index until the next sync; accepted staleness window.
func (m *Meili) IndexAll(ctx context.Context, ads []*model.Advertisement) error {
	if len(ads) == 0 {
		return nil
	}
	resp, err := m.client.R().SetContext(ctx).SetBody(ads).Post("/indexes/" + indexUID + "/documents")
	if err != nil {
		return unavailable("add documents", err)
	}
	if resp.IsError() {
		return unavailableStatus("add documents", resp)
	}
	return nil
}

// Upsert adds or replaces the document for one advertisement.
func (m *Meili) Upsert(ctx context.Context, ad *model.Advertisement) error {
	return m.IndexAll(ctx, []*model.Advertisement{ad})
}

// Remove deletes the document for id. Unknown ids are not an error; the
// engine treats the delete as a no-op task.
func (m *Meili) Remove(ctx context.Context, id string) error {
	resp, err := m.client.R().SetContext(ctx).Delete("/indexes/" + indexUID + "/documents/" + id)
	if err != nil {
		return unavailable("delete document", err)
	}
	if resp.IsError() {
		return unavailableStatus("delete document", resp)
	}
	return nil
}

type searchBody struct {
	Q                     string   `json:"q"`
	Limit                 int      `json:"limit"`
	Offset                int      `json:"offset"`
	Filter                string   `json:"filter,omitempty"`
	Sort                  []string `json:"sort,omitempty"`
	Facets                []string `json:"facets,omitempty"`
	AttributesToRetrieve  []string `json:"attributesToRetrieve,omitempty"`
	AttributesToHighlight []string `json:"attributesToHighlight"`
}

type searchResponse struct {
	Hits               []json.RawMessage         `json:"hits"`
	EstimatedTotalHits int64                     `json:"estimatedTotalHits"`
	TotalHits          int64                     `json:"totalHits"`
	ProcessingTimeMs   int64                     `json:"processingTimeMs"`
	FacetDistribution  map[string]map[string]int `json:"facetDistribution"`
}

func (m *Meili) rawSearch(ctx context.Context, body searchBody) (*searchResponse, error) {
	resp, err := m.client.R().SetContext(ctx).SetBody(&body).Post("/indexes/" + indexUID + "/search")
	if err != nil {
		return nil, unavailable("search", err)
	}
	if resp.IsError() {
		return nil, unavailableStatus("search", resp)
	}
	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, unavailable("decode search response", err)
	}
	return &sr, nil
}

// Search executes a ranked query with the given filters and page window.
func (m *Meili) Search(ctx context.Context, query string, filters []search.Predicate, opts SearchOptions) (*Result, error) {
	body := searchBody{
		Q:                     query,
		Limit:                 opts.Limit,
		Offset:                opts.Offset,
		Filter:                filterExpression(filters),
		Facets:                opts.Facets,
		AttributesToRetrieve:  []string{"*"},
		AttributesToHighlight: []string{},
	}
	if opts.Sort != nil && indexSortable[opts.Sort.Field] {
		body.Sort = []string{fmt.Sprintf("%s:%s", opts.Sort.Field, opts.Sort.Order)}
	}

	sr, err := m.rawSearch(ctx, body)
	if err != nil {
		return nil, err
	}

	hits := make([]*model.Advertisement, 0, len(sr.Hits))
	for _, raw := range sr.Hits {
		var ad model.Advertisement
		if err := json.Unmarshal(raw, &ad); err != nil {
			return nil, unavailable("decode hit", err)
		}
		hits = append(hits, &ad)
	}

	total := sr.TotalHits
	if total == 0 {
		total = sr.EstimatedTotalHits
	}
	return &Result{
		Hits:              hits,
		Total:             total,
		ProcessingTimeMs:  sr.ProcessingTimeMs,
		FacetDistribution: sr.FacetDistribution,
	}, nil
}

// Suggest searches with highlighting disabled, retrieving only the fields a
// suggestion needs, and deduplicates by value preserving engine order.
func (m *Meili) Suggest(ctx context.Context, prefix string, limit int) ([]model.Suggestion, error) {
	sr, err := m.rawSearch(ctx, searchBody{
		Q:                     prefix,
		Limit:                 limit,
		Filter:                filterExpression([]search.Predicate{{Op: search.OpEligible}}),
		AttributesToRetrieve:  []string{"title", "category", "location"},
		AttributesToHighlight: []string{},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(sr.Hits))
	out := make([]model.Suggestion, 0, limit)
	for _, raw := range sr.Hits {
		var hit struct {
			Title    string  `json:"title"`
			Category *string `json:"category"`
			Location *string `json:"location"`
		}
		if err := json.Unmarshal(raw, &hit); err != nil {
			return nil, unavailable("decode hit", err)
		}
		if hit.Title == "" || seen[hit.Title] {
			continue
		}
		seen[hit.Title] = true
		out = append(out, model.Suggestion{
			Type:     "title",
			Value:    hit.Title,
			Category: hit.Category,
			Location: hit.Location,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Stats returns the engine's per-index statistics.
func (m *Meili) Stats(ctx context.Context) (*model.IndexStats, error) {
	resp, err := m.client.R().SetContext(ctx).Get("/indexes/" + indexUID + "/stats")
	if err != nil {
		return nil, unavailable("stats", err)
	}
	if resp.IsError() {
		return nil, unavailableStatus("stats", resp)
	}
	var st model.IndexStats
	if err := json.Unmarshal(resp.Body(), &st); err != nil {
		return nil, unavailable("decode stats", err)
	}
	return &st, nil
}

// HealthPing reports engine availability via GET /health.
func (m *Meili) HealthPing(ctx context.Context) error {
	resp, err := m.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return unavailable("health", err)
	}
	if resp.IsError() {
		return unavailableStatus("health", resp)
	}
	return nil
}
