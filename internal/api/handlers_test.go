package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellihq/melli-ads/internal/api/recovery"
	"github.com/mellihq/melli-ads/internal/model"
	"github.com/mellihq/melli-ads/internal/search"
	"github.com/mellihq/melli-ads/internal/searchindex"
	"github.com/mellihq/melli-ads/internal/services"
	"github.com/mellihq/melli-ads/internal/store"
)

// memStore is an in-memory store.Store double for handler tests.
type memStore struct {
	ads []*model.Advertisement
}

func (m *memStore) Advertisements() store.Advertisements { return m }

func (m *memStore) Create(ctx context.Context, ad *model.Advertisement) (*model.Advertisement, error) {
	ad.ID = fmt.Sprintf("id-%d", len(m.ads)+1)
	m.ads = append(m.ads, ad)
	return ad, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*model.Advertisement, error) {
	for _, ad := range m.ads {
		if ad.ID == id {
			return ad, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) Update(ctx context.Context, id string, upd model.AdvertisementUpdate) (*model.Advertisement, error) {
	ad, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		ad.Title = *upd.Title
	}
	if upd.Price != nil {
		ad.Price = upd.Price
	}
	return ad, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	for i, ad := range m.ads {
		if ad.ID == id {
			m.ads = append(m.ads[:i], m.ads[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *memStore) Query(ctx context.Context, q store.Query) ([]*model.Advertisement, int, error) {
	total := len(m.ads)
	if q.Offset >= total {
		return []*model.Advertisement{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return m.ads[q.Offset:end], total, nil
}

func (m *memStore) All(ctx context.Context, filters []search.Predicate, limit int) ([]*model.Advertisement, error) {
	if limit < len(m.ads) {
		return m.ads[:limit], nil
	}
	return m.ads, nil
}

func (m *memStore) DistinctMatches(ctx context.Context, field, term string, limit int) ([]string, error) {
	return nil, nil
}

// downIndex simulates an unreachable engine; every call fails.
type downIndex struct{}

func (downIndex) EnsureIndex(ctx context.Context) error { return model.ErrIndexUnavailable }

func (downIndex) IndexAll(ctx context.Context, ads []*model.Advertisement) error {
	return model.ErrIndexUnavailable
}
func (downIndex) Upsert(ctx context.Context, ad *model.Advertisement) error {
	return model.ErrIndexUnavailable
}
func (downIndex) Remove(ctx context.Context, id string) error { return model.ErrIndexUnavailable }
func (downIndex) Search(ctx context.Context, query string, filters []search.Predicate, opts searchindex.SearchOptions) (*searchindex.Result, error) {
	return nil, model.ErrIndexUnavailable
}
func (downIndex) Suggest(ctx context.Context, prefix string, limit int) ([]model.Suggestion, error) {
	return nil, model.ErrIndexUnavailable
}
func (downIndex) Stats(ctx context.Context) (*model.IndexStats, error) {
	return nil, model.ErrIndexUnavailable
}

func newTestRouter(st store.Store, idx searchindex.Index) *mux.Router {
	log := zerolog.Nop()
	ads := NewAdvertisementHandler(services.NewAdvertisementService(st, idx, log))
	searches := NewSearchHandler(services.NewSearchService(st, idx, log))

	r := mux.NewRouter()
	r.Use(recovery.Middleware)
	r.HandleFunc("/advertisements/search/advanced", searches.Advanced).Methods("GET")
	r.HandleFunc("/advertisements/search/suggestions", searches.Suggestions).Methods("GET")
	r.HandleFunc("/advertisements", searches.List).Methods("GET")
	r.HandleFunc("/advertisements", ads.Create).Methods("POST")
	r.HandleFunc("/advertisements/{id}", ads.Show).Methods("GET")
	r.HandleFunc("/advertisements/{id}", ads.Update).Methods("PUT")
	r.HandleFunc("/advertisements/{id}", ads.Delete).Methods("DELETE")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Vintage Guitar",
		"description": "Well-kept Gibson",
		"content":     "Pickup only",
		"category":    "music",
		"price":       499.99,
	}
}

func TestCreateAdvertisement(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	rec, body := doJSON(t, router, "POST", "/advertisements", validPayload())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Vintage Guitar", data["title"])
	assert.Equal(t, true, data["is_active"], "is_active defaults to true")
	assert.NotEmpty(t, data["id"])
}

func TestCreateValidationFailure(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	rec, body := doJSON(t, router, "POST", "/advertisements", map[string]interface{}{
		"title": "only a title",
		"price": -1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, false, body["success"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "content")
	assert.Contains(t, errs, "price")
}

func TestCreateMalformedJSON(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	req := httptest.NewRequest("POST", "/advertisements", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowHidesInactive(t *testing.T) {
	st := &memStore{ads: []*model.Advertisement{
		{ID: "a1", Title: "visible", IsActive: true},
		{ID: "a2", Title: "hidden", IsActive: false},
	}}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "GET", "/advertisements/a1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "visible", body["data"].(map[string]interface{})["title"])

	rec, body = doJSON(t, router, "GET", "/advertisements/a2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = doJSON(t, router, "GET", "/advertisements/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUnknownIDIs404EvenWithInvalidBody(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	rec, _ := doJSON(t, router, "PUT", "/advertisements/ghost", map[string]interface{}{
		"title": "",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRejectsEmptiedRequiredField(t *testing.T) {
	st := &memStore{ads: []*model.Advertisement{{ID: "a1", Title: "keep", IsActive: true}}}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "PUT", "/advertisements/a1", map[string]interface{}{
		"title": "",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["errors"].(map[string]interface{}), "title")
}

func TestUpdatePartial(t *testing.T) {
	st := &memStore{ads: []*model.Advertisement{{ID: "a1", Title: "old", IsActive: true}}}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "PUT", "/advertisements/a1", map[string]interface{}{
		"title": "new",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", body["data"].(map[string]interface{})["title"])
}

func TestDeleteAdvertisement(t *testing.T) {
	st := &memStore{ads: []*model.Advertisement{{ID: "a1", IsActive: true}}}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "DELETE", "/advertisements/a1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, _ = doJSON(t, router, "DELETE", "/advertisements/a1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEnvelope(t *testing.T) {
	st := &memStore{}
	for i := 0; i < 20; i++ {
		st.ads = append(st.ads, &model.Advertisement{ID: fmt.Sprintf("a%d", i), IsActive: true})
	}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "GET", "/advertisements?per_page=5&page=2&category=music", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 5)

	pg := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pg["current_page"])
	assert.Equal(t, float64(4), pg["last_page"])
	assert.Equal(t, float64(20), pg["total"])
	assert.Equal(t, float64(6), pg["from"])
	assert.Equal(t, float64(10), pg["to"])

	filters := body["filters"].(map[string]interface{})
	assert.Equal(t, "music", filters["category"])
	assert.Equal(t, "created_at", filters["sort_by"])
	assert.Equal(t, "desc", filters["sort_order"])

	_, hasFallback := body["fallback"]
	assert.False(t, hasFallback, "no-query listing is not fallback-served")
}

func TestListClampsPerPage(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	_, body := doJSON(t, router, "GET", "/advertisements?per_page=500", nil)
	pg := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(50), pg["per_page"])
}

func TestSearchWithDownIndexFlagsFallback(t *testing.T) {
	st := &memStore{ads: []*model.Advertisement{{ID: "a1", Title: "Guitar", IsActive: true}}}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "GET", "/advertisements?search=guitar", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["fallback"])
	_, hasMeta := body["meilisearch"]
	assert.False(t, hasMeta)
}

func TestAdvancedSearchOmitsSortEcho(t *testing.T) {
	st := &memStore{ads: []*model.Advertisement{{ID: "a1", Title: "Guitar", IsActive: true}}}
	router := newTestRouter(st, downIndex{})

	rec, body := doJSON(t, router, "GET", "/advertisements/search/advanced?search=guitar", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	filters := body["filters"].(map[string]interface{})
	_, hasSort := filters["sort_by"]
	assert.False(t, hasSort, "advanced search is score-ordered, sort is not echoed")
	_, hasFallback := body["fallback"]
	assert.False(t, hasFallback)
}

func TestSuggestionsNeverFail(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	rec, body := doJSON(t, router, "GET", "/advertisements/search/suggestions?q=gui", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["suggestions"])

	rec, body = doJSON(t, router, "GET", "/advertisements/search/suggestions?q=g", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["suggestions"], 0)
}

func TestSearchRouteLiteralsBeatIDRoute(t *testing.T) {
	router := newTestRouter(&memStore{}, downIndex{})

	rec, body := doJSON(t, router, "GET", "/advertisements/search/advanced", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, isEnvelope := body["pagination"]
	assert.True(t, isEnvelope, "must route to advanced search, not the show handler")
}

func TestHealthEndpoint(t *testing.T) {
	healthy := func() bool { return true }
	down := func() bool { return false }

	rec := httptest.NewRecorder()
	NewHealthHandler(healthy, down).CheckHealth(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "index loss never fails the endpoint")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, "up", deps["store"])
	assert.Equal(t, "down", deps["search_index"])

	rec = httptest.NewRecorder()
	NewHealthHandler(down, healthy).CheckHealth(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}
