package model

import "time"

// Advertisement is a single classified listing.
type Advertisement struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Content      string     `json:"content"`
	Category     *string    `json:"category,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	ContactEmail *string    `json:"contact_email,omitempty"`
	ContactPhone *string    `json:"contact_phone,omitempty"`
	Tags         []string   `json:"tags"`
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsEligible reports whether the advertisement belongs in default public
// views: active and either never expiring or not yet expired.
func (a *Advertisement) IsEligible(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// AdvertisementUpdate carries a partial update; nil fields are left untouched.
type AdvertisementUpdate struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Content      *string    `json:"content,omitempty"`
	Category     *string    `json:"category,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	ContactEmail *string    `json:"contact_email,omitempty"`
	ContactPhone *string    `json:"contact_phone,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// SortOrder is the direction of a sort clause.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchRequest captures the query parameters shared by the list and search
// endpoints after parsing and clamping.
type SearchRequest struct {
	Query     string
	Category  string
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder SortOrder
	Page      int
	PerPage   int
}

// Offset returns the limit/offset position derived from page and page size.
func (r SearchRequest) Offset() int { return (r.Page - 1) * r.PerPage }

// Pagination is the page metadata block of list/search responses.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// NewPagination computes page metadata for a filtered total.
func NewPagination(page, perPage, total, returned int) Pagination {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	p := Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
	if returned > 0 {
		from := (page-1)*perPage + 1
		to := from + returned - 1
		p.From = &from
		p.To = &to
	}
	return p
}

// IndexMeta carries diagnostic metadata when a search was served by the
// external index.
type IndexMeta struct {
	ProcessingTimeMs  int64                     `json:"processing_time"`
	FacetDistribution map[string]map[string]int `json:"facet_distribution"`
}

// SearchResult is the normalized outcome of a search, regardless of which
// backend served it.
type SearchResult struct {
	Advertisements []*Advertisement
	Pagination     Pagination
	Fallback       bool
	IndexMeta      *IndexMeta
}

// Suggestion is a single autocomplete candidate.
type Suggestion struct {
	Type     string  `json:"type"`
	Value    string  `json:"value"`
	Category *string `json:"category,omitempty"`
	Location *string `json:"location,omitempty"`
}

// SuggestionResult is an ordered set of suggestions plus the serving path.
type SuggestionResult struct {
	Suggestions []Suggestion
	Fallback    bool
}

// IndexStats mirrors the engine's per-index statistics document.
type IndexStats struct {
	NumberOfDocuments int64          `json:"numberOfDocuments"`
	IsIndexing        bool           `json:"isIndexing"`
	FieldDistribution map[string]int `json:"fieldDistribution"`
}
