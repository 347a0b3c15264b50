package fhir

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patientlist/pkg/pagination"
)

// SearchModeMatch marks an entry that matched the search criteria. This
// server never emits include or outcome entries.
const SearchModeMatch = "match"

// Bundle represents a FHIR Bundle resource.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Timestamp    *time.Time    `json:"timestamp,omitempty"`
	Total        *int          `json:"total,omitempty"`
	Link         []BundleLink  `json:"link,omitempty"`
	Entry        []BundleEntry `json:"entry"`
}

type BundleLink struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
	Search   *BundleSearch   `json:"search,omitempty"`
}

type BundleSearch struct {
	Mode string `json:"mode,omitempty"`
}

// TotalOrZero returns the bundle total, or 0 when the server omitted it.
func (b *Bundle) TotalOrZero() int {
	if b == nil || b.Total == nil {
		return 0
	}
	return *b.Total
}

// SearchBundleParams holds pagination and link information for a search bundle.
type SearchBundleParams struct {
	BaseURL  string
	QueryStr string
	Count    int
	Offset   int
	Total    int
}

// NewSearchBundle creates a searchset Bundle from a list of resources.
// Every entry is marked with search mode "match"; the timestamp is the time
// of the call.
func NewSearchBundle(resources []interface{}, total int, baseURL string) *Bundle {
	return &Bundle{
		ResourceType: "Bundle",
		ID:           uuid.NewString(),
		Type:         "searchset",
		Total:        &total,
		Timestamp:    now(),
		Link: []BundleLink{
			{Relation: "self", URL: baseURL},
		},
		Entry: buildEntries(resources),
	}
}

// NewSearchBundleWithLinks creates a searchset Bundle with self/next/previous links.
func NewSearchBundleWithLinks(resources []interface{}, params SearchBundleParams) *Bundle {
	total := params.Total
	return &Bundle{
		ResourceType: "Bundle",
		ID:           uuid.NewString(),
		Type:         "searchset",
		Total:        &total,
		Timestamp:    now(),
		Link:         buildPaginationLinks(params),
		Entry:        buildEntries(resources),
	}
}

func now() *time.Time {
	t := time.Now().UTC()
	return &t
}

func buildEntries(resources []interface{}) []BundleEntry {
	entries := make([]BundleEntry, len(resources))
	for i, r := range resources {
		raw, _ := json.Marshal(r)
		entries[i] = BundleEntry{
			FullURL:  extractFullURL(raw),
			Resource: raw,
			Search:   &BundleSearch{Mode: SearchModeMatch},
		}
	}
	return entries
}

// extractFullURL builds a relative fullUrl from a resource's resourceType and id.
func extractFullURL(raw json.RawMessage) string {
	var head Resource
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	if head.ResourceType != "" && head.ID != "" {
		return fmt.Sprintf("%s/%s", head.ResourceType, head.ID)
	}
	return ""
}

// buildPaginationLinks creates self, next, and previous links for searchset bundles.
func buildPaginationLinks(params SearchBundleParams) []BundleLink {
	page := pagination.Params{Limit: params.Count, Offset: params.Offset}
	link := func(rel string, offset int) BundleLink {
		return BundleLink{
			Relation: rel,
			URL:      fmt.Sprintf("%s?%s_count=%d&_offset=%d", params.BaseURL, conditionalAmpersand(params.QueryStr), params.Count, offset),
		}
	}

	links := []BundleLink{link("self", page.Offset)}
	if page.Limit > 0 && page.HasNext(params.Total) {
		links = append(links, link("next", page.NextOffset()))
	}
	if page.HasPrevious() {
		links = append(links, link("previous", page.PreviousOffset()))
	}
	return links
}

func conditionalAmpersand(qs string) string {
	if qs == "" {
		return ""
	}
	return qs + "&"
}

// Resource is the minimal header shared by every FHIR resource.
type Resource struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id,omitempty"`
}

// DecodeEntries decodes the resource of every entry into T, preserving entry order.
func DecodeEntries[T any](b *Bundle) ([]T, error) {
	if b == nil {
		return nil, nil
	}
	out := make([]T, 0, len(b.Entry))
	for i, e := range b.Entry {
		var v T
		if err := json.Unmarshal(e.Resource, &v); err != nil {
			return nil, fmt.Errorf("decode bundle entry %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
