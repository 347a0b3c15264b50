package fhir

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewSearchBundle(t *testing.T) {
	resources := []interface{}{
		map[string]string{"id": "1", "resourceType": "Patient"},
		map[string]string{"id": "2", "resourceType": "Patient"},
	}

	bundle := NewSearchBundle(resources, 10, "/fhir/Patient")

	if bundle.ResourceType != "Bundle" {
		t.Errorf("expected resourceType Bundle, got %s", bundle.ResourceType)
	}
	if bundle.Type != "searchset" {
		t.Errorf("expected type searchset, got %s", bundle.Type)
	}
	if bundle.ID == "" {
		t.Error("expected bundle id to be set")
	}
	if *bundle.Total != 10 {
		t.Errorf("expected total 10, got %d", *bundle.Total)
	}
	if len(bundle.Entry) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(bundle.Entry))
	}
	if bundle.Entry[0].Search == nil || bundle.Entry[0].Search.Mode != "match" {
		t.Error("expected search mode 'match'")
	}
	if bundle.Timestamp == nil {
		t.Error("expected timestamp to be set")
	}
	if len(bundle.Link) != 1 || bundle.Link[0].Relation != "self" {
		t.Errorf("expected a single self link, got %+v", bundle.Link)
	}
}

func TestNewSearchBundle_FullURL(t *testing.T) {
	resources := []interface{}{
		map[string]interface{}{"resourceType": "Patient", "id": "abc-123"},
	}

	bundle := NewSearchBundle(resources, 1, "/fhir/Patient")

	if bundle.Entry[0].FullURL != "Patient/abc-123" {
		t.Errorf("expected fullUrl 'Patient/abc-123', got '%s'", bundle.Entry[0].FullURL)
	}
}

func TestNewSearchBundle_Empty(t *testing.T) {
	bundle := NewSearchBundle(nil, 0, "/fhir/Patient")

	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"entry":[]`) {
		t.Errorf("expected empty entry array in JSON, got %s", data)
	}
	if !strings.Contains(string(data), `"total":0`) {
		t.Errorf("expected total 0 in JSON, got %s", data)
	}
}

func TestNewSearchBundleWithLinks(t *testing.T) {
	tests := []struct {
		name     string
		params   SearchBundleParams
		wantRels []string
		wantNext string
		wantPrev string
	}{
		{
			name:     "first page",
			params:   SearchBundleParams{BaseURL: "/fhir/Patient", Count: 2, Offset: 0, Total: 5},
			wantRels: []string{"self", "next"},
			wantNext: "/fhir/Patient?_count=2&_offset=2",
		},
		{
			name:     "middle page with filters",
			params:   SearchBundleParams{BaseURL: "/fhir/Patient", QueryStr: "gender=male", Count: 2, Offset: 2, Total: 5},
			wantRels: []string{"self", "next", "previous"},
			wantNext: "/fhir/Patient?gender=male&_count=2&_offset=4",
			wantPrev: "/fhir/Patient?gender=male&_count=2&_offset=0",
		},
		{
			name:     "last page",
			params:   SearchBundleParams{BaseURL: "/fhir/Patient", Count: 2, Offset: 4, Total: 5},
			wantRels: []string{"self", "previous"},
			wantPrev: "/fhir/Patient?_count=2&_offset=2",
		},
		{
			name:     "zero count never links next",
			params:   SearchBundleParams{BaseURL: "/fhir/Patient", Count: 0, Offset: 0, Total: 5},
			wantRels: []string{"self"},
		},
		{
			name:     "previous clamps at zero",
			params:   SearchBundleParams{BaseURL: "/fhir/Patient", Count: 10, Offset: 3, Total: 5},
			wantRels: []string{"self", "previous"},
			wantPrev: "/fhir/Patient?_count=10&_offset=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := NewSearchBundleWithLinks(nil, tt.params)

			rels := make([]string, len(bundle.Link))
			urls := map[string]string{}
			for i, l := range bundle.Link {
				rels[i] = l.Relation
				urls[l.Relation] = l.URL
			}
			if strings.Join(rels, ",") != strings.Join(tt.wantRels, ",") {
				t.Errorf("expected relations %v, got %v", tt.wantRels, rels)
			}
			if tt.wantNext != "" && urls["next"] != tt.wantNext {
				t.Errorf("expected next %q, got %q", tt.wantNext, urls["next"])
			}
			if tt.wantPrev != "" && urls["previous"] != tt.wantPrev {
				t.Errorf("expected previous %q, got %q", tt.wantPrev, urls["previous"])
			}
			if *bundle.Total != tt.params.Total {
				t.Errorf("expected total %d, got %d", tt.params.Total, *bundle.Total)
			}
		})
	}
}

func TestBundle_TotalOrZero(t *testing.T) {
	var nilBundle *Bundle
	if nilBundle.TotalOrZero() != 0 {
		t.Error("expected 0 for nil bundle")
	}
	if (&Bundle{}).TotalOrZero() != 0 {
		t.Error("expected 0 for missing total")
	}
	n := 7
	if (&Bundle{Total: &n}).TotalOrZero() != 7 {
		t.Error("expected 7")
	}
}

func TestDecodeEntries(t *testing.T) {
	resources := []interface{}{
		map[string]string{"resourceType": "Patient", "id": "b"},
		map[string]string{"resourceType": "Patient", "id": "a"},
	}
	bundle := NewSearchBundle(resources, 2, "/fhir/Patient")

	got, err := DecodeEntries[Resource](bundle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("expected entries in order b,a, got %+v", got)
	}
}

func TestDecodeEntries_Invalid(t *testing.T) {
	bundle := &Bundle{Entry: []BundleEntry{{Resource: json.RawMessage(`"not an object"`)}}}
	if _, err := DecodeEntries[Resource](bundle); err == nil {
		t.Error("expected decode error")
	}
}
