package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patientlist/internal/platform/fhir"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	e := echo.New()
	h.RegisterRoutes(e.Group("/fhir"))
	return h, e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBundle(t *testing.T, rec *httptest.ResponseRecorder) (*fhir.Bundle, []Patient) {
	t.Helper()
	var b fhir.Bundle
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode bundle: %v (%s)", err, rec.Body.String())
	}
	patients, err := fhir.DecodeEntries[Patient](&b)
	if err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	return &b, patients
}

func TestHandler_SearchPatients_All(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/fhir/Patient")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != fhir.MIMEFHIRJSON {
		t.Errorf("expected %s, got %s", fhir.MIMEFHIRJSON, ct)
	}

	b, patients := decodeBundle(t, rec)
	if b.ResourceType != "Bundle" || b.Type != "searchset" {
		t.Errorf("expected searchset Bundle, got %s/%s", b.ResourceType, b.Type)
	}
	if b.TotalOrZero() != 5 || len(patients) != 5 {
		t.Errorf("expected 5 of 5, got %d of %d", len(patients), b.TotalOrZero())
	}
	if b.Entry[0].FullURL != "Patient/patient-001" {
		t.Errorf("unexpected fullUrl %q", b.Entry[0].FullURL)
	}
	if b.Entry[0].Search == nil || b.Entry[0].Search.Mode != "match" {
		t.Error("expected search mode match")
	}
	if patients[0].ResourceType != "Patient" {
		t.Errorf("expected resourceType Patient, got %q", patients[0].ResourceType)
	}
}

func TestHandler_SearchPatients_Search(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/fhir/Patient?_search=John")

	b, patients := decodeBundle(t, rec)
	if b.TotalOrZero() != 1 || len(patients) != 1 || patients[0].ID != "patient-001" {
		t.Errorf("expected only patient-001, got total %d entries %v", b.TotalOrZero(), ids(patients))
	}
}

func TestHandler_SearchPatients_Paged(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/fhir/Patient?gender=male&_count=1&_offset=0")

	b, patients := decodeBundle(t, rec)
	if b.TotalOrZero() != 2 {
		t.Errorf("expected total 2, got %d", b.TotalOrZero())
	}
	if len(patients) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(patients))
	}

	links := map[string]string{}
	for _, l := range b.Link {
		links[l.Relation] = l.URL
	}
	if links["next"] != "/fhir/Patient?gender=male&_count=1&_offset=1" {
		t.Errorf("unexpected next link %q", links["next"])
	}
	if _, ok := links["previous"]; ok {
		t.Error("first page should not link previous")
	}
}

func TestHandler_SearchPatients_HugeCount(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/fhir/Patient?_count=9223372036854775807&_offset=1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	b, patients := decodeBundle(t, rec)
	if b.TotalOrZero() != 5 || len(patients) != 4 {
		t.Errorf("expected 4 of 5, got %d of %d", len(patients), b.TotalOrZero())
	}
	for _, l := range b.Link {
		if l.Relation == "next" {
			t.Errorf("unexpected next link %q", l.URL)
		}
	}
}

func TestHandler_SearchPatients_OffsetPastEnd(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/fhir/Patient?_offset=50")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"entry":[]`) {
		t.Errorf("expected empty entry array, got %s", rec.Body.String())
	}
	b, _ := decodeBundle(t, rec)
	if b.TotalOrZero() != 5 {
		t.Errorf("expected total 5, got %d", b.TotalOrZero())
	}
}

func TestHandler_SearchPatients_RepoError(t *testing.T) {
	h := NewHandler(NewService(failingRepo{}))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/fhir/Patient", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SearchPatientsFHIR(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	var oo fhir.OperationOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &oo); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if len(oo.Issue) != 1 || oo.Issue[0].Severity != fhir.IssueSeverityError {
		t.Errorf("expected one error issue, got %+v", oo.Issue)
	}
}

func TestHandler_GetPatient(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("patient-002")

	if err := h.GetPatientFHIR(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var p Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ResourceType != "Patient" || p.FullName() != "Sarah Elizabeth Williams" {
		t.Errorf("unexpected patient %+v", p)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodGet, "/fhir/Patient/patient-999")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var oo fhir.OperationOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &oo); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if oo.Issue[0].Code != fhir.IssueTypeNotFound {
		t.Errorf("expected not-found, got %s", oo.Issue[0].Code)
	}
}

func TestHandler_Preflight(t *testing.T) {
	_, e := newTestHandler()
	rec := serve(e, http.MethodOptions, "/fhir/Patient")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
