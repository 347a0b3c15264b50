package fhirclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ehr/patientlist/internal/platform/fhir"
)

// Error is returned for any non-2xx response. Outcome is set when the body
// decoded as an OperationOutcome with at least one issue.
type Error struct {
	Status     int
	StatusText string
	Outcome    *fhir.OperationOutcome
}

func (e *Error) Error() string {
	if e.Outcome != nil && len(e.Outcome.Issue) > 0 {
		return e.Outcome.Message()
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.StatusText)
}

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool {
	return e.Status == http.StatusNotFound
}

func newError(resp *http.Response, body []byte) *Error {
	e := &Error{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
	}

	var oo fhir.OperationOutcome
	if err := json.Unmarshal(body, &oo); err == nil && len(oo.Issue) > 0 {
		e.Outcome = &oo
	}
	return e
}

// statusText returns the reason phrase from the status line, e.g. "Not Found"
// from "404 Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
