package fhir

import (
	"fmt"
	"strings"
)

// OperationOutcome severity levels per FHIR R4.
const (
	IssueSeverityFatal       = "fatal"
	IssueSeverityError       = "error"
	IssueSeverityWarning     = "warning"
	IssueSeverityInformation = "information"
)

// OperationOutcome issue type codes per FHIR R4.
const (
	IssueTypeInvalid      = "invalid"
	IssueTypeNotFound     = "not-found"
	IssueTypeProcessing   = "processing"
	IssueTypeNotSupported = "not-supported"
	IssueTypeException    = "exception"
	IssueTypeTimeout      = "timeout"
)

// Message flattens the outcome into a single human readable line. Each issue
// contributes its diagnostics, or "<severity>: <code>" when diagnostics is
// empty. Issues are joined with ", ".
func (o *OperationOutcome) Message() string {
	parts := make([]string, 0, len(o.Issue))
	for _, issue := range o.Issue {
		if issue.Diagnostics != "" {
			parts = append(parts, issue.Diagnostics)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Severity, issue.Code))
	}
	return strings.Join(parts, ", ")
}

// MethodNotAllowedOutcome creates a 405-style OperationOutcome for an HTTP
// method that is not permitted on the target resource endpoint.
func MethodNotAllowedOutcome(method string) *OperationOutcome {
	return NewOperationOutcome(
		IssueSeverityError,
		IssueTypeNotSupported,
		fmt.Sprintf("HTTP method %s is not allowed on this resource", method),
	)
}
