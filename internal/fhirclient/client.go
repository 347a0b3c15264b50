// Package fhirclient reads Patient searchsets from a FHIR R4 server.
package fhirclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/patientlist/internal/platform/fhir"
)

// DefaultBaseURL points at the local mock server.
const DefaultBaseURL = "http://localhost:8000/fhir"

const maxBodyBytes = 10 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client has no
// timeout of its own; callers bound requests through the context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the FHIR base URL, e.g. "http://host/fhir". An
// empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised server base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchParams are the optional Patient search inputs. Unset fields are left
// out of the request.
type SearchParams struct {
	Search string
	Gender string
	Active *bool
	Count  *int
	Offset *int
	Sort   string
	Order  string
}

// Bool returns a pointer to b, for SearchParams.Active.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for SearchParams.Count and Offset.
func Int(n int) *int { return &n }

// EncodeQuery renders the defined parameters in the order _search, gender,
// active, _count, _offset, _sort, _order. It returns "" when nothing is set.
func (p SearchParams) EncodeQuery() string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	if p.Search != "" {
		add("_search", p.Search)
	}
	if p.Gender != "" {
		add("gender", p.Gender)
	}
	if p.Active != nil {
		add("active", strconv.FormatBool(*p.Active))
	}
	if p.Count != nil {
		add("_count", strconv.Itoa(*p.Count))
	}
	if p.Offset != nil {
		add("_offset", strconv.Itoa(*p.Offset))
	}
	if p.Sort != "" {
		add("_sort", p.Sort)
	}
	if p.Order != "" {
		add("_order", p.Order)
	}
	return b.String()
}

// Search runs a Patient search and returns the decoded envelope as sent,
// without checking its resourceType.
func (c *Client) Search(ctx context.Context, p SearchParams) (*fhir.Bundle, error) {
	target := c.baseURL + "/Patient"
	if q := p.EncodeQuery(); q != "" {
		target += "?" + q
	}

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var bundle fhir.Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("decode searchset: %w", err)
	}
	return &bundle, nil
}

// GetByID reads one Patient. A bare resource is wrapped into a one-entry
// searchset; a server that already answers with a Bundle is passed through.
func (c *Client) GetByID(ctx context.Context, id string) (*fhir.Bundle, error) {
	if id == "" {
		return nil, errors.New("patient id is required")
	}
	target := c.baseURL + "/Patient/" + url.PathEscape(id)

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var head fhir.Resource
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("decode patient: %w", err)
	}
	if head.ResourceType == "Bundle" {
		var bundle fhir.Bundle
		if err := json.Unmarshal(body, &bundle); err != nil {
			return nil, fmt.Errorf("decode searchset: %w", err)
		}
		return &bundle, nil
	}
	return fhir.NewSearchBundle([]interface{}{json.RawMessage(body)}, 1, target), nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", fhir.MIMEFHIRJSON)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("fhir request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp, body)
	}
	return body, nil
}
