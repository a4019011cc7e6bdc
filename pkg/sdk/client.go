package agricarte

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cen-na/agricarte/internal/domain/search/request"
	"github.com/cen-na/agricarte/internal/domain/search/result"
	"github.com/cen-na/agricarte/internal/version"
)

// maxErrorBody caps the body read from a failed response.
const maxErrorBody = 4096

// Client talks to the agricarte REST API.
type Client struct {
	baseURL   string
	http      *http.Client
	apiKey    string
	userAgent string
	obs       *observer
}

// New creates a Client for the service at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("agricarte: base URL must be absolute, got %q", baseURL)
	}

	cfg := &clientConfig{timeout: defaultTimeout, userAgent: version.String()}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		http:      hc,
		apiKey:    cfg.apiKey,
		userAgent: cfg.userAgent,
		obs:       obs,
	}, nil
}

// SearchAgriculteur returns up to 10 agriculteurs whose name contains term.
// Terms shorter than 2 characters return an empty list without a request.
func (c *Client) SearchAgriculteur(ctx context.Context, term string) (_ []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_agriculteur", start, err) }()
	return c.searchPersons(ctx, "/api/search_agriculteur", term)
}

// SearchReferent returns up to 10 referents whose name contains term.
func (c *Client) SearchReferent(ctx context.Context, term string) (_ []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_referent", start, err) }()
	return c.searchPersons(ctx, "/api/search_referent", term)
}

func (c *Client) searchPersons(ctx context.Context, path, term string) ([]Result, error) {
	if !request.Searchable(term) {
		return []Result{}, nil
	}
	var body []personBody
	if err := c.do(ctx, http.MethodPost, path, searchBody{SearchTerm: strings.TrimSpace(term)}, &body); err != nil {
		return nil, err
	}
	out := make([]Result, len(body))
	for i, p := range body {
		out[i] = result.New(p.Display, p.Nom, p.Prenom)
	}
	return out, nil
}

// LookupSiret fetches the company registered for a SIRET, plus what the
// service already knows about it.
func (c *Client) LookupSiret(ctx context.Context, siret string) (_ SiretLookup, err error) {
	start := time.Now()
	defer func() { c.obs.observe("lookup_siret", start, err) }()

	var body lookupBody
	err = c.do(ctx, http.MethodPost, "/api/siret", siretBody{Siret: siret}, &body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == "" {
			apiErr.Code = siretErrorCode(apiErr.Status)
		}
		return SiretLookup{}, err
	}
	return body.toLookup(), nil
}

// siretErrorCode restores the error code of the {"error"} envelope used by /api/siret.
func siretErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_siret"
	case http.StatusNotFound:
		return "siret_not_found"
	case http.StatusTooManyRequests:
		return "sirene_quota_exceeded"
	case http.StatusBadGateway:
		return "sirene_unavailable"
	}
	return ""
}

// CheckExistingContract reports the oldest contract registered for a SIRET.
func (c *Client) CheckExistingContract(ctx context.Context, siret string) (_ ExistingContract, err error) {
	start := time.Now()
	defer func() { c.obs.observe("check_existing_contract", start, err) }()

	var body existingBody
	path := "/api/check_existing_contract_by_siret/" + url.PathEscape(strings.TrimSpace(siret))
	if err = c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return ExistingContract{}, err
	}
	return ExistingContract{Exists: body.Exists, ContractID: body.ContractID, NomSociete: body.NomSociete}, nil
}

// Markers returns the map snapshot.
func (c *Client) Markers(ctx context.Context) (_ []MarkerData, err error) {
	start := time.Now()
	defer func() { c.obs.observe("markers", start, err) }()

	var data []MarkerData
	if err = c.do(ctx, http.MethodGet, "/api/markers", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// FilterMarkers evaluates criteria on the server.
func (c *Client) FilterMarkers(ctx context.Context, criteria Criteria) (_ FilterResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("filter_markers", start, err) }()

	var res FilterResult
	if err = c.do(ctx, http.MethodPost, "/api/markers/filter", criteriaToBody(criteria), &res); err != nil {
		return FilterResult{}, err
	}
	return res, nil
}

// CreateContract registers a contract and returns its map record.
func (c *Client) CreateContract(ctx context.Context, in ContractInput) (_ MarkerData, err error) {
	start := time.Now()
	defer func() { c.obs.observe("create_contract", start, err) }()

	var data MarkerData
	if err = c.do(ctx, http.MethodPost, "/api/contracts", in, &data); err != nil {
		return MarkerData{}, err
	}
	return data, nil
}

// GetContract returns the editable fields of a stored contract.
func (c *Client) GetContract(ctx context.Context, id string) (_ Contract, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_contract", start, err) }()

	var ct Contract
	if err = c.do(ctx, http.MethodGet, "/api/contracts/"+url.PathEscape(id), nil, &ct); err != nil {
		return Contract{}, err
	}
	return ct, nil
}

// UpdateContract replaces a contract and returns its new map record.
func (c *Client) UpdateContract(ctx context.Context, id string, in ContractInput) (_ MarkerData, err error) {
	start := time.Now()
	defer func() { c.obs.observe("update_contract", start, err) }()

	var data MarkerData
	if err = c.do(ctx, http.MethodPut, "/api/contracts/"+url.PathEscape(id), in, &data); err != nil {
		return MarkerData{}, err
	}
	return data, nil
}

// DeleteContract removes a contract.
func (c *Client) DeleteContract(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_contract", start, err) }()

	return c.do(ctx, http.MethodDelete, "/api/contracts/"+url.PathEscape(id), nil, nil)
}

// Usage reports SIRENE quota usage for "day" or "month". An empty period means "month".
func (c *Client) Usage(ctx context.Context, period string) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	path := "/api/usage"
	if period != "" {
		path += "?period=" + url.QueryEscape(period)
	}
	var r UsageReport
	if err = c.do(ctx, http.MethodGet, path, nil, &r); err != nil {
		return UsageReport{}, err
	}
	return r, nil
}

// Health returns the service health. A 503 answer is decoded, not returned as an error.
func (c *Client) Health(ctx context.Context) (_ HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var h HealthStatus
	err = c.do(ctx, http.MethodGet, "/health", nil, &h)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable && h.Status != "" {
		return h, nil
	}
	return h, err
}

// do sends in as JSON and decodes a 2xx answer into out. out may be nil.
// Non-2xx answers become *APIError; a JSON body is still decoded into out for 503.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("agricarte: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("agricarte: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("agricarte: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusServiceUnavailable && out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("agricarte: decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	e := &APIError{Status: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		e.Message = strings.TrimSpace(string(raw))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}
	e.Code = body.Code
	e.Message = body.Message
	if e.Message == "" {
		e.Message = body.Error
	}
	return e
}
