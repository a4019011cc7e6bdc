// Package sirene is the HTTP client of the INSEE SIRENE registry.
package sirene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cen-na/agricarte/internal/domain"
	"github.com/cen-na/agricarte/internal/domain/siret"
	"github.com/cen-na/agricarte/internal/metrics"
)

// DefaultBaseURL is the SIRENE 3.11 API root.
const DefaultBaseURL = "https://api.insee.fr/api-sirene/3.11"

// apiKeyHeader carries the integration key on every request.
const apiKeyHeader = "X-INSEE-Api-Key-Integration"

// maxErrorBody caps the upstream body kept in errors.
const maxErrorBody = 512

// Config holds the registry client settings.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches establishments by SIRET.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewClient creates a registry client. Empty fields fall back to defaults.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: hc, baseURL: base, apiKey: cfg.APIKey, logger: logger}
}

// Lookup returns the company registered for n.
// Unknown SIRETs yield domain.ErrSiretNotFound; any other upstream failure wraps domain.ErrSireneUnavailable.
func (c *Client) Lookup(ctx context.Context, n siret.Number) (siret.Company, error) {
	start := time.Now()
	company, status, err := c.lookup(ctx, n)
	metrics.SireneRequestsTotal.WithLabelValues(status).Inc()
	metrics.SireneRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return company, err
}

func (c *Client) lookup(ctx context.Context, n siret.Number) (siret.Company, string, error) {
	resp, err := c.get(ctx, "/siret/"+n.String())
	if err != nil {
		metrics.SireneErrorsTotal.WithLabelValues("transport").Inc()
		return siret.Company{}, "error", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return siret.Company{}, "not_found", fmt.Errorf("siret %s: %w", n, domain.ErrSiretNotFound)
	case resp.StatusCode != http.StatusOK:
		metrics.SireneErrorsTotal.WithLabelValues("status").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("SIRENE returned an error",
			zap.String("siret", n.String()),
			zap.Int("status", resp.StatusCode),
		)
		return siret.Company{}, "error", domain.NewUpstreamError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload siretResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.SireneErrorsTotal.WithLabelValues("decode").Inc()
		return siret.Company{}, "error", fmt.Errorf("decode siret %s: %v: %w", n, err, domain.ErrSireneUnavailable)
	}
	if payload.Etablissement == nil {
		return siret.Company{}, "not_found", fmt.Errorf("siret %s: %w", n, domain.ErrSiretNotFound)
	}
	return payload.Etablissement.company(), "success", nil
}

// HealthCheck calls the registry status endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.get(ctx, "/informations")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.NewUpstreamError(resp.StatusCode, "informations")
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ctxErr, domain.ErrSireneUnavailable)
		}
		return nil, fmt.Errorf("sirene request: %v: %w", err, domain.ErrSireneUnavailable)
	}
	return resp, nil
}
