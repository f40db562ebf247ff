// Package nvd implements the catalog HTTP client: it issues keyword or
// exact-match queries against the NVD CPE catalog and parses the JSON
// envelope.
package nvd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codescoop/cpediscover/internal/cpe"
	"github.com/codescoop/cpediscover/internal/errs"
	"github.com/codescoop/cpediscover/internal/ratelimit"
)

// baseURL is a var, not a const, so tests can point it at an
// httptest.Server instead of the live NVD endpoint.
var baseURL = "https://services.nvd.nist.gov/rest/json/cpes/2.0"

// DefaultTimeout is the recommended per-request upstream timeout.
const DefaultTimeout = 30 * time.Second

// Title is a catalog product title in a given language.
type Title struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
}

// envelopeCPE mirrors the subset of the catalog's per-product CPE
// object this client consumes; all other fields pass through unread.
type envelopeCPE struct {
	CPEName    string  `json:"cpeName"`
	CPENameID  string  `json:"cpeNameId"`
	Deprecated bool    `json:"deprecated"`
	Titles     []Title `json:"titles"`
}

type envelopeProduct struct {
	CPE envelopeCPE `json:"cpe"`
}

type envelope struct {
	TotalResults int               `json:"totalResults"`
	Products     []envelopeProduct `json:"products"`
}

// Record is the per-CPE data this client surfaces to callers, after
// picking the first English title (falling back to the first title
// of any language).
type Record struct {
	CPEName    string
	CPENameID  string
	Deprecated bool
	Title      string
}

// Result is a parsed catalog response.
type Result struct {
	TotalResults int
	Records      []Record
}

// Client issues exact and keyword queries against the NVD CPE
// catalog. It holds no rate-limiting or caching state of its own —
// that lives in internal/ratelimit; RateLimitedQuerier and
// search.RateLimited put a Client behind a ratelimit.Limiter.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey attaches an NVD API key via the apiKey header, letting
// the caller use a lower MIN_INTERVAL.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient overrides the underlying http.Client, primarily for
// tests that point at an httptest.Server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{httpClient: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryExact issues an exact-match query: cpeMatchString=<CPE 2.3 URI>.
func (c *Client) QueryExact(ctx context.Context, cpeURI string) (*Result, error) {
	q := url.Values{}
	q.Set("cpeMatchString", cpeURI)
	q.Set("resultsPerPage", "10")
	return c.do(ctx, q)
}

// QueryKeyword issues a keyword query: keywordSearch=<phrase>.
func (c *Client) QueryKeyword(ctx context.Context, phrase string) (*Result, error) {
	q := url.Values{}
	q.Set("keywordSearch", phrase)
	q.Set("resultsPerPage", "10")
	return c.do(ctx, q)
}

// QueryExactCPE adapts QueryExact to internal/cpe.CatalogQuerier, so
// the validator's catalog phase can consult this client without this
// package's Result/Record types leaking into internal/cpe.
func (c *Client) QueryExactCPE(ctx context.Context, cpeURI string) ([]cpe.CatalogRecord, error) {
	result, err := c.QueryExact(ctx, cpeURI)
	if err != nil {
		return nil, err
	}
	records := make([]cpe.CatalogRecord, 0, len(result.Records))
	for _, r := range result.Records {
		records = append(records, cpe.CatalogRecord{CPEName: r.CPEName, Deprecated: r.Deprecated})
	}
	return records, nil
}

// RateLimitedQuerier adapts a Client through a ratelimit.Limiter so the
// validator's exact-match queries are throttled and cached exactly
// like the keyword queries search.RateLimited issues.
type RateLimitedQuerier struct {
	client  *Client
	limiter *ratelimit.Limiter
}

// NewRateLimitedQuerier builds a cpe.CatalogQuerier backed by client
// and gated by limiter.
func NewRateLimitedQuerier(client *Client, limiter *ratelimit.Limiter) *RateLimitedQuerier {
	return &RateLimitedQuerier{client: client, limiter: limiter}
}

func (r *RateLimitedQuerier) QueryExactCPE(ctx context.Context, cpeURI string) ([]cpe.CatalogRecord, error) {
	key := ratelimit.Fingerprint(cpeURI, "")
	payload, err := r.limiter.Do(ctx, key, func(ctx context.Context) (any, error) {
		return r.client.QueryExactCPE(ctx, cpeURI)
	})
	if err != nil {
		return nil, err
	}
	return payload.([]cpe.CatalogRecord), nil
}

func (c *Client) do(ctx context.Context, q url.Values) (*Result, error) {
	requestID := uuid.NewString()
	reqURL := baseURL + "?" + q.Encode()

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"url":        reqURL,
	}).Debug("nvd: outbound catalog request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.UpstreamUnavailable, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.UpstreamUnavailable, "catalog request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.New(errs.UpstreamUnavailable,
			fmt.Sprintf("catalog returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.UpstreamUnavailable, "reading catalog response", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errs.Wrap(errs.UpstreamMalformed, "decoding catalog response", err)
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return nil, errs.Wrap(errs.UpstreamMalformed, "decoding catalog response", err)
	}
	for _, field := range []string{"totalResults", "products"} {
		if _, ok := present[field]; !ok {
			return nil, errs.New(errs.UpstreamMalformed, "catalog response missing "+field)
		}
	}

	records := make([]Record, 0, len(env.Products))
	for _, p := range env.Products {
		records = append(records, Record{
			CPEName:    p.CPE.CPEName,
			CPENameID:  p.CPE.CPENameID,
			Deprecated: p.CPE.Deprecated,
			Title:      pickTitle(p.CPE.Titles),
		})
	}

	logrus.WithFields(logrus.Fields{
		"request_id":    requestID,
		"total_results": env.TotalResults,
		"records":       len(records),
	}).Debug("nvd: catalog response parsed")

	return &Result{TotalResults: env.TotalResults, Records: records}, nil
}

func pickTitle(titles []Title) string {
	for _, t := range titles {
		if t.Lang == "en" {
			return t.Title
		}
	}
	if len(titles) > 0 {
		return titles[0].Title
	}
	return ""
}
