// Package search implements the progressive narrowing orchestrator:
// it iteratively tightens a keyword query against the NVD catalog
// until the result set is small enough to score, backing off when
// narrowing overshoots to zero.
package search

import (
	"context"
	"strings"

	"github.com/codescoop/cpediscover/internal/asset"
	"github.com/codescoop/cpediscover/internal/errs"
	"github.com/codescoop/cpediscover/internal/nvd"
	"github.com/codescoop/cpediscover/internal/ratelimit"
)

// DefaultNarrowTarget is the desired upper bound on a "small enough"
// result set.
const DefaultNarrowTarget = 10

// KeywordSearcher issues a keyword query and returns matching catalog
// records. RateLimited wraps a Client behind a Limiter to satisfy
// this; tests can substitute a fake.
type KeywordSearcher interface {
	SearchKeyword(ctx context.Context, phrase string) ([]nvd.Record, error)
}

// RateLimited adapts an nvd.Client through a ratelimit.Limiter so
// every keyword query issued by an Orchestrator is throttled and
// cached exactly like the exact-match queries the validator issues.
type RateLimited struct {
	client  *nvd.Client
	limiter *ratelimit.Limiter
}

// NewRateLimited builds a KeywordSearcher backed by client and gated
// by limiter.
func NewRateLimited(client *nvd.Client, limiter *ratelimit.Limiter) *RateLimited {
	return &RateLimited{client: client, limiter: limiter}
}

func (r *RateLimited) SearchKeyword(ctx context.Context, phrase string) ([]nvd.Record, error) {
	key := ratelimit.Fingerprint("", phrase)
	payload, err := r.limiter.Do(ctx, key, func(ctx context.Context) (any, error) {
		return r.client.QueryKeyword(ctx, phrase)
	})
	if err != nil {
		return nil, err
	}
	return payload.(*nvd.Result).Records, nil
}

// Warning is a non-fatal event surfaced when narrowing degrades to the
// best-effort result rather than an ideal one.
type Warning struct {
	Message string
}

// Outcome is the result of running Orchestrator.Narrow.
type Outcome struct {
	Records  []nvd.Record
	Warnings []Warning
}

// QueryObserver is notified after each catalog query the orchestrator
// issues, letting a caller (the pipeline) emit a progress event per
// suspension point without the orchestrator knowing about events.
type QueryObserver func(query string, resultCount int)

// Orchestrator runs the progressive narrowing algorithm against a
// KeywordSearcher.
type Orchestrator struct {
	searcher     KeywordSearcher
	narrowTarget int
	onQuery      QueryObserver
}

// New builds an Orchestrator. narrowTarget <= 0 uses DefaultNarrowTarget.
func New(searcher KeywordSearcher, narrowTarget int) *Orchestrator {
	if narrowTarget <= 0 {
		narrowTarget = DefaultNarrowTarget
	}
	return &Orchestrator{searcher: searcher, narrowTarget: narrowTarget, onQuery: func(string, int) {}}
}

// OnQuery sets the observer invoked after every catalog query.
func (o *Orchestrator) OnQuery(fn QueryObserver) {
	if fn == nil {
		fn = func(string, int) {}
	}
	o.onQuery = fn
}

// Narrow runs the algorithm: compose a base query from vendor/product
// (or the raw text when both are absent), issue it, and if the result
// set is too large, progressively append the version and then each
// version candidate until the set is small enough or the candidates
// are exhausted. A step-2 failure is fatal; failures during later
// steps fall back to the best set gathered so far, with a warning.
func (o *Orchestrator) Narrow(ctx context.Context, parsed *asset.ParsedAsset) (*Outcome, error) {
	baseQuery := composeBaseQuery(parsed)

	r0, err := o.searcher.SearchKeyword(ctx, baseQuery)
	if err != nil {
		return nil, errs.Wrap(errs.UpstreamUnavailable, "initial catalog search failed", err)
	}
	o.onQuery(baseQuery, len(r0))
	if len(r0) <= o.narrowTarget {
		return &Outcome{Records: r0}, nil
	}

	current := r0
	var warnings []Warning

	if parsed.Version != nil && *parsed.Version != "" {
		versionQuery := baseQuery + " " + *parsed.Version
		rv, err := o.searcher.SearchKeyword(ctx, versionQuery)
		if err == nil {
			o.onQuery(versionQuery, len(rv))
		}
		switch {
		case err != nil:
			return &Outcome{Records: current, Warnings: append(warnings, Warning{Message: "version-narrowed search failed: " + err.Error()})}, nil
		case len(rv) == 0:
			return &Outcome{Records: r0, Warnings: warnings}, nil
		case len(rv) <= o.narrowTarget:
			return &Outcome{Records: rv, Warnings: warnings}, nil
		}
		// rv still overshoots narrowTarget: fall through to
		// versionCandidates starting from r0/baseQuery rather than the
		// already version-qualified query, since versionCandidates
		// commonly repeats the same version as its sole entry.
	}

	if len(parsed.VersionCandidates) == 0 {
		return &Outcome{Records: r0, Warnings: warnings}, nil
	}

	q := baseQuery
	for _, candidate := range parsed.VersionCandidates {
		q = q + " " + candidate
		rn, err := o.searcher.SearchKeyword(ctx, q)
		if err != nil {
			warnings = append(warnings, Warning{Message: "narrowing search failed for candidate " + candidate + ": " + err.Error()})
			break
		}
		o.onQuery(q, len(rn))
		if len(rn) == 0 {
			return &Outcome{Records: current, Warnings: warnings}, nil
		}
		if len(rn) <= o.narrowTarget {
			return &Outcome{Records: rn, Warnings: warnings}, nil
		}
		current = rn
	}

	return &Outcome{Records: current, Warnings: warnings}, nil
}

func composeBaseQuery(parsed *asset.ParsedAsset) string {
	vendor, product := "", ""
	if parsed.Vendor != nil {
		vendor = *parsed.Vendor
	}
	if parsed.Product != nil {
		product = *parsed.Product
	}
	switch {
	case vendor == "" && product == "":
		return parsed.Raw
	case vendor == product:
		return vendor
	case vendor == "":
		return product
	case product == "":
		return vendor
	default:
		return strings.Join([]string{vendor, product}, " ")
	}
}
