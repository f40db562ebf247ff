// Package cpediscovery is the public entry point to the CPE discovery
// pipeline: FindCpe streams a ranked list of candidate CPE 2.3
// identifiers for a free-text asset descriptor, and ValidateCpe checks
// a CPE string's syntax and, optionally, its presence in the catalog.
package cpediscovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/codescoop/cpediscover/internal/asset"
	"github.com/codescoop/cpediscover/internal/config"
	"github.com/codescoop/cpediscover/internal/cpe"
	"github.com/codescoop/cpediscover/internal/errs"
	"github.com/codescoop/cpediscover/internal/nvd"
	"github.com/codescoop/cpediscover/internal/pipeline"
	"github.com/codescoop/cpediscover/internal/pkg/lexicon"
	"github.com/codescoop/cpediscover/internal/ranking"
	"github.com/codescoop/cpediscover/internal/ratelimit"
	"github.com/codescoop/cpediscover/internal/scoring"
	"github.com/codescoop/cpediscover/internal/search"
)

// Re-exported so callers never need to import internal packages.
type (
	ProgressEvent    = pipeline.ProgressEvent
	Phase            = pipeline.Phase
	CompletedPayload = pipeline.CompletedPayload
	Candidate        = ranking.Candidate
	ParsedAsset      = asset.ParsedAsset
	ValidationResult = cpe.ValidationResult
)

// Service wires every internal component together behind the two
// downstream operations named in the discovery specification.
type Service struct {
	cfg      config.Config
	client   *nvd.Client
	limiter  *ratelimit.Limiter
	searcher search.KeywordSearcher
	querier  cpe.CatalogQuerier
	parser   *asset.Parser
	scorer   *scoring.Engine
	log      *logrus.Entry
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithLogger attaches a structured logger; an entry on the logrus
// standard logger is used when omitted.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) { s.log = log }
}

// New builds a Service from cfg. It loads the bundled lexicon and
// constructs the rate limiter, catalog client, parser, and scoring
// engine from cfg's values.
func New(cfg config.Config, opts ...Option) (*Service, error) {
	lex, err := lexicon.Default()
	if err != nil {
		return nil, fmt.Errorf("loading bundled lexicon: %w", err)
	}

	client := nvd.New(nvd.WithAPIKey(cfg.NVD.APIKey))
	limiter := ratelimit.New(
		ratelimit.WithMinInterval(cfg.NVD.MinInterval),
		ratelimit.WithTTL(cfg.Cache.TTL),
	)

	s := &Service{
		cfg:      cfg,
		client:   client,
		limiter:  limiter,
		searcher: search.NewRateLimited(client, limiter),
		querier:  nvd.NewRateLimitedQuerier(client, limiter),
		parser:   asset.New(lex),
		scorer: scoring.New(scoring.Weights{
			Vendor:       cfg.Scoring.Weights.Vendor,
			Product:      cfg.Scoring.Weights.Product,
			Version:      cfg.Scoring.Weights.Version,
			TokenOverlap: cfg.Scoring.Weights.TokenOverlap,
		}),
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FindCpe streams ordered progress events for a discovery run against
// assetName, terminating the returned channel with either a completed
// or an error event. assetName must be non-empty after trimming and at
// least 2 characters; topN is clamped to [1, cfg.Ranking.TopNMax] and
// defaults to cfg.Ranking.TopNDefault when <= 0.
func (s *Service) FindCpe(ctx context.Context, assetName string, topN int) <-chan ProgressEvent {
	trimmed := strings.TrimSpace(assetName)
	if len(trimmed) < 2 {
		events := make(chan ProgressEvent, 1)
		events <- ProgressEvent{
			Kind:    pipeline.KindError,
			Phase:   pipeline.PhaseParsing,
			Message: errs.New(errs.InvalidInput, "assetName must be at least 2 characters after trimming").Error(),
		}
		close(events)
		return events
	}

	if topN <= 0 {
		topN = s.cfg.Ranking.TopNDefault
	}
	if topN > s.cfg.Ranking.TopNMax {
		topN = s.cfg.Ranking.TopNMax
	}

	p := pipeline.New(pipeline.Deps{
		Parser:       s.parser,
		NarrowTarget: s.cfg.Search.NarrowTarget,
		Searcher:     s.searcher,
		Scorer:       s.scorer,
		Log:          s.log,
	})
	return p.Run(ctx, trimmed, topN)
}

// ValidateCpe checks cpeString's CPE 2.3 syntax and, when checkCatalog
// is true, confirms its presence in the NVD catalog. It returns once;
// a syntactic failure short-circuits before any upstream call.
func (s *Service) ValidateCpe(ctx context.Context, cpeString string, checkCatalog bool) *ValidationResult {
	return cpe.Validate(ctx, cpeString, s.querier, checkCatalog)
}
