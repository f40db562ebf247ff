package cpe

import (
	"context"
	"strings"

	"github.com/codescoop/cpediscover/internal/errs"
)

// CatalogRecord is the subset of a catalog hit the validator needs.
// internal/nvd converts its Record values into this type in
// Client.QueryExactCPE.
type CatalogRecord struct {
	CPEName    string
	Deprecated bool
}

// CatalogQuerier is the narrow interface the catalog phase needs from
// the NVD client (internal/nvd.Client), so this package never imports
// internal/nvd directly.
type CatalogQuerier interface {
	QueryExactCPE(ctx context.Context, cpeURI string) ([]CatalogRecord, error)
}

// MatchKind classifies how (or whether) the catalog confirmed a CPE.
type MatchKind string

const (
	ExactMatch   MatchKind = "exact"
	PartialMatch MatchKind = "partial"
	NoMatch      MatchKind = "absent"
)

// ValidationResult is the return shape of Validate.
type ValidationResult struct {
	IsValid         bool
	ExistsInCatalog bool
	ExactMatch      MatchKind
	Deprecated      bool
	Parsed          *DeconstructedCpe
	MatchesFound    int
	Message         string
}

// legacyPrefix is the CPE 2.2 URI prefix, explicitly rejected rather
// than auto-upgraded.
const legacyPrefix = "cpe:/"

var validParts = map[string]struct{}{"a": {}, "o": {}, "h": {}}

// ValidateSyntax checks that raw begins with "cpe:2.3:", that its part
// attribute is one of a/o/h, and that vendor is present and not the
// wildcard.
func ValidateSyntax(raw string) (*DeconstructedCpe, error) {
	if strings.HasPrefix(raw, legacyPrefix) {
		return nil, errs.New(errs.InvalidCpeFormat, "CPE 2.2 format; please supply 2.3")
	}
	if !strings.HasPrefix(raw, "cpe:2.3:") {
		return nil, errs.New(errs.InvalidCpeFormat, "must begin with cpe:2.3:")
	}

	d := Deconstruct(raw)
	if !d.Valid {
		return nil, errs.New(errs.InvalidCpeFormat, "malformed CPE 2.3 URI: fewer than 5 colon-separated fields")
	}
	if _, ok := validParts[d.Part]; !ok {
		return nil, errs.New(errs.InvalidCpeFormat, "part must be one of a, o, h")
	}
	if d.Vendor == "" || IsWildcard(d.Vendor) {
		return nil, errs.New(errs.InvalidCpeFormat, "vendor attribute must be present")
	}
	return d, nil
}

// Validate runs the syntactic phase first, short-circuiting the
// upstream call on failure, then, when requested, the catalog phase
// via querier.
func Validate(ctx context.Context, raw string, querier CatalogQuerier, checkCatalog bool) *ValidationResult {
	deconstructed, err := ValidateSyntax(raw)
	if err != nil {
		return &ValidationResult{
			IsValid: false,
			Message: err.Error(),
		}
	}

	result := &ValidationResult{
		IsValid: true,
		Parsed:  deconstructed,
		Message: "syntactically valid",
	}

	if !checkCatalog || querier == nil {
		return result
	}

	records, err := querier.QueryExactCPE(ctx, raw)
	if err != nil {
		// UpstreamUnavailable: report syntactically valid but unverified.
		result.Message = "syntactically valid; catalog verification unavailable: " + err.Error()
		return result
	}

	result.MatchesFound = len(records)
	if len(records) == 0 {
		result.ExactMatch = NoMatch
		result.Message = "syntactically valid; not found in catalog"
		return result
	}

	for _, rec := range records {
		if rec.CPEName == raw {
			result.ExistsInCatalog = true
			result.ExactMatch = ExactMatch
			result.Deprecated = rec.Deprecated
			result.Message = "exact match found in catalog"
			return result
		}
	}

	result.ExistsInCatalog = true
	result.ExactMatch = PartialMatch
	result.Deprecated = records[0].Deprecated
	result.Message = "partial match found in catalog"
	return result
}
