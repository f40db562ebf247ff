// Package scoring implements the scoring engine: four sub-scores in
// [0,1] per candidate plus a weighted composite in [0,100].
package scoring

import (
	"strings"

	"github.com/codescoop/cpediscover/internal/asset"
	"github.com/codescoop/cpediscover/internal/cpe"
)

// Weights holds the four component weights, configurable via
// scoring.weights in the service config.
type Weights struct {
	Vendor       float64
	Product      float64
	Version      float64
	TokenOverlap float64
}

// DefaultWeights is used when the config doesn't override them.
var DefaultWeights = Weights{Vendor: 0.25, Product: 0.35, Version: 0.25, TokenOverlap: 0.15}

// Breakdown carries the four sub-scores, each in [0,1].
type Breakdown struct {
	Vendor       float64
	Product      float64
	Version      float64
	TokenOverlap float64
}

// Engine computes score breakdowns using a fixed set of weights.
type Engine struct {
	weights Weights
}

// New builds a scoring Engine. Pass DefaultWeights unless the config
// overrides them.
func New(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Score computes the sub-scores and composite for one candidate CPE
// against a parsed asset.
func (e *Engine) Score(parsed *asset.ParsedAsset, candidate *cpe.DeconstructedCpe) (Breakdown, float64) {
	b := Breakdown{
		Vendor:       vendorScore(parsed.Vendor, candidate.Vendor),
		Product:      productScore(parsed.Product, candidate.Product),
		Version:      versionScore(parsed.Version, candidate.Version),
		TokenOverlap: jaccard(toSet(parsed.Tokens), toSet(candidate.Tokens)),
	}
	composite := e.weights.Vendor*b.Vendor +
		e.weights.Product*b.Product +
		e.weights.Version*b.Version +
		e.weights.TokenOverlap*b.TokenOverlap
	composite = round2(composite * 100)
	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}
	return b, composite
}

// vendorScore ladders vendor similarity from exact match down to a
// distant guess. The Levenshtein check runs before the substring check
// so a near-miss typo like "wordpres" against "wordpress" lands on the
// tighter distance-based band rather than the looser containment one.
func vendorScore(assetVendor *string, cpeVendor string) float64 {
	if assetVendor == nil {
		return 0
	}
	if cpe.IsWildcard(cpeVendor) {
		return 0.3
	}
	a := strings.ToLower(*assetVendor)
	c := strings.ToLower(cpeVendor)
	if a == c {
		return 1.0
	}
	if levenshtein(a, c) <= 2 {
		return 0.5
	}
	if strings.Contains(a, c) || strings.Contains(c, a) {
		return 0.7
	}
	return 0
}

// productScore is the max of tokenized Jaccard and a Levenshtein
// ratio, with absent/wildcard handling.
func productScore(assetProduct *string, cpeProduct string) float64 {
	if assetProduct == nil {
		return 0
	}
	if cpe.IsWildcard(cpeProduct) {
		return 0.2
	}

	a := strings.ToLower(*assetProduct)
	c := strings.ToLower(cpeProduct)

	aTokens := tokenizeProduct(a)
	cTokens := tokenizeProduct(c)
	jaccardScore := jaccard(toSet(aTokens), toSet(cTokens))

	cSpaced := strings.ReplaceAll(c, "_", " ")
	maxLen := len(a)
	if len(cSpaced) > maxLen {
		maxLen = len(cSpaced)
	}
	var ratio float64
	if maxLen > 0 {
		ratio = 1 - float64(levenshtein(a, cSpaced))/float64(maxLen)
	}

	if jaccardScore > ratio {
		return jaccardScore
	}
	return ratio
}

func tokenizeProduct(s string) []string {
	var tokens []string
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// versionScore ladders version similarity: exact match, year-form
// proximity, then major/minor/patch agreement.
func versionScore(assetVersion *string, cpeVersion string) float64 {
	if assetVersion == nil {
		return 0.3
	}
	if cpe.IsWildcard(cpeVersion) {
		return 0.3
	}
	if equalFold(*assetVersion, cpeVersion) {
		return 1.0
	}

	if ay, aok := isYearForm(*assetVersion); aok {
		if cy, cok := isYearForm(cpeVersion); cok {
			if ay == cy {
				return 1.0
			}
			if abs(ay-cy) <= 1 {
				return 0.6
			}
			return 0
		}
	}

	av := parseVersion(*assetVersion)
	cv := parseVersion(cpeVersion)
	if av.ok && cv.ok {
		if av.major == cv.major && av.minor == cv.minor && av.patch == cv.patch {
			return 0.95
		}
		if av.major == cv.major && av.minor == cv.minor {
			return 0.8
		}
		if av.major == cv.major {
			return 0.5
		}
	}
	return 0
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// jaccard computes |A ∩ B| / |A ∪ B|, 0 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// round2 rounds v to two decimal places (v is already a 0-100
// percentage by the time this is called).
func round2(v float64) float64 {
	shifted := v * 100
	rounded := float64(int64(shifted + 0.5))
	if shifted < 0 {
		rounded = float64(int64(shifted - 0.5))
	}
	return rounded / 100
}
