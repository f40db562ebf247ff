// Package ranking sorts scored CPE candidates and truncates to the
// caller's requested top-N.
package ranking

import (
	"sort"

	"github.com/codescoop/cpediscover/internal/cpe"
	"github.com/codescoop/cpediscover/internal/scoring"
)

// MaxTopN is the hard cap on requested results regardless of caller
// input.
const MaxTopN = 20

// DefaultTopN is used when a caller passes topN <= 0.
const DefaultTopN = 5

// Candidate is a scored, deconstructed CPE paired with the catalog's
// display title and stable catalog id.
type Candidate struct {
	CPEName       string
	CPENameID     string
	Title         string
	Deprecated    bool
	Deconstructed *cpe.DeconstructedCpe
	Breakdown     scoring.Breakdown
	Score         float64
}

// Rank stable-sorts candidates by descending composite score,
// preserving input order among ties — the catalog returns newest-first
// for most keyword queries, and that ordering survives a tie exactly
// as received — then truncates to topN.
func Rank(candidates []Candidate, topN int) []Candidate {
	n := clamp(topN)

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

func clamp(topN int) int {
	if topN <= 0 {
		return DefaultTopN
	}
	if topN > MaxTopN {
		return MaxTopN
	}
	return topN
}
