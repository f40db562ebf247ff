// Package cpe implements the CPE 2.3 deconstructor and validator.
package cpe

import (
	"regexp"
	"strings"
)

// wildcard is the CPE 2.3 sentinel meaning "any value".
const wildcard = "*"

// DeconstructedCpe is an immutable view of a CPE 2.3 URI split into
// its attributes plus comparison tokens.
type DeconstructedCpe struct {
	Raw       string
	Valid     bool
	Part      string
	Vendor    string
	Product   string
	Version   string
	Update    string
	Edition   string
	Language  string
	SWEdition string
	TargetSW  string
	TargetHW  string
	Other     string
	Tokens    []string
}

var tokenSplitter = regexp.MustCompile(`[_\-.\s]+`)

// Deconstruct splits a raw CPE 2.3 URI on ':'. A string that does not
// carry at least 5 colon-separated fields produces a sentinel
// deconstruction: Valid=false, every attribute empty, no tokens, so
// the scorer can still run and contributes zero.
func Deconstruct(raw string) *DeconstructedCpe {
	fields := strings.Split(raw, ":")
	if len(fields) < 5 || !strings.HasPrefix(raw, "cpe:2.3:") {
		return &DeconstructedCpe{Raw: raw, Valid: false}
	}

	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return wildcard
	}

	d := &DeconstructedCpe{
		Raw:       raw,
		Valid:     true,
		Part:      get(2),
		Vendor:    get(3),
		Product:   get(4),
		Version:   get(5),
		Update:    get(6),
		Edition:   get(7),
		Language:  get(8),
		SWEdition: get(9),
		TargetSW:  get(10),
		TargetHW:  get(11),
		Other:     get(12),
	}
	d.Tokens = buildTokens(d.Vendor, d.Product, d.Version)
	return d
}

// buildTokens lowercases the non-wildcard vendor/product/version and
// splits on '_', '-', '.' and whitespace, dropping empty segments.
func buildTokens(vendor, product, version string) []string {
	var parts []string
	for _, v := range []string{vendor, product, version} {
		if v == "" || v == wildcard {
			continue
		}
		parts = append(parts, strings.ToLower(v))
	}
	joined := strings.Join(parts, " ")
	var tokens []string
	for _, seg := range tokenSplitter.Split(joined, -1) {
		if seg != "" {
			tokens = append(tokens, seg)
		}
	}
	return tokens
}

// IsWildcard reports whether an attribute value is the CPE wildcard.
func IsWildcard(v string) bool {
	return v == wildcard
}
