// Package lexicon loads the fixed vendor/stop-word lists from an
// embedded YAML resource, so they can evolve without touching the
// parsing or scoring logic.
package lexicon

import (
	"embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/lexicon.yaml
var embeddedFS embed.FS

// Lexicon holds the fixed vendor lookup data consumed by the asset
// parser (internal/asset) and, for the suffix pattern only, by vendor
// extraction.
type Lexicon struct {
	KnownVendors    map[string]struct{}
	NonVendorWords  map[string]struct{}
	CorporateSuffix *regexp.Regexp
}

type rawLexicon struct {
	KnownVendors           []string `yaml:"known_vendors"`
	NonVendorWords         []string `yaml:"non_vendor_words"`
	CorporateSuffixPattern string   `yaml:"corporate_suffix_pattern"`
}

// Default loads the lexicon bundled with the module via go:embed.
func Default() (*Lexicon, error) {
	data, err := embeddedFS.ReadFile("data/lexicon.yaml")
	if err != nil {
		return nil, fmt.Errorf("lexicon: read embedded resource: %w", err)
	}
	return FromYAML(data)
}

// FromYAML builds a Lexicon from raw YAML bytes, allowing tests or a
// future operator to supply an override resource with the same shape.
func FromYAML(data []byte) (*Lexicon, error) {
	var raw rawLexicon
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("lexicon: unmarshal: %w", err)
	}

	suffix, err := regexp.Compile(raw.CorporateSuffixPattern)
	if err != nil {
		return nil, fmt.Errorf("lexicon: compile corporate suffix pattern: %w", err)
	}

	l := &Lexicon{
		KnownVendors:    toSet(raw.KnownVendors),
		NonVendorWords:  toSet(raw.NonVendorWords),
		CorporateSuffix: suffix,
	}
	return l, nil
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsKnownVendor reports whether the (already lowercased) token names a
// known vendor.
func (l *Lexicon) IsKnownVendor(token string) bool {
	_, ok := l.KnownVendors[token]
	return ok
}

// IsStopWord reports whether the (already lowercased) token is a
// generic/filler word that should not be picked as a vendor or
// product token.
func (l *Lexicon) IsStopWord(token string) bool {
	_, ok := l.NonVendorWords[token]
	return ok
}

// StripCorporateSuffix removes a trailing corporate suffix
// (inc|corp|ltd|llc|gmbh|co) from a token, case-insensitively.
func (l *Lexicon) StripCorporateSuffix(token string) string {
	return l.CorporateSuffix.ReplaceAllString(token, "")
}
