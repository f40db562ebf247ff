// Package asset implements the asset parser: it produces a ParsedAsset
// (vendor, product, version, tokens) from raw free-text like "Siemens
// SIMATIC S7-1500 Firmware v2.9.4".
package asset

import (
	"github.com/codescoop/cpediscover/internal/pkg/lexicon"
	"github.com/codescoop/cpediscover/internal/pkg/textnorm"
)

// ParsedAsset is the immutable output of parsing raw asset text.
type ParsedAsset struct {
	Raw               string
	Normalized        string
	Tokens            []string
	Vendor            *string
	Product           *string
	Version           *string
	VersionCandidates []string
}

// Parser produces ParsedAsset values from raw text, consulting the
// fixed vendor/stop-word lexicon for vendor and product extraction.
type Parser struct {
	lex *lexicon.Lexicon
}

// New builds a Parser against the given lexicon. Pass lexicon.Default()
// for the bundled KNOWN_VENDORS / NON_VENDOR_WORDS lists, or a custom
// Lexicon in tests.
func New(lex *lexicon.Lexicon) *Parser {
	return &Parser{lex: lex}
}

// Parse extracts version, vendor, product and tokens from raw text.
func (p *Parser) Parse(raw string) *ParsedAsset {
	version, rest := textnorm.ExtractVersion(raw)

	normalizedRest := textnorm.Normalize(rest, false)
	tokens := textnorm.Tokenize(normalizedRest)

	parsed := &ParsedAsset{
		Raw:        raw,
		Normalized: textnorm.Normalize(raw, false),
		Tokens:     tokens,
	}

	if version != "" {
		parsed.Version = &version
		parsed.VersionCandidates = []string{version}
	} else {
		for _, tok := range tokens {
			if textnorm.LooksLikeVersion(tok) {
				parsed.VersionCandidates = append(parsed.VersionCandidates, tok)
			}
		}
	}

	if len(tokens) == 0 {
		return parsed
	}

	matchedToken, vendorValue := p.extractVendor(tokens)
	if vendorValue != "" {
		v := vendorValue
		parsed.Vendor = &v
	}

	remaining := removeAllEqual(tokens, matchedToken)
	product := p.extractProduct(remaining, vendorValue)
	if product != "" {
		parsed.Product = &product
	}

	return parsed
}

// extractVendor tries the known-vendor table first, then the first
// non-stop-word token, then falls back to the first token.
// Returns the original (unstripped) token that was matched, so the
// caller can remove every occurrence of it from the remaining tokens,
// and the extracted (possibly corporate-suffix-stripped) vendor value.
func (p *Parser) extractVendor(tokens []string) (matchedToken string, vendorValue string) {
	for _, tok := range tokens {
		stripped := p.lex.StripCorporateSuffix(tok)
		if p.lex.IsKnownVendor(stripped) {
			return tok, stripped
		}
	}
	for _, tok := range tokens {
		if len(tok) > 1 && !p.lex.IsStopWord(tok) {
			return tok, p.lex.StripCorporateSuffix(tok)
		}
	}
	return tokens[0], tokens[0]
}

// extractProduct picks the product token from what's left after the
// vendor token is removed, preferring a known-vendor-shaped second
// word, then the first non-stop-word token, then a two-token fallback.
func (p *Parser) extractProduct(remaining []string, vendor string) string {
	if len(remaining) == 0 {
		return vendor
	}
	if p.lex.IsKnownVendor(p.lex.StripCorporateSuffix(remaining[0])) {
		return remaining[0]
	}
	for _, tok := range remaining {
		if len(tok) > 1 && !p.lex.IsStopWord(tok) {
			return tok
		}
	}
	if len(remaining) >= 2 {
		return remaining[0] + " " + remaining[1]
	}
	return remaining[0]
}

func removeAllEqual(tokens []string, value string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != value {
			out = append(out, tok)
		}
	}
	return out
}
