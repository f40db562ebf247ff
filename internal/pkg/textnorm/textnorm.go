// Package textnorm implements the text normalizer and tokenizer: it
// lowercases, strips punctuation, and pulls a version substring out
// before tokenizing.
package textnorm

import (
	"regexp"
	"strings"
)

// versionPatterns are tried in order, most specific first. The first
// match wins.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)v?\d+\.\d+\.\d+(?:\.\d+)?(?:[a-z]\d*)?`),
	regexp.MustCompile(`(?i)v?\d+\.\d+(?:[a-z]\d*)?`),
	regexp.MustCompile(`(?i)v\d+(?:\.\d+)*`),
}

var (
	underscoreDash = regexp.MustCompile(`[_\-]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonAlnumStrip  = regexp.MustCompile(`[^a-z0-9\s.]`)
	nonAlnumNoDot  = regexp.MustCompile(`[^a-z0-9\s]`)
)

// ExtractVersion finds the first version-shaped substring in raw text
// and returns (canonicalVersion, remainder). The matched substring is
// removed from the input before tokenization; the version's leading
// v/V is stripped. If nothing matches, version is empty and remainder
// equals raw.
func ExtractVersion(raw string) (version string, remainder string) {
	for _, pattern := range versionPatterns {
		loc := pattern.FindStringIndex(raw)
		if loc == nil {
			continue
		}
		matched := raw[loc[0]:loc[1]]
		remainder = raw[:loc[0]] + raw[loc[1]:]
		version = strings.TrimPrefix(strings.TrimPrefix(matched, "v"), "V")
		return version, remainder
	}
	return "", raw
}

// Normalize lowercases, replaces underscores/hyphens with spaces,
// collapses whitespace and drops all other non-alphanumeric
// characters. When preserveVersionChars is true, digits and '.' are
// kept (version-preserving mode); otherwise '.' is also stripped
// (default mode).
func Normalize(s string, preserveVersionChars bool) string {
	s = strings.ToLower(s)
	s = underscoreDash.ReplaceAllString(s, " ")
	if preserveVersionChars {
		s = nonAlnumStrip.ReplaceAllString(s, "")
	} else {
		s = nonAlnumNoDot.ReplaceAllString(s, "")
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text on whitespace into an ordered token
// sequence, dropping empty tokens.
func Tokenize(normalized string) []string {
	if normalized == "" {
		return nil
	}
	parts := strings.Fields(normalized)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// versionShapePattern matches tokens that look version-shaped, used
// to populate ParsedAsset.versionCandidates when primary extraction
// fails.
var versionShapePattern = regexp.MustCompile(`(?i)^v?\d+(\.\d+)*[a-z]?\d*$`)

// LooksLikeVersion reports whether a single token has version shape.
func LooksLikeVersion(token string) bool {
	return versionShapePattern.MatchString(token)
}
