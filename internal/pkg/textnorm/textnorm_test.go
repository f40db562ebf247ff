package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVersion(t *testing.T) {
	cases := []struct {
		in      string
		version string
	}{
		{"Siemens SIMATIC S7-1500 Firmware v2.9.4", "2.9.4"},
		{"eWon eWon Firmware 10.0s0", "10.0s0"},
		{"Apache HTTP Server 2.4.51", "2.4.51"},
		{"nginx 1.24.0", "1.24.0"},
		{"Cisco IOS XE v2", "2"},
		{"OpenSSL", ""},
	}
	for _, c := range cases {
		version, _ := ExtractVersion(c.in)
		assert.Equalf(t, c.version, version, "ExtractVersion(%q)", c.in)
	}
}

func TestExtractVersionRemovesMatch(t *testing.T) {
	version, rest := ExtractVersion("eWon eWon Firmware 10.0s0")
	require.Equal(t, "10.0s0", version)
	tokens := Tokenize(Normalize(rest, false))
	assert.NotContains(t, tokens, version)
}

func TestNormalizeDefaultStripsDots(t *testing.T) {
	got := Normalize("Siemens_SIMATIC-S7!! v2.9", false)
	assert.Equal(t, "siemens simatic s7 v29", got)
}

func TestNormalizePreservesVersionChars(t *testing.T) {
	got := Normalize("v2.4.51-beta", true)
	assert.Equal(t, "v2.4.51 beta", got)
}

func TestLooksLikeVersion(t *testing.T) {
	for _, tok := range []string{"2.4.51", "v2", "10.0s0", "1.0a"} {
		assert.Truef(t, LooksLikeVersion(tok), "LooksLikeVersion(%q)", tok)
	}
	for _, tok := range []string{"firmware", "simatic"} {
		assert.Falsef(t, LooksLikeVersion(tok), "LooksLikeVersion(%q)", tok)
	}
}
