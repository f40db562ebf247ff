package cpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeconstructValid(t *testing.T) {
	d := Deconstruct("cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*")
	assert.True(t, d.Valid)
	assert.Equal(t, "a", d.Part)
	assert.Equal(t, "apache", d.Vendor)
	assert.Equal(t, "http_server", d.Product)
	assert.Equal(t, "2.4.51", d.Version)

	want := map[string]bool{"apache": true, "http": true, "server": true, "2": true, "4": true, "51": true}
	for _, tok := range d.Tokens {
		assert.Truef(t, want[tok], "unexpected token %q in %v", tok, d.Tokens)
	}
}

func TestDeconstructSentinelOnMalformed(t *testing.T) {
	d := Deconstruct("not-a-cpe")
	assert.False(t, d.Valid)
	assert.Empty(t, d.Vendor)
	assert.Empty(t, d.Product)
	assert.Empty(t, d.Tokens)
}

func TestDeconstructWildcardsPreserved(t *testing.T) {
	d := Deconstruct("cpe:2.3:a:openssl:openssl:*:*:*:*:*:*:*:*")
	assert.Equal(t, "*", d.Version)
	assert.NotContains(t, d.Tokens, "*")
}
