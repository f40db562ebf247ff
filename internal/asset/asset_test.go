package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescoop/cpediscover/internal/pkg/lexicon"
)

func mustLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return lex
}

func strPtr(s string) *string { return &s }

func TestParseEwonFirmware(t *testing.T) {
	p := New(mustLexicon(t))
	got := p.Parse("eWon eWon Firmware 10.0s0")

	require.NotNil(t, got.Vendor)
	assert.Equal(t, "ewon", *got.Vendor)
	require.NotNil(t, got.Product)
	assert.Equal(t, "firmware", *got.Product)
	require.NotNil(t, got.Version)
	assert.Equal(t, "10.0s0", *got.Version)
	assert.NotContains(t, got.Tokens, "10.0s0")
}

func TestParseApacheHttpServer(t *testing.T) {
	p := New(mustLexicon(t))
	got := p.Parse("Apache HTTP Server 2.4.51")

	require.NotNil(t, got.Vendor)
	assert.Equal(t, "apache", *got.Vendor)
	require.NotNil(t, got.Version)
	assert.Equal(t, "2.4.51", *got.Version)
}

func TestParseEmptyInput(t *testing.T) {
	p := New(mustLexicon(t))
	got := p.Parse("")

	assert.Nil(t, got.Vendor)
	assert.Nil(t, got.Product)
	assert.Nil(t, got.Version)
}

func TestParsePureVersionString(t *testing.T) {
	p := New(mustLexicon(t))
	got := p.Parse("2.4.51")

	require.NotNil(t, got.Version)
	assert.Equal(t, "2.4.51", *got.Version)
	assert.Nil(t, got.Vendor)
	assert.Nil(t, got.Product)
}

func TestParseSelfNamedProduct(t *testing.T) {
	p := New(mustLexicon(t))
	got := p.Parse("OpenSSL")

	require.NotNil(t, got.Vendor)
	assert.Equal(t, "openssl", *got.Vendor)
	require.NotNil(t, got.Product)
	assert.Equal(t, "openssl", *got.Product)
	assert.Nil(t, got.Version)
}
