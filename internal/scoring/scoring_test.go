package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescoop/cpediscover/internal/asset"
	"github.com/codescoop/cpediscover/internal/cpe"
)

func strPtr(s string) *string { return &s }

func parsedAsset(vendor, product, version string, tokens []string) *asset.ParsedAsset {
	p := &asset.ParsedAsset{Tokens: tokens}
	if vendor != "" {
		p.Vendor = strPtr(vendor)
	}
	if product != "" {
		p.Product = strPtr(product)
	}
	if version != "" {
		p.Version = strPtr(version)
	}
	return p
}

func TestScoreBoundsAlwaysInRange(t *testing.T) {
	e := New(DefaultWeights)
	inputs := []*asset.ParsedAsset{
		parsedAsset("", "", "", nil),
		parsedAsset("acme", "widget", "1.2.3", []string{"acme", "widget"}),
	}
	candidates := []string{
		"cpe:2.3:a:acme:widget:1.2.3:*:*:*:*:*:*:*",
		"not-a-cpe",
		"cpe:2.3:a:*:*:*:*:*:*:*:*:*:*",
	}
	for _, in := range inputs {
		for _, c := range candidates {
			d := cpe.Deconstruct(c)
			b, composite := e.Score(in, d)
			assert.GreaterOrEqual(t, composite, 0.0)
			assert.LessOrEqual(t, composite, 100.0)
			for _, s := range []float64{b.Vendor, b.Product, b.Version, b.TokenOverlap} {
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 1.0)
			}
		}
	}
}

func TestEwonFirmwareScenario(t *testing.T) {
	e := New(DefaultWeights)
	in := parsedAsset("ewon", "firmware", "10.0s0", []string{"ewon", "firmware"})

	top := cpe.Deconstruct("cpe:2.3:o:ewon:ewon_firmware:10.0s0:*:*:*:*:*:*:*")
	_, topScore := e.Score(in, top)
	require.GreaterOrEqual(t, topScore, 85.0)

	older := cpe.Deconstruct("cpe:2.3:o:ewon:ewon_firmware:10.0:*:*:*:*:*:*:*")
	_, olderScore := e.Score(in, older)

	oldest := cpe.Deconstruct("cpe:2.3:o:ewon:ewon_firmware:9.5:*:*:*:*:*:*:*")
	_, oldestScore := e.Score(in, oldest)

	apache := cpe.Deconstruct("cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*")
	_, apacheScore := e.Score(in, apache)

	assert.GreaterOrEqual(t, topScore, olderScore)
	assert.GreaterOrEqual(t, olderScore, oldestScore)
	assert.Greater(t, oldestScore, apacheScore)
}

func TestApacheHttpServerScenario(t *testing.T) {
	e := New(DefaultWeights)
	in := parsedAsset("apache", "http server", "2.4.51", []string{"apache", "http", "server"})
	c := cpe.Deconstruct("cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*")
	_, score := e.Score(in, c)
	assert.GreaterOrEqual(t, score, 90.0)
}

func TestNginxNoVendorScenario(t *testing.T) {
	e := New(DefaultWeights)
	in := parsedAsset("", "nginx", "1.24.0", []string{"nginx"})
	c := cpe.Deconstruct("cpe:2.3:a:nginx:nginx:1.24.0:*:*:*:*:*:*:*")
	b, score := e.Score(in, c)
	assert.Zero(t, b.Vendor)
	assert.GreaterOrEqual(t, score, 80.0)
}

func TestOpenSSLWildcardVersionScenario(t *testing.T) {
	e := New(DefaultWeights)
	in := parsedAsset("openssl", "openssl", "", []string{"openssl"})
	c := cpe.Deconstruct("cpe:2.3:a:openssl:openssl:*:*:*:*:*:*:*:*")
	b, _ := e.Score(in, c)
	assert.Equal(t, 0.3, b.Version)
}

func TestWordpressTypoScenario(t *testing.T) {
	e := New(DefaultWeights)
	in := parsedAsset("wordpres", "wordpres", "6.4.2", []string{"wordpres"})
	c := cpe.Deconstruct("cpe:2.3:a:wordpress:wordpress:6.4.2:*:*:*:*:*:*:*")
	b, score := e.Score(in, c)
	assert.Equal(t, 0.5, b.Vendor, "expected vendor sub-score 0.5 (levenshtein distance 1)")
	assert.GreaterOrEqual(t, b.Product, 0.88)
	assert.Equal(t, 1.0, b.Version)
	assert.GreaterOrEqual(t, score, 70.0)
}

func TestCiscoIosXeVersionOrdering(t *testing.T) {
	e := New(DefaultWeights)
	in := parsedAsset("cisco", "ios xe", "17.3.1", []string{"cisco", "ios", "xe"})

	exact := cpe.Deconstruct("cpe:2.3:o:cisco:ios_xe:17.3.1:*:*:*:*:*:*:*")
	minorMatch := cpe.Deconstruct("cpe:2.3:o:cisco:ios_xe:17.3.2:*:*:*:*:*:*:*")
	wildcard := cpe.Deconstruct("cpe:2.3:o:cisco:ios_xe:*:*:*:*:*:*:*:*")

	_, exactScore := e.Score(in, exact)
	_, minorScore := e.Score(in, minorMatch)
	_, wildcardScore := e.Score(in, wildcard)

	assert.Greater(t, exactScore, minorScore)
	assert.Greater(t, minorScore, wildcardScore)
}

func TestJaccardProperties(t *testing.T) {
	a := toSet([]string{"foo", "bar"})
	b := toSet([]string{"bar", "baz"})
	assert.Equal(t, jaccard(a, b), jaccard(b, a))
	assert.Equal(t, 1.0, jaccard(a, a))
	empty := toSet(nil)
	assert.Zero(t, jaccard(a, empty))
}

func TestVersionIdempotence(t *testing.T) {
	for _, v := range []string{"2.4.51", "10.0s0", "1.0", "v2"} {
		p1 := parseVersion(v)
		if !p1.ok {
			continue
		}
		p2 := parseVersion(p1.Join())
		assert.Equalf(t, p1, p2, "parseVersion not idempotent for %q", v)
	}
}
