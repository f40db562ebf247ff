package nvd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEnvelope = `{
  "resultsPerPage": 10,
  "totalResults": 2,
  "products": [
    {"cpe": {"cpeName": "cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*", "cpeNameId": "id-1", "deprecated": false,
      "titles": [{"title": "Apache HTTP Server 2.4.51", "lang": "en"}]}},
    {"cpe": {"cpeName": "cpe:2.3:a:apache:http_server:2.4.50:*:*:*:*:*:*:*", "cpeNameId": "id-2", "deprecated": true,
      "titles": [{"title": "Apache HTTP Server 2.4.50", "lang": "es"}]}}
  ]
}`

// withTestServer points the package-level baseURL at a temporary
// httptest.Server for the duration of a test.
func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	original := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = original })

	return New(WithHTTPClient(srv.Client()))
}

func TestQueryKeywordParsesEnvelope(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "apache http server", r.URL.Query().Get("keywordSearch"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleEnvelope))
	})

	result, err := c.QueryKeyword(context.Background(), "apache http server")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalResults)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*", result.Records[0].CPEName)
	assert.Equal(t, "Apache HTTP Server 2.4.51", result.Records[0].Title)
	assert.False(t, result.Records[0].Deprecated)
	assert.True(t, result.Records[1].Deprecated)
	// second record has no english title: falls back to the first title present.
	assert.Equal(t, "Apache HTTP Server 2.4.50", result.Records[1].Title)
}

func TestQueryExactRequestShape(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*", r.URL.Query().Get("cpeMatchString"))
		assert.Equal(t, "10", r.URL.Query().Get("resultsPerPage"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalResults":0,"products":[]}`))
	})

	result, err := c.QueryExact(context.Background(), "cpe:2.3:a:apache:http_server:2.4.51:*:*:*:*:*:*:*")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalResults)
	assert.Empty(t, result.Records)
}

func TestQueryUpstreamErrorStatus(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.QueryKeyword(context.Background(), "apache")
	require.Error(t, err)
}

func TestQueryMalformedJSON(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.QueryKeyword(context.Background(), "apache")
	require.Error(t, err)
}

func TestAPIKeyHeaderAttached(t *testing.T) {
	var gotHeader string
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("apiKey")
		_, _ = w.Write([]byte(`{"totalResults":0,"products":[]}`))
	})
	c.apiKey = "secret-key"

	_, err := c.QueryKeyword(context.Background(), "apache")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", gotHeader)
}
