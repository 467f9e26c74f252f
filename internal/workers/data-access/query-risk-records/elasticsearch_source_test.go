package queryriskrecords

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lepto-risk-workers/internal/models"
)

const searchHits = `{
  "hits": {
    "hits": [
      {"_source": {"Year": 2011, "Country": "France", "Risk_Percentage": 25.4}},
      {"_source": {"year": 2010, "country": "Spain", "risk_percentage": "30.2"}},
      {"_source": {"year": 2010, "country": "France", "risk_percentage": 20.1}},
      {"_source": {"year": 2010, "country": "French Guiana", "risk_percentage": 70}}
    ]
  }
}`

func newTestESSource(t *testing.T, handler http.HandlerFunc) *ElasticsearchSource {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	source, err := NewElasticsearchSource(client, "riskanalysis")
	require.NoError(t, err)
	return source
}

func TestElasticsearchSource_FetchAll_NormalizesAndSorts(t *testing.T) {
	source := newTestESSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/riskanalysis/_search"))
		io.WriteString(w, searchHits)
	})

	records, err := source.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "France", records[0].Country)
	assert.Equal(t, 2010, records[0].Year)
	assert.Equal(t, "French Guiana", records[1].Country)
	assert.Equal(t, "Spain", records[2].Country)
	assert.InDelta(t, 30.2, records[2].Risk(), 1e-9)
	assert.Equal(t, 2011, records[3].Year)
}

func TestElasticsearchSource_FetchByCountry_ExactMatchOnly(t *testing.T) {
	var body map[string]interface{}
	source := newTestESSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, searchHits)
	})

	records, err := source.FetchByCountry(context.Background(), "france", models.Int(2010))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "France", records[0].Country)
	assert.Equal(t, 2010, records[0].Year)

	query := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, query, "filter")
}

func TestElasticsearchSource_Countries(t *testing.T) {
	source := newTestESSource(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, searchHits)
	})

	countries, err := source.Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"France", "French Guiana", "Spain"}, countries)
}

func TestElasticsearchSource_ErrorStatus(t *testing.T) {
	source := newTestESSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"index_not_found_exception"}`)
	})

	_, err := source.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestElasticsearchSource_Bulk(t *testing.T) {
	var lines []string
	source := newTestESSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		lines = strings.Split(strings.TrimSpace(string(raw)), "\n")
		io.WriteString(w, `{"errors":false,"items":[]}`)
	})

	n, err := source.Bulk(context.Background(), sampleRecords()[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"_index":"riskanalysis"`)
	assert.Contains(t, lines[1], `"country":"France"`)
}

func TestNewElasticsearchSource_RequiresIndex(t *testing.T) {
	_, err := NewElasticsearchSource(nil, "")
	assert.ErrorIs(t, err, ErrMissingIndex)
}
