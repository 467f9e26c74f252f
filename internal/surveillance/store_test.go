package surveillance

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lepto-risk-workers/internal/common/database"
)

var surveillanceRows = []string{
	"id", "year", "country_code", "country_name", "t2m", "d2m", "tp",
	"leptospirosis_rate", "temperature_celsius", "dew_point_celsius", "relative_humidity",
}

func TestPostgresStore_FetchAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(surveillanceRows).
		AddRow(1, 2010, "FR", "France", 285.1, 280.2, 0.002, 0.9, 11.95, 7.05, 71.3).
		AddRow(2, 2010, "MT", nil, nil, nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(AllRecordsSQL)).WillReturnRows(rows)

	store := NewPostgresStore(db)
	records, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, "France", records[0].CountryName)
	assert.InDelta(t, 0.9, *records[0].LeptospirosisRate, 1e-9)
	assert.InDelta(t, 71.3, *records[0].RelativeHumidity, 1e-9)
	assert.Equal(t, "", records[1].CountryName)
	assert.Nil(t, records[1].T2M)
	assert.Nil(t, records[1].LeptospirosisRate)
	assert.Equal(t, "postgres", store.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(AllRecordsSQL)).WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresStore(db).FetchAll(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStore(db)
	n, err := store.Insert(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)

	assert.Equal(t, "DE", all[0].CountryCode)
	assert.Nil(t, all[0].LeptospirosisRate)
	assert.InDelta(t, 80, *all[0].RelativeHumidity, 1e-9)
	assert.Equal(t, 2011, all[3].Year)
	assert.Equal(t, "ES", all[3].CountryCode)
	assert.Equal(t, 2012, all[5].Year)
	assert.NotZero(t, all[5].ID)
	assert.Equal(t, "sqlite", store.Name())
}

func TestMemoryStore_SortsCopy(t *testing.T) {
	input := sampleRecords()
	store := NewMemoryStore(input)

	all, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ES", all[3].CountryCode)
	assert.Equal(t, 2011, all[3].Year)
	assert.Equal(t, 2012, input[4].Year, "input left untouched")

	all[0].CountryName = "changed"
	again, _ := store.FetchAll(context.Background())
	assert.Equal(t, "Germany", again[0].CountryName)
}

const surveillanceHits = `{
  "hits": {
    "hits": [
      {"_source": {"id": 3, "year": 2011, "country_code": "FR", "country_name": "France", "leptospirosis_rate": 1.2}},
      {"_source": {"id": 2, "year": 2010, "country_code": "FR", "country_name": "France", "leptospirosis_rate": 0.9}},
      {"_source": {"id": 1, "year": 2010, "country_code": "ES", "country_name": "Spain", "leptospirosis_rate": null}}
    ]
  }
}`

func newTestESStore(t *testing.T, handler http.HandlerFunc) *ElasticsearchStore {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	store, err := NewElasticsearchStore(client, "leptospirosis")
	require.NoError(t, err)
	return store
}

func TestElasticsearchStore_FetchAll(t *testing.T) {
	store := newTestESStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/leptospirosis/_search"))
		io.WriteString(w, surveillanceHits)
	})

	records, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ES", records[0].CountryCode)
	assert.Nil(t, records[0].LeptospirosisRate)
	assert.Equal(t, "FR", records[1].CountryCode)
	assert.Equal(t, 2011, records[2].Year)
	assert.Equal(t, "elasticsearch", store.Name())
}

func TestElasticsearchStore_ErrorStatus(t *testing.T) {
	store := newTestESStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"index_not_found_exception"}`)
	})

	_, err := store.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestElasticsearchStore_Bulk(t *testing.T) {
	var lines []string
	store := newTestESStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		lines = strings.Split(strings.TrimSpace(string(raw)), "\n")
		io.WriteString(w, `{"errors":false,"items":[]}`)
	})

	n, err := store.Bulk(context.Background(), sampleRecords()[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"_index":"leptospirosis"`)
	assert.Contains(t, lines[1], `"country_code":"DE"`)
	assert.Contains(t, lines[1], `"leptospirosis_rate":null`)
}

func TestElasticsearchStore_BulkItemErrors(t *testing.T) {
	store := newTestESStore(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors":true,"items":[]}`)
	})

	_, err := store.Bulk(context.Background(), sampleRecords()[:1])
	assert.Error(t, err)
}

func TestNewElasticsearchStore_RequiresIndex(t *testing.T) {
	_, err := NewElasticsearchStore(nil, "")
	assert.ErrorIs(t, err, ErrMissingIndex)
}
