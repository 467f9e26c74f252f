package queryriskrecords

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"lepto-risk-workers/internal/models"
)

var (
	ErrSearchFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrMissingIndex = errors.New("index name is required")
)

const defaultSearchSize = 10000

// ElasticsearchSource reads risk records from a search index whose documents
// use the riskanalysis column names.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string) (*ElasticsearchSource, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	return &ElasticsearchSource{client: client, index: index, size: defaultSearchSize}, nil
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

func (s *ElasticsearchSource) FetchAll(ctx context.Context) ([]models.RiskRecord, error) {
	records, err := s.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	})
	if err != nil {
		return nil, err
	}
	SortRecords(records)
	return records, nil
}

func (s *ElasticsearchSource) FetchByCountry(ctx context.Context, country string, year *int) ([]models.RiskRecord, error) {
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"match": map[string]interface{}{
					"country": map[string]interface{}{"query": country, "operator": "and"},
				},
			},
		},
	}
	if year != nil {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"year": *year}},
		}
	}

	records, err := s.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	})
	if err != nil {
		return nil, err
	}
	// match is analysed; keep exact name matches only
	records = Filter(records, []string{country}, year)
	SortRecords(records)
	return records, nil
}

func (s *ElasticsearchSource) Countries(ctx context.Context) ([]string, error) {
	records, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctCountries(records), nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.RiskRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) search(ctx context.Context, body map[string]interface{}) ([]models.RiskRecord, error) {
	body["sort"] = []interface{}{map[string]interface{}{"year": map[string]interface{}{"order": "asc"}}}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(payload)),
		s.client.Search.WithSize(s.size),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, res.Status(), bytes.TrimSpace(msg))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	records := make([]models.RiskRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
	}
	return records, nil
}

// Bulk indexes records into the source index.
func (s *ElasticsearchSource) Bulk(ctx context.Context, records []models.RiskRecord) (int, error) {
	var buf bytes.Buffer
	for _, r := range records {
		meta, _ := json.Marshal(map[string]interface{}{"index": map[string]interface{}{"_index": s.index}})
		doc, err := json.Marshal(r)
		if err != nil {
			return 0, err
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("bulk index failed: %s", res.Status())
	}

	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}
	if parsed.Errors {
		return 0, fmt.Errorf("bulk index reported item errors")
	}
	return len(records), nil
}
