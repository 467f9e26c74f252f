package surveillance

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
	ErrMissingIndex = errors.New("surveillance index name is required")
)

const searchSize = 10000

// ElasticsearchStore reads surveillance documents that use the
// leptospirosis_data column names.
type ElasticsearchStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchStore(client *elasticsearch.Client, index string) (*ElasticsearchStore, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	return &ElasticsearchStore{client: client, index: index}, nil
}

func (s *ElasticsearchStore) Name() string { return "elasticsearch" }

func (s *ElasticsearchStore) FetchAll(ctx context.Context) ([]models.SurveillanceRecord, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{"year": map[string]interface{}{"order": "asc"}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(payload)),
		s.client.Search.WithSize(searchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, res.Status(), bytes.TrimSpace(msg))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.SurveillanceRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	records := make([]models.SurveillanceRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, hit.Source)
	}
	SortRecords(records)
	return records, nil
}

// Bulk indexes records into the surveillance index.
func (s *ElasticsearchStore) Bulk(ctx context.Context, records []models.SurveillanceRecord) (int, error) {
	var buf bytes.Buffer
	meta, _ := json.Marshal(map[string]interface{}{"index": map[string]interface{}{"_index": s.index}})
	for _, r := range records {
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
