package entities

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"dealsense/internal/common/logger"
)

const defaultPageSize = 1000

// ElasticSource loads companies from the account search index.
type ElasticSource struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticSource(client *elasticsearch.Client, index string, log logger.Logger) *ElasticSource {
	return &ElasticSource{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "entities.elastic"}),
	}
}

func (s *ElasticSource) LookupCompanies(ctx context.Context) ([]Company, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
		"_source": []string{"id", "name"},
		"sort":    []interface{}{map[string]interface{}{"name.keyword": "asc"}},
	}

	body, _ := json.Marshal(queryBody)
	size := defaultPageSize

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search companies: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Company `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	companies := make([]Company, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		companies = append(companies, hit.Source)
	}

	s.logger.Debug("companies loaded", map[string]interface{}{
		"count": len(companies),
		"index": s.index,
	})

	return companies, nil
}
