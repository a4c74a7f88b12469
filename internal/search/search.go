package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/linkface/linkface/internal/models"
)

// Index writes a submission document; indexing is best-effort and the caller
// logs failures instead of surfacing them.
func Index(ctx context.Context, es *elasticsearch.Client, index string, sub *models.Submission) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(sub); err != nil {
		return err
	}

	res, err := es.Index(
		index,
		&buf,
		es.Index.WithDocumentID(fmt.Sprint(sub.ID)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}
	return nil
}

func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Submission, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "cpf"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Submission `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	subs := make([]models.Submission, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		subs[i] = hit.Source
	}
	return r.Hits.Total.Value, subs, nil
}
