package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/skovorodin/mini_shop/internal/models"
)

// Service mirrors the catalog into an Elasticsearch index and answers search
// queries against it. A nil ES client makes every method a no-op.
type Service struct {
	ES    *elasticsearch.Client
	Index string
	Log   *slog.Logger
}

func (s *Service) Enabled() bool {
	return s != nil && s.ES != nil
}

// IndexProduct upserts the product document. Best effort: failures are logged
// and never propagate to the catalog mutation that triggered them.
func (s *Service) IndexProduct(ctx context.Context, p models.Product) {
	if !s.Enabled() {
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		s.Log.Error("search index marshal failed", "product_id", p.ID, "error", err)
		return
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(body),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		s.Log.Error("search index failed", "product_id", p.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.Log.Error("search index failed", "product_id", p.ID, "status", res.Status())
	}
}

// RemoveProduct deletes the product document, best effort.
func (s *Service) RemoveProduct(ctx context.Context, id uint) {
	if !s.Enabled() {
		return
	}

	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		s.Log.Error("search remove failed", "product_id", id, "error", err)
		return
	}
	res.Body.Close()
}

// Search runs a fuzzy multi-match over name and description.
func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}
