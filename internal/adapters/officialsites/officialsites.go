// internal/adapters/officialsites/officialsites.go
package officialsites

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

const (
	SourceID    = "officialsites"
	trustWeight = 0.9
)

// Adapter searches an Elasticsearch index of scraped official MS tourism
// sites (fundtur.ms.gov.br, visitms.com.br, city portals). The index is slow
// to query, so the orchestrator skips this adapter for urgent queries.
type Adapter struct {
	cfg      config.OfficialSitesConfig
	esClient *elasticsearch.Client
	logger   logger.Logger
}

func New(cfg config.OfficialSitesConfig, esClient *elasticsearch.Client, log logger.Logger) *Adapter {
	return &Adapter{
		cfg:      cfg,
		esClient: esClient,
		logger:   log.With(map[string]interface{}{"source": SourceID}),
	}
}

func (a *Adapter) ID() string           { return SourceID }
func (a *Adapter) TrustWeight() float64 { return trustWeight }
func (a *Adapter) RealTime() bool       { return false }

func (a *Adapter) Search(ctx context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error) {
	if a.esClient == nil {
		return nil, adapters.ErrAdapterUnavailable
	}

	body, _ := json.Marshal(a.buildQuery(q))
	req := esapi.SearchRequest{
		Index: []string{a.cfg.Index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, a.esClient)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapters.ErrAdapterTimeout
		}
		return nil, fmt.Errorf("%w: %v", adapters.ErrAdapterUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search failed: %s", adapters.ErrAdapterUnavailable, res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", adapters.ErrAdapterUnavailable, err)
	}

	results := a.buildResults(r.Hits.MaxScore, r.Hits.Hits)

	a.logger.Info("official sites queried", map[string]interface{}{
		"hitCount": len(results),
	})

	return results, nil
}

// buildQuery matches the question against page title and body, filtered to
// the query's topic when the classifier resolved one.
func (a *Adapter) buildQuery(q models.ClassifiedQuery) map[string]interface{} {
	must := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"title^2", "body"},
			},
		},
	}

	var filter []interface{}
	if q.Topic != models.TopicGeneral {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"topic.keyword": string(q.Topic)},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  a.cfg.MaxResults,
	}
}

type searchResponse struct {
	Hits struct {
		MaxScore float64 `json:"max_score"`
		Hits     []esHit `json:"hits"`
	} `json:"hits"`
}

type esHit struct {
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

func (a *Adapter) buildResults(maxScore float64, hits []esHit) []models.SourceResult {
	var results []models.SourceResult
	for _, hit := range hits {
		var doc struct {
			Title     string    `json:"title"`
			Body      string    `json:"body"`
			URL       string    `json:"url"`
			Site      string    `json:"site"`
			ScrapedAt time.Time `json:"scrapedAt"`
		}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}

		confidence := 0.5
		if maxScore > 0 {
			confidence = hit.Score / maxScore
		}

		retrievedAt := doc.ScrapedAt
		if retrievedAt.IsZero() {
			retrievedAt = time.Now()
		}

		results = append(results, models.SourceResult{
			SourceID:      SourceID,
			Title:         doc.Title,
			Body:          doc.Body,
			RawConfidence: confidence,
			URL:           doc.URL,
			IsRealTime:    false,
			RetrievedAt:   retrievedAt,
			Metadata: map[string]interface{}{
				"site": doc.Site,
			},
		})
	}
	return results
}
