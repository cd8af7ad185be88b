// internal/adapters/officialsites/officialsites_test.go
package officialsites

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

func testAdapter(es *elasticsearch.Client) *Adapter {
	cfg := config.OfficialSitesConfig{Index: "official_pages", MaxResults: 5}
	return New(cfg, es, logger.NewNoOpLogger())
}

func testQuery(text string, topic models.Topic) models.ClassifiedQuery {
	return models.ClassifiedQuery{
		Query: models.Query{Text: text, SessionID: "sess-1", Timestamp: time.Now()},
		Topic: topic,
	}
}

func TestAdapter_BuildQuery_TopicFilter(t *testing.T) {
	a := testAdapter(nil)

	body := a.buildQuery(testQuery("eventos em bonito", models.TopicEvents))

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Contains(t, boolQuery, "must")
	assert.Contains(t, boolQuery, "filter")
	assert.Equal(t, 5, body["size"])
}

func TestAdapter_BuildQuery_GeneralTopicSkipsFilter(t *testing.T) {
	a := testAdapter(nil)

	body := a.buildQuery(testQuery("informações", models.TopicGeneral))

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.NotContains(t, boolQuery, "filter")
}

func TestAdapter_BuildResults_NormalizesScores(t *testing.T) {
	a := testAdapter(nil)

	doc1, _ := json.Marshal(map[string]interface{}{
		"title":     "Festival de Inverno de Bonito",
		"body":      "Programação completa do festival",
		"url":       "https://fundtur.ms.gov.br/festival",
		"site":      "fundtur.ms.gov.br",
		"scrapedAt": time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	doc2, _ := json.Marshal(map[string]interface{}{
		"title": "Agenda de eventos",
		"body":  "Eventos do mês",
		"url":   "https://visitms.com.br/agenda",
		"site":  "visitms.com.br",
	})

	results := a.buildResults(4.0, []esHit{
		{Score: 4.0, Source: doc1},
		{Score: 2.0, Source: doc2},
	})

	require.Len(t, results, 2)
	assert.Equal(t, 1.0, results[0].RawConfidence)
	assert.Equal(t, 0.5, results[1].RawConfidence)
	assert.Equal(t, SourceID, results[0].SourceID)
	assert.False(t, results[0].IsRealTime)
	assert.Equal(t, "fundtur.ms.gov.br", results[0].Metadata["site"])
	// Missing scrapedAt falls back to retrieval time
	assert.False(t, results[1].RetrievedAt.IsZero())
}

func TestAdapter_Search_NilClientUnavailable(t *testing.T) {
	a := testAdapter(nil)

	_, err := a.Search(context.Background(), testQuery("bonito", models.TopicDestinations))

	assert.True(t, errors.Is(err, adapters.ErrAdapterUnavailable))
}

func TestAdapter_Search_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Elasticsearch integration test in short mode")
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	})
	if err != nil {
		t.Skipf("Skipping test: cannot create Elasticsearch client: %v", err)
	}
	res, err := esClient.Ping()
	if err != nil || res.IsError() {
		t.Skipf("Skipping test: Elasticsearch not available: %v", err)
	}
	res.Body.Close()

	a := testAdapter(esClient)
	results, err := a.Search(context.Background(), testQuery("bonito", models.TopicDestinations))
	if err != nil {
		assert.True(t, errors.Is(err, adapters.ErrAdapterUnavailable))
	} else {
		assert.NotNil(t, results)
	}
}
