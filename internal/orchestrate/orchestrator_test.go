// internal/orchestrate/orchestrator_test.go
package orchestrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

// ==========================
// Test Adapter Implementation
// ==========================

type fakeAdapter struct {
	id      string
	results []models.SourceResult
	err     error
	delay   time.Duration
}

func (f *fakeAdapter) ID() string           { return f.id }
func (f *fakeAdapter) TrustWeight() float64 { return 0.9 }
func (f *fakeAdapter) RealTime() bool       { return false }

func (f *fakeAdapter) Search(ctx context.Context, _ models.ClassifiedQuery) ([]models.SourceResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, adapters.ErrAdapterTimeout
		}
	}
	return f.results, f.err
}

func result(sourceID, title string) models.SourceResult {
	return models.SourceResult{SourceID: sourceID, Title: title, RawConfidence: 0.8, RetrievedAt: time.Now()}
}

func testQuery(topic models.Topic, urgency models.Urgency) models.ClassifiedQuery {
	return models.ClassifiedQuery{
		Query:   models.Query{Text: "pergunta", SessionID: "sess-1", Timestamp: time.Now()},
		Topic:   topic,
		Urgency: urgency,
	}
}

// ==========================
// Dispatch Tests
// ==========================

func TestOrchestrator_Dispatch_CollectsAllResults(t *testing.T) {
	o := New(500*time.Millisecond, logger.NewNoOpLogger())

	pool := []adapters.Adapter{
		&fakeAdapter{id: "localkb", results: []models.SourceResult{result("localkb", "a")}},
		&fakeAdapter{id: "websearch", results: []models.SourceResult{result("websearch", "b"), result("websearch", "c")}},
	}

	results := o.Dispatch(context.Background(), testQuery(models.TopicDestinations, models.UrgencyNormal), pool, time.Second)

	assert.Len(t, results, 3)
}

func TestOrchestrator_Dispatch_AdapterErrorDoesNotAbortSiblings(t *testing.T) {
	o := New(500*time.Millisecond, logger.NewNoOpLogger())

	pool := []adapters.Adapter{
		&fakeAdapter{id: "websearch", err: adapters.ErrAdapterUnavailable},
		&fakeAdapter{id: "localkb", results: []models.SourceResult{result("localkb", "a")}},
	}

	results := o.Dispatch(context.Background(), testQuery(models.TopicDestinations, models.UrgencyNormal), pool, time.Second)

	require.Len(t, results, 1)
	assert.Equal(t, "localkb", results[0].SourceID)
}

func TestOrchestrator_Dispatch_HungAdapterReturnsWithinBudget(t *testing.T) {
	o := New(5*time.Second, logger.NewNoOpLogger())

	pool := []adapters.Adapter{
		&fakeAdapter{id: "localkb", results: []models.SourceResult{result("localkb", "a")}},
		&fakeAdapter{id: "websearch", delay: 10 * time.Second, results: []models.SourceResult{result("websearch", "late")}},
	}

	budget := 100 * time.Millisecond
	start := time.Now()
	results := o.Dispatch(context.Background(), testQuery(models.TopicDestinations, models.UrgencyNormal), pool, budget)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, budget+300*time.Millisecond)
	require.Len(t, results, 1)
	assert.Equal(t, "localkb", results[0].SourceID)
}

func TestOrchestrator_Dispatch_PerAdapterTimeoutIsolated(t *testing.T) {
	o := New(50*time.Millisecond, logger.NewNoOpLogger())

	pool := []adapters.Adapter{
		&fakeAdapter{id: "officialsites", delay: 2 * time.Second},
		&fakeAdapter{id: "localkb", results: []models.SourceResult{result("localkb", "a")}},
	}

	results := o.Dispatch(context.Background(), testQuery(models.TopicDestinations, models.UrgencyNormal), pool, time.Second)

	require.Len(t, results, 1)
	assert.Equal(t, "localkb", results[0].SourceID)
}

// ==========================
// Adapter Selection Tests
// ==========================

func TestOrchestrator_SelectAdapters_UrgentSkipsOfficialSites(t *testing.T) {
	o := New(time.Second, logger.NewNoOpLogger())

	pool := []adapters.Adapter{
		&fakeAdapter{id: "localkb"},
		&fakeAdapter{id: "officialsites"},
		&fakeAdapter{id: "websearch"},
	}

	selected := o.selectAdapters(testQuery(models.TopicLodging, models.UrgencyHigh), pool)

	ids := make([]string, 0, len(selected))
	for _, a := range selected {
		ids = append(ids, a.ID())
	}
	assert.ElementsMatch(t, []string{"localkb", "websearch"}, ids)
}

func TestOrchestrator_SelectAdapters_GenAINeverInFirstWave(t *testing.T) {
	o := New(time.Second, logger.NewNoOpLogger())

	pool := []adapters.Adapter{
		&fakeAdapter{id: "localkb"},
		&fakeAdapter{id: "genai"},
	}

	selected := o.selectAdapters(testQuery(models.TopicGeneral, models.UrgencyNormal), pool)

	require.Len(t, selected, 1)
	assert.Equal(t, "localkb", selected[0].ID())
}

func TestOrchestrator_Dispatch_NoAdaptersSelected(t *testing.T) {
	o := New(time.Second, logger.NewNoOpLogger())

	results := o.Dispatch(context.Background(), testQuery(models.TopicGeneral, models.UrgencyNormal), nil, time.Second)

	assert.Empty(t, results)
}
