// internal/score/scorer_test.go
package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-router/internal/common/config"
	"tourism-router/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		OverlapBonusCap:   0.2,
		StalenessPenalty:  0.15,
		AgreementBoost:    0.1,
		FreshnessFastDays: 2,
		FreshnessSlowDays: 90,
	}
}

func testTrust() map[string]float64 {
	return map[string]float64{
		"localkb":   0.95,
		"websearch": 0.7,
		"community": 0.4,
	}
}

func newScorer() *Scorer {
	return New(testScoringConfig(), testTrust())
}

func testQuery(topic models.Topic, keywords ...string) models.ClassifiedQuery {
	return models.ClassifiedQuery{
		Query:    models.Query{Text: "pergunta", SessionID: "sess-1", Timestamp: time.Now()},
		Topic:    topic,
		Keywords: keywords,
	}
}

func fresh(sourceID string, raw float64) models.SourceResult {
	return models.SourceResult{
		SourceID:      sourceID,
		Title:         "titulo",
		Body:          "corpo",
		RawConfidence: raw,
		RetrievedAt:   time.Now(),
	}
}

// ==========================
// Scoring Tests
// ==========================

func TestScorer_Score_TrustWeightApplied(t *testing.T) {
	s := newScorer()

	scored := s.Score([]models.SourceResult{fresh("localkb", 0.8)}, testQuery(models.TopicDestinations))

	require.Len(t, scored, 1)
	assert.InDelta(t, 0.8*0.95, scored[0].AdjustedScore, 0.001)
	assert.Contains(t, scored[0].Reasons[0], "trust(localkb)")
}

func TestScorer_Score_UnknownSourceGetsDefaultTrust(t *testing.T) {
	s := newScorer()

	scored := s.Score([]models.SourceResult{fresh("mystery", 0.8)}, testQuery(models.TopicDestinations))

	require.Len(t, scored, 1)
	assert.InDelta(t, 0.4, scored[0].AdjustedScore, 0.001)
}

func TestScorer_Score_OverlapBonus(t *testing.T) {
	s := newScorer()

	r := fresh("localkb", 0.5)
	r.Title = "Passeios em Bonito"
	r.Body = "Flutuação no Rio da Prata"

	// two of four keywords present -> half the cap
	scored := s.Score([]models.SourceResult{r}, testQuery(models.TopicDestinations, "bonito", "flutuação", "gruta", "mergulho"))

	require.Len(t, scored, 1)
	assert.InDelta(t, 0.5*0.95+0.1, scored[0].AdjustedScore, 0.001)
	assert.Contains(t, scored[0].Reasons, "overlap=+0.10")
}

func TestScorer_Score_StalenessPenalty(t *testing.T) {
	s := newScorer()
	s.now = func() time.Time { return time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) }

	old := fresh("localkb", 0.8)
	old.RetrievedAt = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC) // 8 days old

	// events window is 2 days: penalized
	eventScored := s.Score([]models.SourceResult{old}, testQuery(models.TopicEvents))
	require.Len(t, eventScored, 1)
	assert.InDelta(t, 0.8*0.95-0.15, eventScored[0].AdjustedScore, 0.001)

	// destinations window is 90 days: untouched
	destScored := s.Score([]models.SourceResult{old}, testQuery(models.TopicDestinations))
	require.Len(t, destScored, 1)
	assert.InDelta(t, 0.8*0.95, destScored[0].AdjustedScore, 0.001)
}

func TestScorer_Score_RealTimeNeverPenalized(t *testing.T) {
	s := newScorer()
	s.now = func() time.Time { return time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) }

	live := fresh("websearch", 0.8)
	live.IsRealTime = true
	live.RetrievedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	scored := s.Score([]models.SourceResult{live}, testQuery(models.TopicEvents))

	require.Len(t, scored, 1)
	assert.InDelta(t, 0.8*0.7, scored[0].AdjustedScore, 0.001)
}

// ==========================
// Clamping and Ordering Tests
// ==========================

func TestScorer_Score_ClampedToUnitInterval(t *testing.T) {
	s := newScorer()

	high := fresh("localkb", 1.0)
	high.Title = "bonito"
	low := fresh("community", 0.01)
	low.RetrievedAt = time.Now().Add(-100 * 24 * time.Hour)

	scored := s.Score([]models.SourceResult{high, low}, testQuery(models.TopicDestinations, "bonito"))

	for _, r := range scored {
		assert.GreaterOrEqual(t, r.AdjustedScore, 0.0)
		assert.LessOrEqual(t, r.AdjustedScore, 1.0)
	}
}

func TestScorer_Score_DeterministicOrdering(t *testing.T) {
	s := newScorer()

	a := fresh("websearch", 0.9)
	b := fresh("localkb", 0.8)

	forward := s.Score([]models.SourceResult{a, b}, testQuery(models.TopicDestinations))
	reversed := s.Score([]models.SourceResult{b, a}, testQuery(models.TopicDestinations))

	require.Len(t, forward, 2)
	assert.Equal(t, forward[0].SourceID, reversed[0].SourceID)
	assert.Equal(t, forward[1].SourceID, reversed[1].SourceID)
}

func TestScorer_Score_TieBreakPrefersRealTime(t *testing.T) {
	cfg := testScoringConfig()
	trust := map[string]float64{"a": 0.8, "b": 0.8}
	s := New(cfg, trust)

	liveResult := fresh("b", 0.9)
	liveResult.IsRealTime = true
	staticResult := fresh("a", 0.9)

	scored := s.Score([]models.SourceResult{staticResult, liveResult}, testQuery(models.TopicDestinations))

	require.Len(t, scored, 2)
	assert.Equal(t, "b", scored[0].SourceID)
}
