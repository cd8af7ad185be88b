// internal/score/scorer.go
package score

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tourism-router/internal/common/config"
	"tourism-router/internal/models"
)

// Scorer reweights raw adapter confidences with source trust, keyword
// overlap and staleness. Its output ordering is deterministic so the
// decision engine behaves the same regardless of adapter completion order.
type Scorer struct {
	cfg   config.ScoringConfig
	trust map[string]float64

	// now is swappable for staleness tests
	now func() time.Time
}

func New(cfg config.ScoringConfig, trust map[string]float64) *Scorer {
	return &Scorer{
		cfg:   cfg,
		trust: trust,
		now:   time.Now,
	}
}

// Score computes adjustedScore = rawConfidence*trust + overlapBonus -
// stalenessPenalty, clamped to [0,1], and returns the results sorted by
// adjustedScore descending. Ties prefer real-time results, then higher raw
// confidence, then sourceId.
func (s *Scorer) Score(results []models.SourceResult, q models.ClassifiedQuery) []models.ScoredResult {
	scored := make([]models.ScoredResult, 0, len(results))
	for _, r := range results {
		scored = append(scored, s.scoreOne(r, q))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		if a.IsRealTime != b.IsRealTime {
			return a.IsRealTime
		}
		if a.RawConfidence != b.RawConfidence {
			return a.RawConfidence > b.RawConfidence
		}
		return a.SourceID < b.SourceID
	})

	return scored
}

func (s *Scorer) scoreOne(r models.SourceResult, q models.ClassifiedQuery) models.ScoredResult {
	var reasons []string

	trust, ok := s.trust[r.SourceID]
	if !ok {
		trust = 0.5
	}
	adjusted := r.RawConfidence * trust
	reasons = append(reasons, fmt.Sprintf("trust(%s)=%.2f", r.SourceID, trust))

	if bonus := s.overlapBonus(r, q); bonus > 0 {
		adjusted += bonus
		reasons = append(reasons, fmt.Sprintf("overlap=+%.2f", bonus))
	}

	if penalty := s.stalenessPenalty(r, q); penalty > 0 {
		adjusted -= penalty
		reasons = append(reasons, fmt.Sprintf("stale=-%.2f", penalty))
	}

	if adjusted < 0 {
		adjusted = 0
	} else if adjusted > 1 {
		adjusted = 1
	}

	return models.ScoredResult{
		SourceResult:  r,
		AdjustedScore: adjusted,
		Reasons:       reasons,
	}
}

// overlapBonus is proportional to the fraction of the query's keywords found
// in the result's title+body, capped by OverlapBonusCap.
func (s *Scorer) overlapBonus(r models.SourceResult, q models.ClassifiedQuery) float64 {
	if len(q.Keywords) == 0 {
		return 0
	}

	text := strings.ToLower(r.Title + " " + r.Body)
	found := 0
	for _, kw := range q.Keywords {
		if strings.Contains(text, kw) {
			found++
		}
	}

	fraction := float64(found) / float64(len(q.Keywords))
	return fraction * s.cfg.OverlapBonusCap
}

// stalenessPenalty applies only to non-real-time results older than the
// topic's freshness window. Events and weather go stale in days; curated
// destination facts stay fresh for months.
func (s *Scorer) stalenessPenalty(r models.SourceResult, q models.ClassifiedQuery) float64 {
	if r.IsRealTime || r.RetrievedAt.IsZero() {
		return 0
	}

	windowDays := s.cfg.FreshnessSlowDays
	if q.Topic == models.TopicEvents || q.Topic == models.TopicWeather {
		windowDays = s.cfg.FreshnessFastDays
	}

	age := s.now().Sub(r.RetrievedAt)
	if age > time.Duration(windowDays)*24*time.Hour {
		return s.cfg.StalenessPenalty
	}
	return 0
}
