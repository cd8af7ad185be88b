// internal/decide/engine.go
package decide

import (
	"tourism-router/internal/common/config"
	"tourism-router/internal/models"
)

// Decision is the outcome of the four-path policy: which route the answer
// takes and which scored results feed the synthesizer. On the fallback path
// Selected is empty.
type Decision struct {
	Path     models.DecisionPath
	Selected []models.ScoredResult
}

// Engine picks one of {local-only, hybrid, web-first, fallback} from a
// scored result set. It is a pure function of its input: same scored set,
// same decision. The 0.8/0.5/0.3 boundaries come from configuration.
type Engine struct {
	cfg   config.ThresholdConfig
	local map[string]bool
}

// New builds an engine; localSources names the adapter IDs counted as local
// curated knowledge for the threshold policy.
func New(cfg config.ThresholdConfig, localSources []string) *Engine {
	local := make(map[string]bool, len(localSources))
	for _, id := range localSources {
		local[id] = true
	}
	return &Engine{cfg: cfg, local: local}
}

// Decide expects results sorted by adjustedScore descending (the scorer's
// output order) and keeps that order in its selection.
func (e *Engine) Decide(scored []models.ScoredResult) Decision {
	bestLocal := e.best(scored, true)
	bestNonLocal := e.best(scored, false)

	// Fast path: trusted local knowledge alone
	if bestLocal != nil && bestLocal.AdjustedScore > e.cfg.LocalOnly {
		return Decision{Path: models.PathLocalOnly, Selected: []models.ScoredResult{*bestLocal}}
	}

	// Mid band: local is usable but a fresher non-local result may beat it
	if bestLocal != nil && bestLocal.AdjustedScore > e.cfg.HybridFloor {
		if bestNonLocal != nil && bestNonLocal.AdjustedScore > bestLocal.AdjustedScore {
			return Decision{Path: models.PathHybrid, Selected: []models.ScoredResult{*bestLocal, *bestNonLocal}}
		}
		return Decision{Path: models.PathLocalOnly, Selected: []models.ScoredResult{*bestLocal}}
	}

	if bestNonLocal != nil && bestNonLocal.AdjustedScore > e.cfg.MinimumFloor {
		return Decision{Path: models.PathWebFirst, Selected: e.topNonLocal(scored)}
	}

	// Weak local knowledge still beats fabricating: use it when it clears
	// the floor and nothing non-local does.
	if bestLocal != nil && bestLocal.AdjustedScore > e.cfg.MinimumFloor {
		return Decision{Path: models.PathLocalOnly, Selected: []models.ScoredResult{*bestLocal}}
	}

	return Decision{Path: models.PathFallback}
}

func (e *Engine) best(scored []models.ScoredResult, wantLocal bool) *models.ScoredResult {
	for i := range scored {
		if e.local[scored[i].SourceID] == wantLocal {
			return &scored[i]
		}
	}
	return nil
}

// topNonLocal keeps up to two non-local results above the floor, preserving
// score order.
func (e *Engine) topNonLocal(scored []models.ScoredResult) []models.ScoredResult {
	var selected []models.ScoredResult
	for _, r := range scored {
		if e.local[r.SourceID] || r.AdjustedScore <= e.cfg.MinimumFloor {
			continue
		}
		selected = append(selected, r)
		if len(selected) == 2 {
			break
		}
	}
	return selected
}
