// internal/orchestrate/orchestrator.go
package orchestrate

import (
	"context"
	"errors"
	"time"

	"tourism-router/internal/adapters"
	"tourism-router/internal/adapters/genai"
	"tourism-router/internal/adapters/officialsites"
	apperrors "tourism-router/internal/common/errors"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/common/metrics"
	"tourism-router/internal/models"
)

// Orchestrator fans a classified query out to a topic-dependent subset of
// adapters. Each adapter runs on its own goroutine under a per-adapter
// timeout nested inside the overall budget; one adapter's failure never
// aborts its siblings, and results arriving after the budget are discarded.
type Orchestrator struct {
	adapterTimeout time.Duration
	logger         logger.Logger
}

func New(adapterTimeout time.Duration, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		adapterTimeout: adapterTimeout,
		logger:         log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

type adapterOutcome struct {
	sourceID string
	results  []models.SourceResult
	err      error
}

// Dispatch returns the union of all results that arrived within budget.
// Partial results are acceptable; an empty slice means every selected
// adapter failed, timed out or found nothing.
func (o *Orchestrator) Dispatch(ctx context.Context, q models.ClassifiedQuery, available []adapters.Adapter, budget time.Duration) []models.SourceResult {
	selected := o.selectAdapters(q, available)
	if len(selected) == 0 {
		return nil
	}

	budgetCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// Buffer sized to the fan-out so late goroutines never block on send.
	outcomes := make(chan adapterOutcome, len(selected))

	for _, a := range selected {
		go func(a adapters.Adapter) {
			start := time.Now()
			metrics.AdapterRequests.WithLabelValues(a.ID()).Inc()

			callCtx, callCancel := context.WithTimeout(budgetCtx, o.adapterTimeout)
			defer callCancel()

			results, err := a.Search(callCtx, q)
			metrics.AdapterDuration.WithLabelValues(a.ID()).Observe(time.Since(start).Seconds())

			outcomes <- adapterOutcome{sourceID: a.ID(), results: results, err: err}
		}(a)
	}

	var collected []models.SourceResult
	for pending := len(selected); pending > 0; pending-- {
		select {
		case outcome := <-outcomes:
			if outcome.err != nil {
				o.recordFailure(outcome.sourceID, outcome.err)
				continue
			}
			collected = append(collected, outcome.results...)
		case <-budgetCtx.Done():
			o.logger.Warn("request budget exhausted, finalizing with partial results", map[string]interface{}{
				"pendingAdapters": pending,
				"collected":       len(collected),
			})
			return collected
		}
	}

	return collected
}

// selectAdapters applies the topic/urgency routing rules:
//   - the generative fallback never joins the first wave; the router invokes
//     it explicitly when nothing else clears the floor
//   - urgent queries skip the slow official-sites index; web search stays in
//     every wave so weather and events topics always get live data
func (o *Orchestrator) selectAdapters(q models.ClassifiedQuery, available []adapters.Adapter) []adapters.Adapter {
	var selected []adapters.Adapter
	for _, a := range available {
		switch a.ID() {
		case genai.SourceID:
			continue
		case officialsites.SourceID:
			if q.Urgency == models.UrgencyHigh {
				continue
			}
		}
		selected = append(selected, a)
	}

	return selected
}

func (o *Orchestrator) recordFailure(sourceID string, err error) {
	var stdErr *apperrors.StandardError
	switch {
	case errors.Is(err, adapters.ErrAdapterTimeout):
		stdErr = apperrors.NewAdapterTimeoutError(sourceID)
	case errors.Is(err, adapters.ErrAdapterUnavailable):
		stdErr = apperrors.NewAdapterUnavailableError(sourceID, err)
	case errors.Is(err, adapters.ErrNoMatch):
		// absence of a match is routine, keep it out of the failure count
		return
	default:
		stdErr = apperrors.NewAdapterFailedError(sourceID, err)
	}

	metrics.AdapterFailures.WithLabelValues(sourceID, string(stdErr.Code)).Inc()
	o.logger.Warn("adapter failed", map[string]interface{}{
		"source":    sourceID,
		"errorCode": string(stdErr.Code),
		"category":  apperrors.GetErrorCategory(stdErr.Code),
		"retryable": stdErr.Retryable,
		"error":     err.Error(),
	})
}
