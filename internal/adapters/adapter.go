// internal/adapters/adapter.go
package adapters

import (
	"context"
	"errors"

	"tourism-router/internal/models"
)

var (
	ErrAdapterTimeout     = errors.New("ADAPTER_TIMEOUT")
	ErrAdapterUnavailable = errors.New("ADAPTER_UNAVAILABLE")
	ErrNoMatch            = errors.New("NO_MATCH")
)

// Adapter is the uniform contract every knowledge source implements.
// An empty, non-error result set is valid: absence of results is not an
// error. Search must respect ctx and return ErrAdapterTimeout rather than
// blocking past it.
type Adapter interface {
	// ID identifies the source in results, citations and metrics.
	ID() string
	// TrustWeight is the static per-source multiplier in (0,1] used by the
	// confidence scorer.
	TrustWeight() float64
	// RealTime reports whether results reflect live data (no staleness
	// penalty, preferred on score ties).
	RealTime() bool
	Search(ctx context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error)
}

// RetryPolicy bounds retries for adapters that talk to flaky backends.
// It is passed explicitly per call site so retry behavior composes with
// the per-adapter timeout instead of living as hidden instance state.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff int // milliseconds, doubled per attempt
}

// NoRetry is the zero policy: one attempt, no backoff.
var NoRetry = RetryPolicy{}
