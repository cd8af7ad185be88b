package models

import "time"

// SourceResult is one hit returned by a knowledge source adapter.
// Produced once per adapter call; immutable afterwards. Adapter-specific
// payload fields live in Metadata instead of ad hoc shapes.
type SourceResult struct {
	SourceID      string                 `json:"sourceId"`
	Title         string                 `json:"title"`
	Body          string                 `json:"body"`
	RawConfidence float64                `json:"rawConfidence"`
	URL           string                 `json:"url,omitempty"`
	IsRealTime    bool                   `json:"isRealTime"`
	RetrievedAt   time.Time              `json:"retrievedAt"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// ScoredResult is a SourceResult after trust/overlap/staleness reweighting.
type ScoredResult struct {
	SourceResult
	AdjustedScore float64  `json:"adjustedScore"`
	Reasons       []string `json:"reasons,omitempty"`
}

// KnowledgeOrigin tells which side of the pipeline produced the answer.
type KnowledgeOrigin string

const (
	OriginLocal    KnowledgeOrigin = "local"
	OriginWeb      KnowledgeOrigin = "web"
	OriginHybrid   KnowledgeOrigin = "hybrid"
	OriginFallback KnowledgeOrigin = "fallback"
)

// DecisionPath is the route chosen by the decision engine.
type DecisionPath string

const (
	PathLocalOnly DecisionPath = "local-only"
	PathHybrid    DecisionPath = "hybrid"
	PathWebFirst  DecisionPath = "web-first"
	PathFallback  DecisionPath = "fallback"
)

// Citation references one source actually used in an answer.
type Citation struct {
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
}

// SynthesizedAnswer is the final user-facing response.
type SynthesizedAnswer struct {
	Text              string          `json:"text"`
	Confidence        float64         `json:"confidence"`
	Citations         []Citation      `json:"citations,omitempty"`
	UsedSources       []string        `json:"usedSources,omitempty"`
	KnowledgeOrigin   KnowledgeOrigin `json:"knowledgeOrigin"`
	FollowUpQuestions []string        `json:"followUpQuestions,omitempty"`
	ProcessingTimeMs  int64           `json:"processingTimeMs"`
}
