// internal/router/router.go
package router

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"tourism-router/internal/adapters"
	"tourism-router/internal/classify"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/common/metrics"
	"tourism-router/internal/common/observability"
	"tourism-router/internal/decide"
	"tourism-router/internal/feedback"
	"tourism-router/internal/models"
	"tourism-router/internal/orchestrate"
	"tourism-router/internal/score"
	"tourism-router/internal/session"
	"tourism-router/internal/synthesize"
)

// Generator is the generative adapter surface the router retries with
// when the first wave lands on fallback.
type Generator interface {
	Generate(ctx context.Context, q models.ClassifiedQuery, policy adapters.RetryPolicy) ([]models.SourceResult, error)
}

// AnswerCache is the subset of the Redis client the router caches through.
// A nil cache disables caching entirely.
type AnswerCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Router is the primary surface: one call runs the whole
// classify / dispatch / score / decide / synthesize pipeline.
type Router struct {
	cfg config.RouterConfig

	classifier   *classify.Classifier
	orchestrator *orchestrate.Orchestrator
	pool         []adapters.Adapter
	generator    Generator
	genPolicy    adapters.RetryPolicy
	scorer       *score.Scorer
	engine       *decide.Engine
	synthesizer  *synthesize.Synthesizer
	store        *feedback.Store
	sessions     *session.Store
	cache        AnswerCache
	obs          *observability.Observability
	logger       logger.Logger
}

type Deps struct {
	Classifier    *classify.Classifier
	Orchestrator  *orchestrate.Orchestrator
	Adapters      []adapters.Adapter
	Generator     Generator
	GenPolicy     adapters.RetryPolicy
	Scorer        *score.Scorer
	Engine        *decide.Engine
	Synthesizer   *synthesize.Synthesizer
	Feedback      *feedback.Store
	Sessions      *session.Store
	Cache         AnswerCache
	Observability *observability.Observability
}

func New(cfg config.RouterConfig, deps Deps, log logger.Logger) *Router {
	return &Router{
		cfg:          cfg,
		classifier:   deps.Classifier,
		orchestrator: deps.Orchestrator,
		pool:         deps.Adapters,
		generator:    deps.Generator,
		genPolicy:    deps.GenPolicy,
		scorer:       deps.Scorer,
		engine:       deps.Engine,
		synthesizer:  deps.Synthesizer,
		store:        deps.Feedback,
		sessions:     deps.Sessions,
		cache:        deps.Cache,
		obs:          deps.Observability,
		logger:       log.With(map[string]interface{}{"component": "router"}),
	}
}

// Ask answers one question. It never surfaces an internal failure: adapter
// errors, empty result sets and synthesis panics all end in a well-formed
// fallback answer. The returned error is only ever the caller's context.
func (r *Router) Ask(ctx context.Context, q models.Query) (models.SynthesizedAnswer, error) {
	if err := ctx.Err(); err != nil {
		return models.SynthesizedAnswer{}, err
	}
	start := time.Now()

	sess := r.sessions.GetOrCreate(q.SessionID)
	cq := r.classifier.Classify(q, sess)

	metrics.QueriesTotal.WithLabelValues(string(cq.Topic)).Inc()

	cacheKey := answerCacheKey(cq)
	if answer, ok := r.cachedAnswer(ctx, cacheKey); ok {
		answer.ProcessingTimeMs = time.Since(start).Milliseconds()
		r.finish(ctx, cq, answer, start)
		return answer, nil
	}

	budget := time.Duration(r.cfg.RequestBudget) * time.Millisecond
	results := r.orchestrator.Dispatch(ctx, cq, r.pool, budget)

	scored := r.scorer.Score(results, cq)
	decision := r.engine.Decide(scored)

	// The generative source only runs when everything else fell short.
	if decision.Path == models.PathFallback && r.generator != nil {
		if generated, err := r.generator.Generate(ctx, cq, r.genPolicy); err == nil && len(generated) > 0 {
			scored = r.scorer.Score(append(results, generated...), cq)
			decision = r.engine.Decide(scored)
		} else if err != nil {
			r.logger.Warn("generative fallback failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	answer := r.synthesizer.Synthesize(cq, decision)
	answer.ProcessingTimeMs = time.Since(start).Milliseconds()

	if answer.KnowledgeOrigin != models.OriginFallback {
		r.cacheAnswer(ctx, cacheKey, answer)
	}

	r.finish(ctx, cq, answer, start)
	return answer, nil
}

func (r *Router) finish(ctx context.Context, cq models.ClassifiedQuery, answer models.SynthesizedAnswer, start time.Time) {
	r.sessions.Touch(cq.SessionID, session.Update{
		Topic: cq.Topic,
		Mood:  cq.Mood,
	})

	path := pathFor(answer.KnowledgeOrigin)
	metrics.DecisionsTotal.WithLabelValues(path).Inc()
	if r.obs != nil {
		r.obs.RecordQuery(ctx, path)
		r.obs.RecordQueryDuration(ctx, time.Since(start), path)
	}

	r.logger.Info("query answered", map[string]interface{}{
		"sessionId":  cq.SessionID,
		"topic":      string(cq.Topic),
		"origin":     string(answer.KnowledgeOrigin),
		"confidence": answer.Confidence,
		"sources":    answer.UsedSources,
		"elapsedMs":  answer.ProcessingTimeMs,
	})
}

// answerCacheKey normalizes the question so trivial whitespace and casing
// differences share one cache entry, and scopes it by topic.
func answerCacheKey(cq models.ClassifiedQuery) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(cq.Text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "answer:" + string(cq.Topic) + ":" + hex.EncodeToString(sum[:16])
}

func (r *Router) cachedAnswer(ctx context.Context, key string) (models.SynthesizedAnswer, bool) {
	if r.cache == nil || r.cfg.AnswerCacheTTL <= 0 {
		return models.SynthesizedAnswer{}, false
	}

	raw, err := r.cache.Get(ctx, key)
	if err != nil || raw == "" {
		metrics.AnswerCacheHits.WithLabelValues("miss").Inc()
		return models.SynthesizedAnswer{}, false
	}

	var answer models.SynthesizedAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		metrics.AnswerCacheHits.WithLabelValues("miss").Inc()
		return models.SynthesizedAnswer{}, false
	}

	metrics.AnswerCacheHits.WithLabelValues("hit").Inc()
	return answer, true
}

func (r *Router) cacheAnswer(ctx context.Context, key string, answer models.SynthesizedAnswer) {
	if r.cache == nil || r.cfg.AnswerCacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(answer)
	if err != nil {
		return
	}

	ttl := time.Duration(r.cfg.AnswerCacheTTL) * time.Millisecond
	if err := r.cache.Set(ctx, key, string(raw), ttl); err != nil {
		r.logger.Warn("answer cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func pathFor(origin models.KnowledgeOrigin) string {
	switch origin {
	case models.OriginLocal:
		return string(models.PathLocalOnly)
	case models.OriginWeb:
		return string(models.PathWebFirst)
	case models.OriginHybrid:
		return string(models.PathHybrid)
	default:
		return string(models.PathFallback)
	}
}

// RegisterFeedback delegates to the learning store.
func (r *Router) RegisterFeedback(sessionID, questionID, question, answer string, rating models.Rating, correction string) string {
	return r.store.RegisterFeedback(sessionID, questionID, question, answer, rating, correction)
}

// FeedbackStats exposes the learning store counters.
func (r *Router) FeedbackStats() models.FeedbackStats {
	return r.store.GetStats()
}

// ExportLearning dumps the learning store.
func (r *Router) ExportLearning() models.LearningExport {
	return r.store.ExportLearningData()
}

// ImportLearning restores the learning store from an export payload.
func (r *Router) ImportLearning(raw []byte) error {
	return r.store.ImportLearningData(raw)
}
