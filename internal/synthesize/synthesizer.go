// internal/synthesize/synthesizer.go
package synthesize

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"tourism-router/internal/adapters/genai"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/common/metrics"
	"tourism-router/internal/decide"
	"tourism-router/internal/feedback"
	"tourism-router/internal/models"
)

const (
	defaultAgreementBoost     = 0.1
	defaultFallbackConfidence = 0.2

	hybridSeparator = "Informações adicionais atualizadas:"
)

// PatternSource is what the synthesizer needs from the feedback store.
type PatternSource interface {
	ActivePatterns() []models.LearningPattern
	RecordPatternUse(key string)
}

// Synthesizer turns a decision's selected results into the final answer:
// text blocks, learned corrections, citations, follow-ups and confidence.
type Synthesizer struct {
	patterns           PatternSource
	shapes             []feedback.FactShape
	local              map[string]bool
	agreementBoost     float64
	fallbackConfidence float64
	logger             logger.Logger
}

func New(cfg config.ScoringConfig, patterns PatternSource, shapes []feedback.FactShape, localSources []string, log logger.Logger) *Synthesizer {
	if len(shapes) == 0 {
		shapes = feedback.DefaultFactShapes()
	}
	if cfg.AgreementBoost == 0 {
		cfg.AgreementBoost = defaultAgreementBoost
	}
	if cfg.FallbackConfidence == 0 {
		cfg.FallbackConfidence = defaultFallbackConfidence
	}
	local := make(map[string]bool, len(localSources))
	for _, id := range localSources {
		local[id] = true
	}
	return &Synthesizer{
		patterns:           patterns,
		shapes:             shapes,
		local:              local,
		agreementBoost:     cfg.AgreementBoost,
		fallbackConfidence: cfg.FallbackConfidence,
		logger:             log.With(map[string]interface{}{"component": "synthesizer"}),
	}
}

// Synthesize never fails: a panic anywhere below is recovered into the
// generic apology answer so the user always gets something well-formed.
func (s *Synthesizer) Synthesize(q models.ClassifiedQuery, decision decide.Decision) (answer models.SynthesizedAnswer) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("synthesis panicked", map[string]interface{}{
				"panic": r,
				"topic": string(q.Topic),
			})
			answer = s.apologyAnswer(q)
		}
	}()

	if decision.Path == models.PathFallback || len(decision.Selected) == 0 {
		return s.fallbackAnswer(q)
	}

	text := s.buildText(decision)
	text = s.applyCorrections(text)

	// Generated prose may not stand alone behind prices, hours, addresses
	// or phone numbers.
	if s.onlyGenerated(decision.Selected) && feedback.ContainsFact(text, s.shapes) {
		s.logger.Warn("generated-only answer carries factual claims, degrading to fallback", map[string]interface{}{
			"topic": string(q.Topic),
		})
		return s.fallbackAnswer(q)
	}

	return models.SynthesizedAnswer{
		Text:              text,
		Confidence:        s.confidence(decision.Selected),
		Citations:         s.citations(decision.Selected),
		UsedSources:       usedSources(decision.Selected),
		KnowledgeOrigin:   originFor(decision.Path),
		FollowUpQuestions: followUps(q.Topic, q.Mood),
	}
}

// buildText renders one block for local-only and web-first answers, and a
// local block plus a separated fresh-information block for hybrid ones.
func (s *Synthesizer) buildText(decision decide.Decision) string {
	if decision.Path != models.PathHybrid {
		return joinBodies(decision.Selected)
	}

	var localPart, freshPart []models.ScoredResult
	for _, r := range decision.Selected {
		if s.local[r.SourceID] {
			localPart = append(localPart, r)
		} else {
			freshPart = append(freshPart, r)
		}
	}

	if len(localPart) == 0 || len(freshPart) == 0 {
		return joinBodies(decision.Selected)
	}

	return joinBodies(localPart) + "\n\n" + hybridSeparator + "\n" + joinBodies(freshPart)
}

func joinBodies(results []models.ScoredResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		body := strings.TrimSpace(r.Body)
		if body == "" {
			continue
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n\n")
}

// applyCorrections rewrites learned wrong facts wherever the stale text
// still occurs, so a multi-block draft with one block already corrected
// still gets the rest fixed. When the corrected value embeds the old text,
// a second pass would nest replacements; only then is an already-present
// correction left alone.
func (s *Synthesizer) applyCorrections(text string) string {
	if s.patterns == nil {
		return text
	}

	for _, p := range s.patterns.ActivePatterns() {
		lower := strings.ToLower(text)
		if !strings.Contains(lower, strings.ToLower(p.MatchText)) {
			continue
		}
		if strings.Contains(strings.ToLower(p.Correction), strings.ToLower(p.MatchText)) &&
			strings.Contains(lower, strings.ToLower(p.Correction)) {
			continue
		}

		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(p.MatchText))
		text = re.ReplaceAllLiteralString(text, p.Correction)

		s.patterns.RecordPatternUse(p.Key)
		metrics.CorrectionsApplied.WithLabelValues(p.FactShape).Inc()

		s.logger.Info("learned correction applied", map[string]interface{}{
			"pattern":    p.Key,
			"confidence": p.Confidence,
		})
	}

	return text
}

// confidence is the best adjusted score, boosted when at least two distinct
// sources backed the answer.
func (s *Synthesizer) confidence(selected []models.ScoredResult) float64 {
	best := 0.0
	distinct := make(map[string]bool)
	for _, r := range selected {
		if r.AdjustedScore > best {
			best = r.AdjustedScore
		}
		distinct[r.SourceID] = true
	}

	if len(distinct) >= 2 {
		best += s.agreementBoost
	}
	return math.Min(best, 1.0)
}

func (s *Synthesizer) citations(selected []models.ScoredResult) []models.Citation {
	seen := make(map[string]bool)
	var citations []models.Citation
	for _, r := range selected {
		key := r.SourceID + "|" + r.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, models.Citation{
			SourceID: r.SourceID,
			Title:    r.Title,
			URL:      r.URL,
		})
	}
	return citations
}

func (s *Synthesizer) onlyGenerated(selected []models.ScoredResult) bool {
	for _, r := range selected {
		if r.SourceID != genai.SourceID {
			return false
		}
	}
	return len(selected) > 0
}

func (s *Synthesizer) fallbackAnswer(q models.ClassifiedQuery) models.SynthesizedAnswer {
	text := fmt.Sprintf(
		"Ainda não encontrei informações verificadas sobre isso. %s",
		fallbackSuggestion(q.Topic),
	)

	return models.SynthesizedAnswer{
		Text:              text,
		Confidence:        s.fallbackConfidence,
		KnowledgeOrigin:   models.OriginFallback,
		FollowUpQuestions: followUps(q.Topic, q.Mood),
	}
}

// apologyAnswer is the recovery path: fixed text, no facts, no citations.
func (s *Synthesizer) apologyAnswer(q models.ClassifiedQuery) models.SynthesizedAnswer {
	return models.SynthesizedAnswer{
		Text:              "Desculpe, tive um problema ao montar sua resposta. Pode tentar perguntar de novo?",
		Confidence:        s.fallbackConfidence,
		KnowledgeOrigin:   models.OriginFallback,
		FollowUpQuestions: followUps(q.Topic, models.MoodNeutral),
	}
}

func usedSources(selected []models.ScoredResult) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, r := range selected {
		if seen[r.SourceID] {
			continue
		}
		seen[r.SourceID] = true
		sources = append(sources, r.SourceID)
	}
	return sources
}

func originFor(path models.DecisionPath) models.KnowledgeOrigin {
	switch path {
	case models.PathLocalOnly:
		return models.OriginLocal
	case models.PathWebFirst:
		return models.OriginWeb
	case models.PathHybrid:
		return models.OriginHybrid
	default:
		return models.OriginFallback
	}
}
