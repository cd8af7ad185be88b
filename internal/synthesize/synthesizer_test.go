// internal/synthesize/synthesizer_test.go
package synthesize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/decide"
	"tourism-router/internal/feedback"
	"tourism-router/internal/models"
)

var testLocalSources = []string{"localkb", "partners", "community"}

type fakePatterns struct {
	active []models.LearningPattern
	used   []string
	panics bool
}

func (f *fakePatterns) ActivePatterns() []models.LearningPattern {
	if f.panics {
		panic("boom")
	}
	return f.active
}

func (f *fakePatterns) RecordPatternUse(key string) {
	f.used = append(f.used, key)
}

func newTestSynthesizer(patterns *fakePatterns) *Synthesizer {
	cfg := config.ScoringConfig{AgreementBoost: 0.1, FallbackConfidence: 0.2}
	return New(cfg, patterns, feedback.DefaultFactShapes(), testLocalSources, logger.NewNoOpLogger())
}

func scored(sourceID, title, body, url string, adjusted float64) models.ScoredResult {
	return models.ScoredResult{
		SourceResult: models.SourceResult{
			SourceID: sourceID,
			Title:    title,
			Body:     body,
			URL:      url,
		},
		AdjustedScore: adjusted,
	}
}

func foodQuery() models.ClassifiedQuery {
	return models.ClassifiedQuery{
		Query: models.Query{Text: "Onde comer sobá?"},
		Topic: models.TopicFood,
		Mood:  models.MoodNeutral,
	}
}

// ==========================
// Text blocks and origin
// ==========================

func TestSynthesize_LocalOnlySingleBlock(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathLocalOnly,
		Selected: []models.ScoredResult{
			scored("localkb", "Sobá", "O sobá é símbolo de Campo Grande.", "https://visitms.com.br/soba", 0.85),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.Equal(t, "O sobá é símbolo de Campo Grande.", answer.Text)
	assert.NotContains(t, answer.Text, hybridSeparator)
	assert.Equal(t, models.OriginLocal, answer.KnowledgeOrigin)
	assert.Equal(t, []string{"localkb"}, answer.UsedSources)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "localkb", answer.Citations[0].SourceID)
}

func TestSynthesize_HybridSeparatesFreshBlock(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathHybrid,
		Selected: []models.ScoredResult{
			scored("localkb", "Bonito", "Bonito é a capital do ecoturismo.", "https://visitms.com.br/bonito", 0.7),
			scored("websearch", "Notícia", "Novo flutuante inaugurado este mês.", "https://example.org/noticia", 0.72),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	require.Contains(t, answer.Text, hybridSeparator)
	localIdx := strings.Index(answer.Text, "capital do ecoturismo")
	sepIdx := strings.Index(answer.Text, hybridSeparator)
	freshIdx := strings.Index(answer.Text, "flutuante inaugurado")
	assert.Less(t, localIdx, sepIdx)
	assert.Less(t, sepIdx, freshIdx)

	assert.Equal(t, models.OriginHybrid, answer.KnowledgeOrigin)
	assert.Len(t, answer.Citations, 2)
	assert.ElementsMatch(t, []string{"localkb", "websearch"}, answer.UsedSources)
}

func TestSynthesize_WebFirstSingleBlock(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathWebFirst,
		Selected: []models.ScoredResult{
			scored("websearch", "Evento", "Festival confirmado para setembro.", "https://example.org/festival", 0.6),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.NotContains(t, answer.Text, hybridSeparator)
	assert.Equal(t, models.OriginWeb, answer.KnowledgeOrigin)
}

// ==========================
// Fallback
// ==========================

func TestSynthesize_FallbackAnswer(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	answer := s.Synthesize(foodQuery(), decide.Decision{Path: models.PathFallback})

	assert.Contains(t, answer.Text, "não encontrei informações verificadas")
	assert.Contains(t, answer.Text, "sobá")
	assert.LessOrEqual(t, answer.Confidence, 0.3)
	assert.Equal(t, models.OriginFallback, answer.KnowledgeOrigin)
	assert.Empty(t, answer.Citations)
	assert.Empty(t, answer.UsedSources)
	assert.NotEmpty(t, answer.FollowUpQuestions)
}

// ==========================
// Confidence
// ==========================

func TestSynthesize_ConfidenceIsBestAdjusted(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathLocalOnly,
		Selected: []models.ScoredResult{
			scored("localkb", "A", "Texto.", "", 0.82),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)
	assert.InDelta(t, 0.82, answer.Confidence, 0.001)
}

func TestSynthesize_AgreementBoostAndCap(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	tests := []struct {
		name     string
		selected []models.ScoredResult
		want     float64
	}{
		{
			name: "two sources boosted",
			selected: []models.ScoredResult{
				scored("localkb", "A", "Texto local.", "", 0.7),
				scored("websearch", "B", "Texto web.", "", 0.72),
			},
			want: 0.82,
		},
		{
			name: "boost capped at one",
			selected: []models.ScoredResult{
				scored("localkb", "A", "Texto local.", "", 0.95),
				scored("websearch", "B", "Texto web.", "", 0.9),
			},
			want: 1.0,
		},
		{
			name: "same source twice is not agreement",
			selected: []models.ScoredResult{
				scored("localkb", "A", "Primeiro.", "", 0.7),
				scored("localkb", "B", "Segundo.", "", 0.68),
			},
			want: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := s.Synthesize(foodQuery(), decide.Decision{Path: models.PathHybrid, Selected: tt.selected})
			assert.InDelta(t, tt.want, answer.Confidence, 0.001)
		})
	}
}

func TestSynthesize_AgreementBoostComesFromConfig(t *testing.T) {
	cfg := config.ScoringConfig{AgreementBoost: 0.05, FallbackConfidence: 0.25}
	s := New(cfg, &fakePatterns{}, nil, testLocalSources, logger.NewNoOpLogger())

	decision := decide.Decision{
		Path: models.PathHybrid,
		Selected: []models.ScoredResult{
			scored("localkb", "A", "Texto local.", "", 0.7),
			scored("websearch", "B", "Texto web.", "", 0.72),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)
	assert.InDelta(t, 0.77, answer.Confidence, 0.001)

	fallback := s.Synthesize(foodQuery(), decide.Decision{Path: models.PathFallback})
	assert.InDelta(t, 0.25, fallback.Confidence, 0.001)
}

func TestSynthesize_ZeroScoringConfigGetsDefaults(t *testing.T) {
	s := New(config.ScoringConfig{}, &fakePatterns{}, nil, testLocalSources, logger.NewNoOpLogger())

	decision := decide.Decision{
		Path: models.PathHybrid,
		Selected: []models.ScoredResult{
			scored("localkb", "A", "Texto local.", "", 0.7),
			scored("websearch", "B", "Texto web.", "", 0.72),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)
	assert.InDelta(t, 0.82, answer.Confidence, 0.001)
}

// ==========================
// Learned corrections
// ==========================

func TestSynthesize_AppliesLearnedCorrection(t *testing.T) {
	patterns := &fakePatterns{active: []models.LearningPattern{{
		Key:        "phone:(67) 3318-0000",
		FactShape:  "phone",
		MatchText:  "(67) 3318-0000",
		Correction: "(67) 3318-7600",
		Confidence: 0.8,
	}}}
	s := newTestSynthesizer(patterns)

	decision := decide.Decision{
		Path: models.PathLocalOnly,
		Selected: []models.ScoredResult{
			scored("localkb", "Fundtur", "O telefone da Fundtur é (67) 3318-0000.", "", 0.9),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.Contains(t, answer.Text, "(67) 3318-7600")
	assert.NotContains(t, answer.Text, "(67) 3318-0000")
	assert.Equal(t, []string{"phone:(67) 3318-0000"}, patterns.used)
}

func TestSynthesize_CorrectionIsIdempotent(t *testing.T) {
	patterns := &fakePatterns{active: []models.LearningPattern{{
		Key:        "phone:(67) 3318-0000",
		FactShape:  "phone",
		MatchText:  "(67) 3318-0000",
		Correction: "(67) 3318-7600",
		Confidence: 0.8,
	}}}
	s := newTestSynthesizer(patterns)

	decision := decide.Decision{
		Path: models.PathLocalOnly,
		Selected: []models.ScoredResult{
			scored("localkb", "Fundtur", "Ligue para (67) 3318-7600.", "", 0.9),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.Equal(t, "Ligue para (67) 3318-7600.", answer.Text)
	assert.Empty(t, patterns.used, "already-corrected text must not record a use")
}

func TestSynthesize_CorrectionFixesStaleBlockNextToCorrectedOne(t *testing.T) {
	patterns := &fakePatterns{active: []models.LearningPattern{{
		Key:        "phone:(67) 3318-0000",
		FactShape:  "phone",
		MatchText:  "(67) 3318-0000",
		Correction: "(67) 3318-7600",
		Confidence: 0.8,
	}}}
	s := newTestSynthesizer(patterns)

	decision := decide.Decision{
		Path: models.PathHybrid,
		Selected: []models.ScoredResult{
			scored("localkb", "Fundtur", "O telefone da Fundtur é (67) 3318-7600.", "", 0.7),
			scored("websearch", "Guia", "Segundo o guia, ligue para (67) 3318-0000.", "", 0.72),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.NotContains(t, answer.Text, "(67) 3318-0000")
	assert.Equal(t, 2, strings.Count(answer.Text, "(67) 3318-7600"))
	assert.Equal(t, []string{"phone:(67) 3318-0000"}, patterns.used)
}

// ==========================
// Generated-only guard
// ==========================

func TestSynthesize_GeneratedOnlyWithFactsDegrades(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathWebFirst,
		Selected: []models.ScoredResult{
			scored("genai", "Resposta", "A entrada custa R$ 95 reais por pessoa.", "", 0.5),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.Equal(t, models.OriginFallback, answer.KnowledgeOrigin)
	assert.NotContains(t, answer.Text, "R$ 95")
}

func TestSynthesize_GeneratedOnlyWithoutFactsPasses(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathWebFirst,
		Selected: []models.ScoredResult{
			scored("genai", "Resposta", "Bonito é famoso pelas águas cristalinas e flutuação.", "", 0.5),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.Equal(t, models.OriginWeb, answer.KnowledgeOrigin)
	assert.Contains(t, answer.Text, "águas cristalinas")
}

func TestSynthesize_GeneratedPlusVerifiedKeepsFacts(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path: models.PathHybrid,
		Selected: []models.ScoredResult{
			scored("localkb", "Gruta", "A entrada custa R$ 95 reais.", "", 0.7),
			scored("genai", "Contexto", "Vale muito a pena conhecer.", "", 0.5),
		},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.NotEqual(t, models.OriginFallback, answer.KnowledgeOrigin)
	assert.Contains(t, answer.Text, "R$ 95")
}

// ==========================
// Follow-ups and recovery
// ==========================

func TestSynthesize_FollowUpsMatchTopic(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	decision := decide.Decision{
		Path:     models.PathLocalOnly,
		Selected: []models.ScoredResult{scored("localkb", "Sobá", "Prove o sobá.", "", 0.9)},
	}

	answer := s.Synthesize(foodQuery(), decision)

	require.Len(t, answer.FollowUpQuestions, 3)
	assert.Contains(t, answer.FollowUpQuestions[0], "pratos típicos")
}

func TestSynthesize_ConfusedMoodGetsClarifyingFollowUps(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{})

	q := foodQuery()
	q.Mood = models.MoodConfused

	decision := decide.Decision{
		Path:     models.PathLocalOnly,
		Selected: []models.ScoredResult{scored("localkb", "Sobá", "Prove o sobá.", "", 0.9)},
	}

	answer := s.Synthesize(q, decision)

	require.Len(t, answer.FollowUpQuestions, 3)
	assert.Contains(t, answer.FollowUpQuestions[0], "explique de outra forma")
}

func TestSynthesize_RecoversFromPanic(t *testing.T) {
	s := newTestSynthesizer(&fakePatterns{panics: true})

	decision := decide.Decision{
		Path:     models.PathLocalOnly,
		Selected: []models.ScoredResult{scored("localkb", "Sobá", "Prove o sobá.", "", 0.9)},
	}

	answer := s.Synthesize(foodQuery(), decision)

	assert.Contains(t, answer.Text, "Desculpe")
	assert.Equal(t, models.OriginFallback, answer.KnowledgeOrigin)
	assert.NotEmpty(t, answer.FollowUpQuestions)
}
