// internal/adapters/genai/genai.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

const (
	SourceID    = "genai"
	trustWeight = 0.55
)

// Adapter calls the generative-text service as a last-resort knowledge
// source. Its output is prose, not verified data: the synthesizer refuses to
// let it be the only source behind numeric or contact facts.
type Adapter struct {
	cfg    config.GenAIConfig
	client *http.Client
	logger logger.Logger
}

func New(cfg config.GenAIConfig, log logger.Logger) *Adapter {
	return &Adapter{
		cfg: cfg,
		// No client timeout; the per-call context bounds every attempt.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"source": SourceID}),
	}
}

func (a *Adapter) ID() string           { return SourceID }
func (a *Adapter) TrustWeight() float64 { return trustWeight }
func (a *Adapter) RealTime() bool       { return true }

func (a *Adapter) Search(ctx context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error) {
	policy := adapters.RetryPolicy{
		MaxRetries:     a.cfg.MaxRetries,
		InitialBackoff: 100,
	}
	return a.Generate(ctx, q, policy)
}

// Generate runs the generation request under an explicit retry policy.
// Retries are bounded per call so they compose with the caller's timeout
// instead of accumulating in instance state.
func (a *Adapter) Generate(ctx context.Context, q models.ClassifiedQuery, policy adapters.RetryPolicy) ([]models.SourceResult, error) {
	requestBody := map[string]interface{}{
		"prompt":      a.buildPrompt(q),
		"max_tokens":  a.cfg.MaxTokens,
		"temperature": a.cfg.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(policy.InitialBackoff*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, adapters.ErrAdapterTimeout
			}
		}

		// Fresh request per attempt; the body reader is consumed by Do.
		req, err := http.NewRequestWithContext(ctx, "POST", a.cfg.BaseURL+"/api/ai/generate", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", adapters.ErrAdapterUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if a.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
		}

		resp, lastErr = a.client.Do(req)
		if ctx.Err() != nil {
			return nil, adapters.ErrAdapterTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", adapters.ErrAdapterUnavailable, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", adapters.ErrAdapterUnavailable)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", adapters.ErrAdapterUnavailable, err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		return nil, nil
	}

	// Clamp out-of-range confidence reported by the model
	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	a.logger.Info("generation completed", map[string]interface{}{
		"confidence": apiResponse.Confidence,
	})

	return []models.SourceResult{{
		SourceID:      SourceID,
		Title:         "Resposta gerada",
		Body:          apiResponse.Text,
		RawConfidence: apiResponse.Confidence,
		IsRealTime:    true,
		RetrievedAt:   time.Now(),
		Metadata: map[string]interface{}{
			"generated": true,
		},
	}}, nil
}

func (a *Adapter) buildPrompt(q models.ClassifiedQuery) string {
	var parts []string

	parts = append(parts, "Você é o Guatá, assistente de turismo de Mato Grosso do Sul. Responda apenas com informações gerais e verificáveis.")
	parts = append(parts, fmt.Sprintf("\nPergunta: %s", q.Text))

	if len(q.History) > 0 {
		parts = append(parts, "\nConversa anterior:")
		for _, h := range q.History {
			parts = append(parts, "- "+h)
		}
	}

	parts = append(parts, "\nInstruções:")
	parts = append(parts, "- Não invente preços, horários, endereços ou telefones")
	parts = append(parts, "- Se não souber, diga claramente")
	parts = append(parts, "- Responda em português, de forma concisa e acolhedora")
	parts = append(parts, "- Retorne um score de confiança entre 0.0 e 1.0")

	return strings.Join(parts, "\n")
}
