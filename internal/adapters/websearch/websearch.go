// internal/adapters/websearch/websearch.go
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

const (
	SourceID    = "websearch"
	trustWeight = 0.7
)

var whitespace = regexp.MustCompile(`\s+`)

// Adapter queries a CSE-style web search API and normalizes its items into
// SourceResults. Results are deduplicated by URL, filtered by relevance and
// capped at MaxResults.
type Adapter struct {
	cfg    config.WebSearchConfig
	client *http.Client
	logger logger.Logger
}

func New(cfg config.WebSearchConfig, log logger.Logger) *Adapter {
	return &Adapter{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		},
		logger: log.With(map[string]interface{}{"source": SourceID}),
	}
}

func (a *Adapter) ID() string           { return SourceID }
func (a *Adapter) TrustWeight() float64 { return trustWeight }
func (a *Adapter) RealTime() bool       { return true }

func (a *Adapter) Search(ctx context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error) {
	searchURL := a.buildSearchURL(a.buildQuery(q))

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", adapters.ErrAdapterUnavailable, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() != nil ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			return nil, adapters.ErrAdapterTimeout
		}
		return nil, fmt.Errorf("%w: %v", adapters.ErrAdapterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search API returned %d", adapters.ErrAdapterUnavailable, resp.StatusCode)
	}

	var apiResponse struct {
		Items []searchItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", adapters.ErrAdapterUnavailable, err)
	}

	results := a.processItems(apiResponse.Items)

	a.logger.Info("web search completed", map[string]interface{}{
		"resultCount": len(results),
	})

	return results, nil
}

type searchItem struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Mime    string `json:"mime"`
}

func (a *Adapter) buildQuery(q models.ClassifiedQuery) string {
	query := q.Text
	if q.Topic != models.TopicGeneral {
		query += " mato grosso do sul"
	}
	return whitespace.ReplaceAllString(strings.TrimSpace(query), " ")
}

func (a *Adapter) buildSearchURL(query string) string {
	baseURL, _ := url.Parse(a.cfg.BaseURL)
	params := url.Values{}
	params.Add("key", a.cfg.APIKey)
	params.Add("cx", a.cfg.EngineID)
	params.Add("q", query)
	params.Add("num", fmt.Sprintf("%d", a.cfg.MaxResults))
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func (a *Adapter) processItems(items []searchItem) []models.SourceResult {
	seen := make(map[string]bool)
	now := time.Now()

	var results []models.SourceResult
	for _, item := range items {
		// Skip non-HTML
		if item.Mime != "" && !strings.Contains(item.Mime, "html") {
			continue
		}

		// Dedupe by URL
		if seen[item.Link] {
			continue
		}
		seen[item.Link] = true

		relevance := 0.6
		if strings.Contains(item.Link, ".gov") || strings.Contains(item.Link, ".edu") {
			relevance += 0.2
		}
		title := strings.ToLower(item.Title)
		if strings.Contains(title, "official") || strings.Contains(title, "oficial") {
			relevance += 0.1
		}

		if relevance < a.cfg.MinRelevance {
			continue
		}

		results = append(results, models.SourceResult{
			SourceID:      SourceID,
			Title:         item.Title,
			Body:          item.Snippet,
			RawConfidence: relevance,
			URL:           item.Link,
			IsRealTime:    true,
			RetrievedAt:   now,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RawConfidence > results[j].RawConfidence
	})

	if len(results) > a.cfg.MaxResults {
		results = results[:a.cfg.MaxResults]
	}

	return results
}
