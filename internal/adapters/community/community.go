// internal/adapters/community/community.go
package community

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

const (
	SourceID    = "community"
	trustWeight = 0.4
)

// Suggestion is one admin-approved community contribution, stored as JSON
// in a per-topic Redis list.
type Suggestion struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Author     string    `json:"author,omitempty"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// Adapter serves community suggestions from Redis. The lists hold only
// approved entries; moderation happens upstream.
type Adapter struct {
	cfg         config.CommunityConfig
	redisClient *redis.Client
	logger      logger.Logger
}

func New(cfg config.CommunityConfig, redisClient *redis.Client, log logger.Logger) *Adapter {
	return &Adapter{
		cfg:         cfg,
		redisClient: redisClient,
		logger:      log.With(map[string]interface{}{"source": SourceID}),
	}
}

func (a *Adapter) ID() string           { return SourceID }
func (a *Adapter) TrustWeight() float64 { return trustWeight }
func (a *Adapter) RealTime() bool       { return false }

func (a *Adapter) Search(ctx context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error) {
	if a.redisClient == nil {
		return nil, adapters.ErrAdapterUnavailable
	}

	key := a.topicKey(q.Topic)
	entries, err := a.redisClient.LRange(ctx, key, 0, int64(a.cfg.MaxResults-1)).Result()
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapters.ErrAdapterTimeout
		}
		return nil, fmt.Errorf("%w: community lrange: %v", adapters.ErrAdapterUnavailable, err)
	}

	var results []models.SourceResult
	for _, raw := range entries {
		var s Suggestion
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			a.logger.Warn("skipping malformed suggestion", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			continue
		}

		results = append(results, models.SourceResult{
			SourceID:      SourceID,
			Title:         s.Title,
			Body:          s.Text,
			RawConfidence: 0.6,
			IsRealTime:    false,
			RetrievedAt:   s.ApprovedAt,
			Metadata: map[string]interface{}{
				"suggestionId": s.ID,
				"author":       s.Author,
			},
		})
	}

	return results, nil
}

func (a *Adapter) topicKey(topic models.Topic) string {
	return a.cfg.KeyPrefix + string(topic)
}
