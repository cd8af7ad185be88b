// internal/session/store.go
package session

import (
	"hash/fnv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

const (
	recentTopicsLimit = 5
	lockShardCount    = 16
)

// Update carries what one answered query contributes back to its session.
type Update struct {
	Topic       models.Topic
	Mood        models.Mood
	Preferences map[string]string
}

// Store keeps per-conversation context with an inactivity TTL. Expired
// sessions are swept in the background; touching a session resets its TTL.
// Mutations to one session are serialized through sharded locks so two
// concurrent updates cannot overwrite each other.
type Store struct {
	cache   *gocache.Cache
	timeout time.Duration
	locks   [lockShardCount]sync.Mutex
	logger  logger.Logger
}

func NewStore(cfg config.SessionConfig, log logger.Logger) *Store {
	timeout := time.Duration(cfg.InactivityTimeout) * time.Millisecond
	sweep := time.Duration(cfg.SweepInterval) * time.Millisecond

	return &Store{
		cache:   gocache.New(timeout, sweep),
		timeout: timeout,
		logger:  log.With(map[string]interface{}{"component": "session-store"}),
	}
}

func (s *Store) lock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockShardCount]
}

// GetOrCreate returns the live context for sessionID, creating a fresh one
// when none exists or the previous one expired.
func (s *Store) GetOrCreate(sessionID string) models.SessionContext {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	return s.getOrCreate(sessionID)
}

func (s *Store) getOrCreate(sessionID string) models.SessionContext {
	if raw, ok := s.cache.Get(sessionID); ok {
		ctx := raw.(models.SessionContext)
		if !ctx.IsExpired(s.timeout) {
			return ctx
		}
	}

	ctx := models.SessionContext{
		SessionID:      sessionID,
		Mood:           models.MoodNeutral,
		Preferences:    map[string]string{},
		LastActivityAt: time.Now(),
	}
	s.cache.Set(sessionID, ctx, s.timeout)

	s.logger.Debug("session created", map[string]interface{}{"sessionId": sessionID})
	return ctx
}

// Touch folds one answered query into the session and resets its TTL.
// Recent topics keep at most the last five, oldest first; consecutive
// repeats are not duplicated.
func (s *Store) Touch(sessionID string, update Update) models.SessionContext {
	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	ctx := s.getOrCreate(sessionID)

	topic := string(update.Topic)
	if topic != "" && ctx.LastTopic() != topic {
		ctx.RecentTopics = append(ctx.RecentTopics, topic)
		if len(ctx.RecentTopics) > recentTopicsLimit {
			ctx.RecentTopics = ctx.RecentTopics[len(ctx.RecentTopics)-recentTopicsLimit:]
		}
	}

	if update.Mood != "" {
		ctx.Mood = update.Mood
	}

	for k, v := range update.Preferences {
		if ctx.Preferences == nil {
			ctx.Preferences = map[string]string{}
		}
		ctx.Preferences[k] = v
	}

	ctx.LastActivityAt = time.Now()
	s.cache.Set(sessionID, ctx, s.timeout)

	return ctx
}

// Delete drops a session immediately.
func (s *Store) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Len reports how many sessions are currently held, expired ones included
// until the next sweep.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
