// internal/feedback/store.go
package feedback

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tourism-router/internal/common/logger"
	"tourism-router/internal/common/metrics"
	"tourism-router/internal/models"
)

const (
	// a pattern is created at the activation threshold so a single
	// correction is immediately eligible for use
	newPatternConfidence = 0.7
	reinforcementStep    = 0.1
	maxConfidence        = 1.0

	patternShards  = 16
	extractQueueSz = 256
)

// Store holds feedback records and the learning patterns extracted from
// negative corrections. Pattern mutations are serialized per shard, never
// behind one global lock; extraction runs on its own goroutine so
// RegisterFeedback always returns immediately.
type Store struct {
	shapes []FactShape
	logger logger.Logger

	recordsMu sync.RWMutex
	records   []*models.FeedbackRecord

	shards [patternShards]patternShard

	correctionsMu      sync.Mutex
	correctionsApplied int

	extractQueue chan *models.FeedbackRecord
	done         chan struct{}
	wg           sync.WaitGroup
}

type patternShard struct {
	mu       sync.RWMutex
	patterns map[string]*models.LearningPattern
}

func NewStore(shapes []FactShape, log logger.Logger) *Store {
	if len(shapes) == 0 {
		shapes = DefaultFactShapes()
	}

	s := &Store{
		shapes:       shapes,
		logger:       log.With(map[string]interface{}{"component": "feedback-store"}),
		extractQueue: make(chan *models.FeedbackRecord, extractQueueSz),
		done:         make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i].patterns = make(map[string]*models.LearningPattern)
	}

	s.wg.Add(1)
	go s.extractLoop()

	return s
}

// Close stops the extraction worker after draining queued records.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

// RegisterFeedback records one piece of feedback and returns its id. It
// never fails: extraction of negative corrections happens asynchronously
// and its errors stay inside the store.
func (s *Store) RegisterFeedback(sessionID, questionID, question, answer string, rating models.Rating, correction string) string {
	record := &models.FeedbackRecord{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		QuestionID: questionID,
		Question:   question,
		Answer:     answer,
		Rating:     rating,
		Correction: correction,
		CreatedAt:  time.Now(),
	}

	s.recordsMu.Lock()
	s.records = append(s.records, record)
	s.recordsMu.Unlock()

	metrics.FeedbackReceived.WithLabelValues(string(rating)).Inc()

	if rating == models.RatingNegative && correction != "" {
		select {
		case s.extractQueue <- record:
		default:
			s.logger.Warn("extraction queue full, skipping record", map[string]interface{}{
				"feedbackId": record.ID,
			})
		}
	}

	return record.ID
}

func (s *Store) extractLoop() {
	defer s.wg.Done()
	for {
		select {
		case record := <-s.extractQueue:
			s.extract(record)
		case <-s.done:
			// drain whatever is left before stopping
			for {
				select {
				case record := <-s.extractQueue:
					s.extract(record)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) extract(record *models.FeedbackRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pattern extraction panicked", map[string]interface{}{
				"feedbackId": record.ID,
				"panic":      r,
			})
		}
	}()

	s.ExtractPatterns(record)
}

// ExtractPatterns diffs the answer against the correction per fact shape.
// When a shape matches in both and the matched text differs, the answer's
// version becomes (or reinforces) a pattern mapping to the corrected text.
func (s *Store) ExtractPatterns(record *models.FeedbackRecord) {
	for _, shape := range s.shapes {
		answerMatch := shape.Pattern.FindString(record.Answer)
		correctionMatch := shape.Pattern.FindString(record.Correction)

		if answerMatch == "" || correctionMatch == "" {
			continue
		}
		if strings.EqualFold(answerMatch, correctionMatch) {
			continue
		}

		s.upsertPattern(shape.Name, answerMatch, correctionMatch, record.QuestionID)
	}

	s.recordsMu.Lock()
	record.Processed = true
	s.recordsMu.Unlock()
}

func (s *Store) upsertPattern(shapeName, matchText, correction, questionID string) {
	key := shapeName + ":" + strings.ToLower(matchText)
	shard := s.shard(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := time.Now()
	if p, ok := shard.patterns[key]; ok {
		p.Confidence = math.Min(p.Confidence+reinforcementStep, maxConfidence)
		p.UsageCount++
		p.Correction = correction
		p.LastUsedAt = now
		return
	}

	shard.patterns[key] = &models.LearningPattern{
		Key:        key,
		FactShape:  shapeName,
		MatchText:  matchText,
		Correction: correction,
		Confidence: newPatternConfidence,
		UsageCount: 1,
		QuestionID: questionID,
		LastUsedAt: now,
		CreatedAt:  now,
	}
}

func (s *Store) shard(key string) *patternShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &s.shards[h.Sum32()%patternShards]
}

// ActivePatterns snapshots every pattern at or above the activation
// threshold, ready for the correction filter.
func (s *Store) ActivePatterns() []models.LearningPattern {
	var active []models.LearningPattern
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		for _, p := range shard.patterns {
			if p.Confidence >= newPatternConfidence {
				active = append(active, *p)
			}
		}
		shard.mu.RUnlock()
	}

	sort.Slice(active, func(i, j int) bool { return active[i].Key < active[j].Key })
	return active
}

// RecordPatternUse bumps a pattern's usage after the synthesizer applied it.
func (s *Store) RecordPatternUse(key string) {
	shard := s.shard(key)
	shard.mu.Lock()
	if p, ok := shard.patterns[key]; ok {
		p.UsageCount++
		p.LastUsedAt = time.Now()
	}
	shard.mu.Unlock()

	s.correctionsMu.Lock()
	s.correctionsApplied++
	s.correctionsMu.Unlock()
}

// GetPattern returns a copy of the pattern stored under key.
func (s *Store) GetPattern(key string) (models.LearningPattern, bool) {
	shard := s.shard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if p, ok := shard.patterns[key]; ok {
		return *p, true
	}
	return models.LearningPattern{}, false
}

// GetStats aggregates counts by rating plus pattern totals.
func (s *Store) GetStats() models.FeedbackStats {
	stats := models.FeedbackStats{}

	s.recordsMu.RLock()
	stats.TotalFeedback = len(s.records)
	for _, r := range s.records {
		switch r.Rating {
		case models.RatingPositive:
			stats.PositiveFeedback++
		case models.RatingNegative:
			stats.NegativeFeedback++
		case models.RatingNeutral:
			stats.NeutralFeedback++
		}
	}
	s.recordsMu.RUnlock()

	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		stats.LearningPatterns += len(shard.patterns)
		shard.mu.RUnlock()
	}

	s.correctionsMu.Lock()
	stats.CorrectionsApplied = s.correctionsApplied
	s.correctionsMu.Unlock()

	return stats
}

// Cleanup evicts patterns unused for longer than maxAge AND used fewer than
// minUsage times. Both conditions are required: a frequently-used old
// pattern is kept. Returns the number evicted.
func (s *Store) Cleanup(maxAge time.Duration, minUsage int) int {
	cutoff := time.Now().Add(-maxAge)
	evicted := 0

	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		for key, p := range shard.patterns {
			if p.LastUsedAt.Before(cutoff) && p.UsageCount < minUsage {
				delete(shard.patterns, key)
				evicted++
			}
		}
		shard.mu.Unlock()
	}

	if evicted > 0 {
		s.logger.Info("stale patterns evicted", map[string]interface{}{
			"evicted": evicted,
		})
	}

	return evicted
}

// TopPatterns ranks patterns by confidence weighted by usage
// (confidence * ln(usage+1)) and returns the best ones.
func (s *Store) TopPatterns(limit int) []models.LearningPattern {
	all := s.allPatterns()

	sort.Slice(all, func(i, j int) bool {
		wi := all[i].Confidence * math.Log(float64(all[i].UsageCount)+1)
		wj := all[j].Confidence * math.Log(float64(all[j].UsageCount)+1)
		if wi != wj {
			return wi > wj
		}
		return all[i].Key < all[j].Key
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

func (s *Store) allPatterns() []models.LearningPattern {
	var all []models.LearningPattern
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.RLock()
		for _, p := range shard.patterns {
			all = append(all, *p)
		}
		shard.mu.RUnlock()
	}
	return all
}
