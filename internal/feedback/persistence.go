// internal/feedback/persistence.go
package feedback

import (
	"context"
	"database/sql"
	"fmt"

	"tourism-router/internal/common/database"
	"tourism-router/internal/models"
)

// Persistence is optional. When no Postgres is configured the store runs
// purely in memory; Save/Load are only wired when a client exists.

const (
	upsertFeedbackSQL = `
		INSERT INTO feedback_records
			(id, session_id, question_id, question, answer, rating, correction, created_at, processed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET processed = EXCLUDED.processed`

	upsertPatternSQL = `
		INSERT INTO learning_patterns
			(key, fact_shape, match_text, correction, confidence, usage_count, question_id, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE SET
			correction = EXCLUDED.correction,
			confidence = EXCLUDED.confidence,
			usage_count = EXCLUDED.usage_count,
			last_used_at = EXCLUDED.last_used_at`

	selectFeedbackSQL = `
		SELECT id, session_id, question_id, question, answer, rating, correction, created_at, processed
		FROM feedback_records ORDER BY created_at`

	selectPatternsSQL = `
		SELECT key, fact_shape, match_text, correction, confidence, usage_count, question_id, last_used_at, created_at
		FROM learning_patterns`
)

// SaveToPostgres writes the current snapshot in a single transaction.
// A failed save rolls back and never touches in-memory state; the caller
// decides whether to retry.
func (s *Store) SaveToPostgres(ctx context.Context, db *database.PostgresClient) error {
	export := s.ExportLearningData()

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, r := range export.Feedback {
			_, err := tx.ExecContext(ctx, upsertFeedbackSQL,
				r.ID, r.SessionID, r.QuestionID, r.Question, r.Answer,
				string(r.Rating), r.Correction, r.CreatedAt, r.Processed)
			if err != nil {
				return fmt.Errorf("save feedback record %s: %w", r.ID, err)
			}
		}

		for _, p := range export.Patterns {
			_, err := tx.ExecContext(ctx, upsertPatternSQL,
				p.Key, p.FactShape, p.MatchText, p.Correction, p.Confidence,
				p.UsageCount, p.QuestionID, p.LastUsedAt, p.CreatedAt)
			if err != nil {
				return fmt.Errorf("save pattern %s: %w", p.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("learning data persisted", map[string]interface{}{
		"feedback": len(export.Feedback),
		"patterns": len(export.Patterns),
	})

	return nil
}

// LoadFromPostgres replaces in-memory state with the persisted snapshot.
// Meant for startup, before the store takes traffic.
func (s *Store) LoadFromPostgres(ctx context.Context, db *database.PostgresClient) error {
	rows, err := db.Query(ctx, selectFeedbackSQL)
	if err != nil {
		return fmt.Errorf("load feedback records: %w", err)
	}
	defer rows.Close()

	var records []*models.FeedbackRecord
	for rows.Next() {
		var r models.FeedbackRecord
		var rating string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.QuestionID, &r.Question, &r.Answer,
			&rating, &r.Correction, &r.CreatedAt, &r.Processed); err != nil {
			return fmt.Errorf("scan feedback record: %w", err)
		}
		r.Rating = models.Rating(rating)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load feedback records: %w", err)
	}

	patternRows, err := db.Query(ctx, selectPatternsSQL)
	if err != nil {
		return fmt.Errorf("load patterns: %w", err)
	}
	defer patternRows.Close()

	var patterns []*models.LearningPattern
	for patternRows.Next() {
		var p models.LearningPattern
		if err := patternRows.Scan(&p.Key, &p.FactShape, &p.MatchText, &p.Correction,
			&p.Confidence, &p.UsageCount, &p.QuestionID, &p.LastUsedAt, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, &p)
	}
	if err := patternRows.Err(); err != nil {
		return fmt.Errorf("load patterns: %w", err)
	}

	s.recordsMu.Lock()
	s.records = records
	s.recordsMu.Unlock()

	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		shard.patterns = make(map[string]*models.LearningPattern)
		shard.mu.Unlock()
	}
	for _, p := range patterns {
		shard := s.shard(p.Key)
		shard.mu.Lock()
		shard.patterns[p.Key] = p
		shard.mu.Unlock()
	}

	s.logger.Info("learning data loaded", map[string]interface{}{
		"feedback": len(records),
		"patterns": len(patterns),
	})

	return nil
}
