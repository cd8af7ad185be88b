// internal/feedback/export.go
package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"tourism-router/internal/models"
)

var ErrImportValidationFailed = errors.New("IMPORT_VALIDATION_FAILED")

// exportSchema validates an import payload before any store state is
// touched. A rejected payload leaves the store exactly as it was.
var exportSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"feedback", "patterns"},
	"properties": map[string]interface{}{
		"feedback": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id", "question", "answer", "rating"},
				"properties": map[string]interface{}{
					"id":       map[string]interface{}{"type": "string", "minLength": 1},
					"question": map[string]interface{}{"type": "string"},
					"answer":   map[string]interface{}{"type": "string"},
					"rating": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"positive", "negative", "neutral"},
					},
				},
			},
		},
		"patterns": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"key", "factShape", "matchText", "correction", "confidence"},
				"properties": map[string]interface{}{
					"key":        map[string]interface{}{"type": "string", "minLength": 1},
					"factShape":  map[string]interface{}{"type": "string", "minLength": 1},
					"matchText":  map[string]interface{}{"type": "string", "minLength": 1},
					"correction": map[string]interface{}{"type": "string", "minLength": 1},
					"confidence": map[string]interface{}{
						"type":    "number",
						"minimum": 0,
						"maximum": 1,
					},
					"usageCount": map[string]interface{}{
						"type":    "integer",
						"minimum": 0,
					},
				},
			},
		},
	},
}

// ExportLearningData snapshots the full store as a structural dump. The
// snapshot is consistent per shard, not across shards.
func (s *Store) ExportLearningData() models.LearningExport {
	s.recordsMu.RLock()
	records := make([]models.FeedbackRecord, len(s.records))
	for i, r := range s.records {
		records[i] = *r
	}
	s.recordsMu.RUnlock()

	patterns := s.allPatterns()
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Key < patterns[j].Key })

	return models.LearningExport{
		Feedback: records,
		Patterns: patterns,
		Stats:    s.GetStats(),
	}
}

// ImportLearningData validates raw export JSON and replaces the store's
// records and patterns with the payload's. Counters derived from live use
// (corrections applied) are reset; stats in the payload are ignored and
// recomputed from the imported data.
func (s *Store) ImportLearningData(raw []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(exportSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImportValidationFailed, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %v", ErrImportValidationFailed, errs)
	}

	var export models.LearningExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return fmt.Errorf("%w: %v", ErrImportValidationFailed, err)
	}

	records := make([]*models.FeedbackRecord, len(export.Feedback))
	for i := range export.Feedback {
		r := export.Feedback[i]
		records[i] = &r
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
	for i := range export.Patterns {
		p := export.Patterns[i]
		shard := s.shard(p.Key)
		shard.mu.Lock()
		shard.patterns[p.Key] = &p
		shard.mu.Unlock()
	}

	s.correctionsMu.Lock()
	s.correctionsApplied = 0
	s.correctionsMu.Unlock()

	s.logger.Info("learning data imported", map[string]interface{}{
		"feedback": len(export.Feedback),
		"patterns": len(export.Patterns),
	})

	return nil
}
