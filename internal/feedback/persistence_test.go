// internal/feedback/persistence_test.go
package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-router/internal/common/database"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockPostgres(t *testing.T) (*database.PostgresClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &database.PostgresClient{DB: db}, mock
}

// ==========================
// Save Tests
// ==========================

func TestStore_SaveToPostgres_WritesSnapshotInTransaction(t *testing.T) {
	s := NewStore(DefaultFactShapes(), logger.NewNoOpLogger())
	t.Cleanup(func() { s.Close() })

	s.RegisterFeedback("sess-1", "q-1", "Quanto custa a Gruta do Lago Azul?",
		"A entrada custa 40 reais.", models.RatingPositive, "")

	pg, mock := setupMockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO feedback_records`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.SaveToPostgres(context.Background(), pg)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveToPostgres_RollsBackOnFailure(t *testing.T) {
	s := NewStore(DefaultFactShapes(), logger.NewNoOpLogger())
	t.Cleanup(func() { s.Close() })

	s.RegisterFeedback("sess-1", "q-1", "Que horas abre a Feira Central?",
		"Abre às 16h00.", models.RatingPositive, "")

	pg, mock := setupMockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO feedback_records`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.SaveToPostgres(context.Background(), pg)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Load Tests
// ==========================

func TestStore_LoadFromPostgres_ReplacesState(t *testing.T) {
	s := NewStore(DefaultFactShapes(), logger.NewNoOpLogger())
	t.Cleanup(func() { s.Close() })

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pg, mock := setupMockPostgres(t)
	mock.ExpectQuery(`FROM feedback_records`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "question_id", "question", "answer",
			"rating", "correction", "created_at", "processed",
		}).AddRow("fb-1", "sess-9", "q-9", "Qual o telefone do Bioparque?",
			"O telefone é (67) 3318-6000.", "negative", "O telefone é (67) 3318-6025.", created, true))
	mock.ExpectQuery(`FROM learning_patterns`).
		WillReturnRows(sqlmock.NewRows([]string{
			"key", "fact_shape", "match_text", "correction", "confidence",
			"usage_count", "question_id", "last_used_at", "created_at",
		}).AddRow("phone:(67) 3318-6000", "phone", "(67) 3318-6000",
			"(67) 3318-6025", 0.8, 2, "q-9", created, created))

	err := s.LoadFromPostgres(context.Background(), pg)

	require.NoError(t, err)
	export := s.ExportLearningData()
	require.Len(t, export.Feedback, 1)
	assert.Equal(t, models.RatingNegative, export.Feedback[0].Rating)
	require.Len(t, export.Patterns, 1)
	assert.Equal(t, "phone:(67) 3318-6000", export.Patterns[0].Key)
	assert.InDelta(t, 0.8, export.Patterns[0].Confidence, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadFromPostgres_QueryErrorLeavesStateUntouched(t *testing.T) {
	s := NewStore(DefaultFactShapes(), logger.NewNoOpLogger())
	t.Cleanup(func() { s.Close() })

	s.RegisterFeedback("sess-1", "q-1", "Onde fica o aquário?",
		"Fica em Campo Grande.", models.RatingPositive, "")

	pg, mock := setupMockPostgres(t)
	mock.ExpectQuery(`FROM feedback_records`).
		WillReturnError(errors.New("relation does not exist"))

	err := s.LoadFromPostgres(context.Background(), pg)

	assert.Error(t, err)
	assert.Len(t, s.ExportLearningData().Feedback, 1)
}
