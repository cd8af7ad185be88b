// internal/adapters/partners/partners_test.go
package partners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a := New(config.PartnersConfig{MaxResults: 5}, db, logger.NewNoOpLogger())
	return a, mock
}

func lodgingQuery(keywords ...string) models.ClassifiedQuery {
	return models.ClassifiedQuery{
		Query:    models.Query{Text: "onde ficar", SessionID: "sess-1", Timestamp: time.Now()},
		Topic:    models.TopicLodging,
		Keywords: keywords,
	}
}

func partnerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "category", "city", "address", "phone", "website", "updated_at",
	})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAdapter_Search_ReturnsPartners(t *testing.T) {
	a, mock := setupMockDB(t)

	updated := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, name, description, category, city, address, phone, website, updated_at`).
		WillReturnRows(partnerRows().
			AddRow("p1", "Pousada Olho d'Água", "Pousada à beira do rio", "pousada", "Bonito",
				"Rodovia Bonito-Jardim km 1", "(67) 3255-1430", "https://pousada.example.com", updated))

	results, err := a.Search(context.Background(), lodgingQuery("pousada", "bonito"))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceID, results[0].SourceID)
	assert.Equal(t, "Pousada Olho d'Água", results[0].Title)
	assert.Contains(t, results[0].Body, "Telefone: (67) 3255-1430")
	assert.Equal(t, "Bonito", results[0].Metadata["city"])
	assert.Equal(t, updated, results[0].RetrievedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Search_CityKeywordNarrowsQuery(t *testing.T) {
	a, mock := setupMockDB(t)

	mock.ExpectQuery(`AND city ILIKE`).
		WithArgs("hotel", "pousada", "%bonito%", 5).
		WillReturnRows(partnerRows())

	_, err := a.Search(context.Background(), lodgingQuery("hotel", "bonito"))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Search_NoMatchIsNotAnError(t *testing.T) {
	a, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM tourism_partners`).WillReturnRows(partnerRows())

	results, err := a.Search(context.Background(), lodgingQuery("hotel"))

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAdapter_Search_UncoveredTopicReturnsNothing(t *testing.T) {
	a, _ := setupMockDB(t)

	q := models.ClassifiedQuery{
		Query: models.Query{Text: "vai chover?", SessionID: "sess-1", Timestamp: time.Now()},
		Topic: models.TopicWeather,
	}
	results, err := a.Search(context.Background(), q)

	require.NoError(t, err)
	assert.Empty(t, results)
}

// ==========================
// Error Handling Tests
// ==========================

func TestAdapter_Search_QueryErrorReturnsUnavailable(t *testing.T) {
	a, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM tourism_partners`).
		WillReturnError(errors.New("connection refused"))

	_, err := a.Search(context.Background(), lodgingQuery("hotel"))

	assert.True(t, errors.Is(err, adapters.ErrAdapterUnavailable))
}

func TestAdapter_Search_NilDBUnavailable(t *testing.T) {
	a := New(config.PartnersConfig{MaxResults: 5}, nil, logger.NewNoOpLogger())

	_, err := a.Search(context.Background(), lodgingQuery("hotel"))

	assert.True(t, errors.Is(err, adapters.ErrAdapterUnavailable))
}
