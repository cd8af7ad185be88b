// internal/adapters/partners/partners.go
package partners

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tourism-router/internal/adapters"
	"tourism-router/internal/common/config"
	"tourism-router/internal/common/logger"
	"tourism-router/internal/models"
)

const (
	SourceID    = "partners"
	trustWeight = 0.75
)

// topicCategories maps query topics to partner directory categories.
// Topics without an entry have no partner coverage and return no results.
var topicCategories = map[models.Topic][]string{
	models.TopicLodging:      {"hotel", "pousada"},
	models.TopicFood:         {"restaurante"},
	models.TopicDestinations: {"agencia", "passeio"},
	models.TopicTransport:    {"transporte"},
	models.TopicShopping:     {"comercio"},
}

// knownCities narrows the SQL match when the classifier extracted a city
// keyword.
var knownCities = []string{
	"bonito", "campo grande", "corumbá", "corumba", "três lagoas",
	"tres lagoas", "dourados", "miranda", "aquidauana", "jardim",
	"ponta porã", "ponta pora", "porto murtinho",
}

// Adapter reads the verified partner directory (hotels, restaurants,
// agencies) from Postgres. An empty result set is not an error: most topics
// simply have no partner coverage.
type Adapter struct {
	cfg    config.PartnersConfig
	db     *sql.DB
	logger logger.Logger
}

func New(cfg config.PartnersConfig, db *sql.DB, log logger.Logger) *Adapter {
	return &Adapter{
		cfg:    cfg,
		db:     db,
		logger: log.With(map[string]interface{}{"source": SourceID}),
	}
}

func (a *Adapter) ID() string           { return SourceID }
func (a *Adapter) TrustWeight() float64 { return trustWeight }
func (a *Adapter) RealTime() bool       { return false }

func (a *Adapter) Search(ctx context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error) {
	if a.db == nil {
		return nil, adapters.ErrAdapterUnavailable
	}

	categories, ok := topicCategories[q.Topic]
	if !ok {
		return nil, nil
	}

	query, args := a.buildQuery(categories, a.matchCity(q))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapters.ErrAdapterTimeout
		}
		return nil, fmt.Errorf("%w: partners query: %v", adapters.ErrAdapterUnavailable, err)
	}
	defer rows.Close()

	var results []models.SourceResult
	for rows.Next() {
		var (
			id, name, description, category, city string
			address, phone, website               sql.NullString
			updatedAt                             time.Time
		)
		if err := rows.Scan(&id, &name, &description, &category, &city, &address, &phone, &website, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: partners scan: %v", adapters.ErrAdapterUnavailable, err)
		}

		body := description
		if address.Valid && address.String != "" {
			body += " Endereço: " + address.String + "."
		}
		if phone.Valid && phone.String != "" {
			body += " Telefone: " + phone.String + "."
		}

		results = append(results, models.SourceResult{
			SourceID:      SourceID,
			Title:         name,
			Body:          body,
			RawConfidence: 0.8,
			URL:           website.String,
			IsRealTime:    false,
			RetrievedAt:   updatedAt,
			Metadata: map[string]interface{}{
				"partnerId": id,
				"category":  category,
				"city":      city,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: partners rows: %v", adapters.ErrAdapterUnavailable, err)
	}

	a.logger.Info("partner directory queried", map[string]interface{}{
		"topic":       string(q.Topic),
		"resultCount": len(results),
	})

	return results, nil
}

func (a *Adapter) buildQuery(categories []string, city string) (string, []interface{}) {
	placeholders := make([]string, len(categories))
	args := make([]interface{}, 0, len(categories)+2)
	for i, c := range categories {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, c)
	}

	query := `SELECT id, name, description, category, city, address, phone, website, updated_at
	          FROM tourism_partners
	          WHERE verified = true AND category IN (` + strings.Join(placeholders, ",") + `)`

	if city != "" {
		query += fmt.Sprintf(" AND city ILIKE $%d", len(args)+1)
		args = append(args, "%"+city+"%")
	}

	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d", len(args)+1)
	args = append(args, a.cfg.MaxResults)

	return query, args
}

func (a *Adapter) matchCity(q models.ClassifiedQuery) string {
	for _, kw := range q.Keywords {
		for _, city := range knownCities {
			if kw == city {
				return city
			}
		}
	}
	return ""
}
