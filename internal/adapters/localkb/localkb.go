// internal/adapters/localkb/localkb.go
package localkb

import (
	"context"
	"sort"
	"strings"

	"tourism-router/internal/models"
)

const (
	SourceID    = "localkb"
	trustWeight = 0.95
)

// Adapter serves the in-memory curated knowledge base. It is always
// available and has no network latency, so it ignores deadlines on ctx.
type Adapter struct {
	entries    []Entry
	maxResults int
}

func New(maxResults int) *Adapter {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Adapter{
		entries:    defaultEntries,
		maxResults: maxResults,
	}
}

// NewWithEntries builds an adapter over a custom entry set.
func NewWithEntries(entries []Entry, maxResults int) *Adapter {
	a := New(maxResults)
	a.entries = entries
	return a
}

func (a *Adapter) ID() string           { return SourceID }
func (a *Adapter) TrustWeight() float64 { return trustWeight }
func (a *Adapter) RealTime() bool       { return false }

func (a *Adapter) Search(_ context.Context, q models.ClassifiedQuery) ([]models.SourceResult, error) {
	type scoredEntry struct {
		entry Entry
		score float64
	}

	var matches []scoredEntry
	for _, entry := range a.entries {
		score := a.scoreEntry(entry, q)
		if score > 0 {
			matches = append(matches, scoredEntry{entry: entry, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > a.maxResults {
		matches = matches[:a.maxResults]
	}

	results := make([]models.SourceResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.SourceResult{
			SourceID:      SourceID,
			Title:         m.entry.Title,
			Body:          m.entry.Content,
			RawConfidence: m.score,
			URL:           m.entry.Source,
			IsRealTime:    false,
			RetrievedAt:   m.entry.UpdatedAt,
			Metadata: map[string]interface{}{
				"entryId":  m.entry.ID,
				"category": m.entry.Category,
			},
		})
	}

	return results, nil
}

// scoreEntry counts query keywords found in the entry's keyword list and
// content; a keyword in the title counts double. The raw score divides by 3
// and caps at 1.0, so three plain keyword hits already mean full confidence.
func (a *Adapter) scoreEntry(entry Entry, q models.ClassifiedQuery) float64 {
	title := strings.ToLower(entry.Title)
	content := strings.ToLower(entry.Content)

	hits := 0.0
	for _, kw := range q.Keywords {
		switch {
		case strings.Contains(title, kw):
			hits += 2
		case containsKeyword(entry.Keywords, kw) || strings.Contains(content, kw):
			hits++
		}
	}

	score := hits / 3.0
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func containsKeyword(keywords []string, kw string) bool {
	for _, k := range keywords {
		if k == kw || strings.Contains(k, kw) {
			return true
		}
	}
	return false
}
