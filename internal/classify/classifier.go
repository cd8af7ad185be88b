// internal/classify/classifier.go
package classify

import (
	"strings"

	"tourism-router/internal/models"
)

// Classifier turns raw question text into a ClassifiedQuery using keyword
// dictionaries and priority-ordered lexical rules. It performs no I/O and
// has no failure mode: an unmatched question gets the general/neutral
// classification.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify derives topic, intent, mood, urgency, conversation context and
// keywords for a query. The session's recent topics break ties when two
// topics score equally.
func (c *Classifier) Classify(q models.Query, sess models.SessionContext) models.ClassifiedQuery {
	text := normalize(q.Text)

	topic, matched := c.resolveTopic(text, sess)
	mood, urgency := c.resolveMood(text)
	intent := c.resolveIntent(text)

	ctx := models.ContextNew
	if len(q.History) > 0 {
		ctx = models.ContextContinuing
	}

	return models.ClassifiedQuery{
		Query:    q,
		Topic:    topic,
		Intent:   intent,
		Mood:     mood,
		Urgency:  urgency,
		Context:  ctx,
		Keywords: c.extractKeywords(text, matched),
	}
}

func (c *Classifier) resolveTopic(text string, sess models.SessionContext) (models.Topic, []string) {
	bestTopic := models.TopicGeneral
	bestScore := 0
	var union []string
	allMatched := make(map[models.Topic][]string)

	for _, topic := range topicOrder {
		var matched []string
		for _, term := range topicTerms[topic] {
			if strings.Contains(text, term) {
				matched = append(matched, term)
			}
		}
		allMatched[topic] = matched
		union = append(union, matched...)
		if len(matched) > bestScore {
			bestScore = len(matched)
			bestTopic = topic
		}
	}

	// Session bias: on a tie between the best topic and the session's last
	// topic, the conversation keeps its subject.
	if last := models.Topic(sess.LastTopic()); last != "" && last != bestTopic {
		if len(allMatched[last]) == bestScore && bestScore > 0 {
			bestTopic = last
		}
	}

	return bestTopic, union
}

func (c *Classifier) resolveMood(text string) (models.Mood, models.Urgency) {
	for _, rule := range moodRules {
		for _, term := range rule.terms {
			if strings.Contains(text, term) {
				return rule.mood, rule.urgency
			}
		}
	}
	return models.MoodNeutral, models.UrgencyNormal
}

func (c *Classifier) resolveIntent(text string) models.Intent {
	for _, rule := range intentRules {
		for _, term := range rule.terms {
			if rule.prefixOnly {
				// Short greeting tokens would false-match inside ordinary
				// words ("depois" contains "oi"), so they only count at the
				// start of the question.
				if strings.HasPrefix(text, term) {
					return rule.intent
				}
				continue
			}
			if strings.Contains(text, term) {
				return rule.intent
			}
		}
	}
	return models.IntentInformation
}

// extractKeywords returns the matched dictionary terms plus the remaining
// significant tokens, deduplicated in order of appearance.
func (c *Classifier) extractKeywords(text string, matched []string) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, term := range matched {
		if !seen[term] {
			seen[term] = true
			keywords = append(keywords, term)
		}
	}

	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, "?!.,;:")
		if len(token) < 4 || stopwords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}

	return keywords
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
