package models

import "time"

// Topic is the coarse subject category a query resolves to.
type Topic string

const (
	TopicDestinations   Topic = "destinations"
	TopicLodging        Topic = "lodging"
	TopicFood           Topic = "food"
	TopicEvents         Topic = "events"
	TopicWeather        Topic = "weather"
	TopicTransport      Topic = "transport"
	TopicCulture        Topic = "culture"
	TopicShopping       Topic = "shopping"
	TopicInfrastructure Topic = "infrastructure"
	TopicGeneral        Topic = "general"
)

// Intent describes what the user is trying to get out of the question.
type Intent string

const (
	IntentInformation    Intent = "seeking_information"
	IntentRecommendation Intent = "seeking_recommendation"
	IntentGuidance       Intent = "seeking_guidance"
	IntentGreeting       Intent = "casual_greeting"
)

// Mood is the detected emotional tone of the query.
type Mood string

const (
	MoodNeutral  Mood = "neutral"
	MoodExcited  Mood = "excited"
	MoodUrgent   Mood = "urgent"
	MoodConfused Mood = "confused"
)

// Urgency of the request. Urgent queries get a tighter source selection.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// ConversationContext marks whether a query continues an ongoing session.
type ConversationContext string

const (
	ContextNew        ConversationContext = "new"
	ContextContinuing ConversationContext = "continuing"
)

// Query is the raw incoming question. Immutable once created.
type Query struct {
	Text      string    `json:"text"`
	UserID    string    `json:"userId,omitempty"`
	SessionID string    `json:"sessionId"`
	History   []string  `json:"history,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClassifiedQuery is a Query enriched by the classifier. Derived, never
// mutated after creation.
type ClassifiedQuery struct {
	Query
	Topic    Topic               `json:"topic"`
	Intent   Intent              `json:"intent"`
	Mood     Mood                `json:"mood"`
	Urgency  Urgency             `json:"urgency"`
	Context  ConversationContext `json:"context"`
	Keywords []string            `json:"keywords"`
}

// HasKeyword reports whether the classifier extracted the given keyword.
func (q ClassifiedQuery) HasKeyword(kw string) bool {
	for _, k := range q.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}
