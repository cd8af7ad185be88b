package models

import "time"

// SessionContext is short-lived per-conversation state. It is created on the
// first query of a session and discarded after the inactivity timeout; it is
// never shared across sessions.
type SessionContext struct {
	SessionID      string            `json:"sessionId"`
	RecentTopics   []string          `json:"recentTopics,omitempty"`
	Mood           Mood              `json:"mood"`
	Preferences    map[string]string `json:"preferences,omitempty"`
	LastActivityAt time.Time         `json:"lastActivityAt"`
}

// IsExpired checks the context against an inactivity timeout.
func (s SessionContext) IsExpired(timeout time.Duration) bool {
	return time.Since(s.LastActivityAt) > timeout
}

// LastTopic returns the most recent topic, or empty when none was recorded.
func (s SessionContext) LastTopic() string {
	if len(s.RecentTopics) == 0 {
		return ""
	}
	return s.RecentTopics[len(s.RecentTopics)-1]
}
