package models

import "time"

// Rating is the user's verdict on an answer.
type Rating string

const (
	RatingPositive Rating = "positive"
	RatingNegative Rating = "negative"
	RatingNeutral  Rating = "neutral"
)

// FeedbackRecord captures one piece of user feedback on an answer.
// Created once; only Processed is flipped afterwards.
type FeedbackRecord struct {
	ID         string    `json:"id" db:"id"`
	SessionID  string    `json:"sessionId" db:"session_id"`
	QuestionID string    `json:"questionId" db:"question_id"`
	Question   string    `json:"question" db:"question"`
	Answer     string    `json:"answer" db:"answer"`
	Rating     Rating    `json:"rating" db:"rating"`
	Correction string    `json:"correction,omitempty" db:"correction"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	Processed  bool      `json:"processed" db:"processed"`
}

// LearningPattern is a reusable (matched text -> correction) rule derived
// from negative feedback. Key is "<factShape>:<matchedText>". QuestionID
// records the feedback that first produced the pattern, for audit.
type LearningPattern struct {
	Key        string    `json:"key" db:"key"`
	FactShape  string    `json:"factShape" db:"fact_shape"`
	MatchText  string    `json:"matchText" db:"match_text"`
	Correction string    `json:"correction" db:"correction"`
	Confidence float64   `json:"confidence" db:"confidence"`
	UsageCount int       `json:"usageCount" db:"usage_count"`
	QuestionID string    `json:"questionId" db:"question_id"`
	LastUsedAt time.Time `json:"lastUsedAt" db:"last_used_at"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// FeedbackStats aggregates the feedback store for dashboards.
type FeedbackStats struct {
	TotalFeedback      int `json:"totalFeedback"`
	PositiveFeedback   int `json:"positiveFeedback"`
	NegativeFeedback   int `json:"negativeFeedback"`
	NeutralFeedback    int `json:"neutralFeedback"`
	CorrectionsApplied int `json:"correctionsApplied"`
	LearningPatterns   int `json:"learningPatterns"`
}

// LearningExport is the structural dump used for backup/restore.
type LearningExport struct {
	Feedback []FeedbackRecord  `json:"feedback"`
	Patterns []LearningPattern `json:"patterns"`
	Stats    FeedbackStats     `json:"stats"`
}
