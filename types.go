package revise

import "time"

// ReviewState tracks the adaptive spacing state for one (user, item) pair.
// It is created on the first recorded outcome and never deleted; history is
// retained for retention-rate analytics. Invariant: NextReviewAt equals
// LastReviewAt plus IntervalDays.
type ReviewState struct {
	UserID          string    `json:"user_id"`
	ItemID          string    `json:"item_id"`
	RepetitionCount int       `json:"repetition_count"`
	EasinessFactor  float64   `json:"easiness_factor"`
	IntervalDays    int       `json:"interval_days"`
	NextReviewAt    time.Time `json:"next_review_at"`
	LastReviewAt    time.Time `json:"last_review_at"`
	LastRating      int       `json:"last_rating"`
}

// AttemptRecord is a single exercise attempt. Attempts are written by the
// attempt-logging subsystem; the engine only reads recent windows.
type AttemptRecord struct {
	UserID      string    `json:"user_id"`
	ItemID      string    `json:"item_id"`
	AttemptedAt time.Time `json:"attempted_at"`
	IsCorrect   bool      `json:"is_correct"`
}

// Item is content metadata consumed read-only by the engine: the topic an
// item belongs to and its difficulty (1 = easiest).
type Item struct {
	ItemID     string `json:"item_id"`
	Topic      string `json:"topic"`
	Difficulty int    `json:"difficulty"`
}

// WeakTopic is a per-user topic weakness signal derived from the recent
// attempt window. It is read from an aggregation view, never persisted
// directly by the engine.
type WeakTopic struct {
	UserID        string  `json:"user_id"`
	Topic         string  `json:"topic"`
	ErrorRate     float64 `json:"error_rate"`
	AttemptsCount int     `json:"attempts_count"`
}

// Reason explains why an item was recommended for review.
type Reason string

const (
	// ReasonWeakTopic marks remedial reviews driven by topic weakness.
	ReasonWeakTopic Reason = "weak_topic"
	// ReasonSpacedRepetition marks reviews driven by the spacing schedule.
	ReasonSpacedRepetition Reason = "spaced_repetition"
)

// IsValid checks if the reason is a known recommendation reason.
func (r Reason) IsValid() bool {
	return r == ReasonWeakTopic || r == ReasonSpacedRepetition
}

// Recommendation is one pending review suggestion for the study planner.
// At most one active recommendation exists per (user, item); an entry stays
// active until ExpiresAt passes, after which the pair may be scheduled again.
type Recommendation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ItemID       string    `json:"item_id"`
	Reason       Reason    `json:"reason"`
	Priority     int       `json:"priority"` // 1..5, 5 = most urgent
	NextReviewAt time.Time `json:"next_review_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStats summarizes a user's review activity for dashboards.
type UserStats struct {
	TotalReviews       int     `json:"total_reviews"`
	DueReviews         int     `json:"due_reviews"`
	AveragePerformance float64 `json:"average_performance"`
	RetentionRate      float64 `json:"retention_rate"` // percentage 0..100
}

// BatchResult summarizes one scheduling batch run. A failed user never
// aborts the batch; it is counted here and logged.
type BatchResult struct {
	UsersProcessed int `json:"users_processed"`
	UsersFailed    int `json:"users_failed"`
	Enqueued       int `json:"enqueued"`
}
