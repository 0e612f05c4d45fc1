package revise

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultRecommendationTTL is how long a recommendation stays active after
// its review date. While active, the (user, item) pair cannot be scheduled
// again; after expiry the pair is open for rescheduling.
const DefaultRecommendationTTL = 7 * 24 * time.Hour

// DefaultDueLimit caps due-queries that pass no explicit limit.
const DefaultDueLimit = 10

// Queue is the deduplicated, priority-ordered sink of pending review
// recommendations consumed by the study planner.
type Queue struct {
	store *Store
	ttl   time.Duration
}

// NewQueue creates a recommendation queue over the store. A non-positive ttl
// falls back to DefaultRecommendationTTL.
func NewQueue(store *Store, ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultRecommendationTTL
	}
	return &Queue{store: store, ttl: ttl}
}

// Enqueue conditionally inserts a recommendation. It reports inserted=false
// and leaves the queue untouched when an active entry already exists for the
// (user, item) pair: first-scheduled-wins within its TTL, even if the new
// entry carries a higher priority.
//
// Missing fields are filled in: ID (ULID), CreatedAt (now), and ExpiresAt
// (TTL past the review date, but never sooner than TTL past creation, so an
// already-overdue recommendation still dedups repeat batch runs).
func (q *Queue) Enqueue(rec Recommendation) (bool, error) {
	if err := validateRecommendation(&rec); err != nil {
		return false, err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Second)
	rec.NextReviewAt = rec.NextReviewAt.UTC().Truncate(time.Second)

	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.ExpiresAt.IsZero() {
		base := rec.NextReviewAt
		if rec.CreatedAt.After(base) {
			base = rec.CreatedAt
		}
		rec.ExpiresAt = base.Add(q.ttl)
	}

	return q.store.EnqueueRecommendation(&rec)
}

// DueFor returns the user's active recommendations whose review date has
// passed, earliest due first, higher priority breaking ties. A non-positive
// limit falls back to DefaultDueLimit.
func (q *Queue) DueFor(userID string, limit int) ([]Recommendation, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Message: "required"}
	}
	if limit <= 0 {
		limit = DefaultDueLimit
	}
	return q.store.DueRecommendations(userID, time.Now(), limit)
}

func validateRecommendation(rec *Recommendation) error {
	switch {
	case rec.UserID == "":
		return &ValidationError{Field: "UserID", Message: "required"}
	case rec.ItemID == "":
		return &ValidationError{Field: "ItemID", Message: "required"}
	case !rec.Reason.IsValid():
		return &ValidationError{Field: "Reason", Message: ErrInvalidReason.Error()}
	case rec.Priority < 1 || rec.Priority > 5:
		return &ValidationError{Field: "Priority", Message: "must be between 1 and 5"}
	case rec.NextReviewAt.IsZero():
		return &ValidationError{Field: "NextReviewAt", Message: "required"}
	}
	return nil
}
