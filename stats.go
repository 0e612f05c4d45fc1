package revise

import (
	"errors"
	"time"
)

// Reporter aggregates read-only review statistics for dashboards. It never
// mutates state and tolerates partial data: missing aggregates come back as
// zeros, not errors.
type Reporter struct {
	store *Store
}

// NewReporter creates a stats reporter over the store.
func NewReporter(store *Store) *Reporter {
	return &Reporter{store: store}
}

// UserStats returns the user's review statistics: total and due review
// states, average performance rating, and the 30-day retention rate.
func (r *Reporter) UserStats(userID string) (*UserStats, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Message: "required"}
	}

	stats, err := r.store.UserStats(userID, time.Now())
	if errors.Is(err, ErrNotFound) {
		return &UserStats{}, nil
	}
	return stats, err
}

// RetentionRate returns the percentage of the user's review states updated
// in the last 30 days whose latest rating counts as recalled (>= 3).
// Returns 0.0 when no recent data exists.
func (r *Reporter) RetentionRate(userID string) (float64, error) {
	stats, err := r.UserStats(userID)
	if err != nil {
		return 0, err
	}
	return stats.RetentionRate, nil
}
