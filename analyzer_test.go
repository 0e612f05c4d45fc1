package revise

import (
	"testing"
	"time"
)

func seedAttempts(t *testing.T, store *Store, userID, itemID string, at time.Time, outcomes ...bool) {
	t.Helper()
	for i, correct := range outcomes {
		err := store.RecordAttempt(AttemptRecord{
			UserID:      userID,
			ItemID:      itemID,
			AttemptedAt: at.Add(time.Duration(i) * time.Minute),
			IsCorrect:   correct,
		})
		if err != nil {
			t.Fatalf("RecordAttempt failed: %v", err)
		}
	}
}

func seedItem(t *testing.T, store *Store, itemID, topic string, difficulty int) {
	t.Helper()
	if err := store.PutItem(Item{ItemID: itemID, Topic: topic, Difficulty: difficulty}); err != nil {
		t.Fatalf("PutItem failed: %v", err)
	}
}

func TestAnalyzer_TopWeakTopicsOrdering(t *testing.T) {
	store := newTestStore(t)
	analyzer := NewAnalyzer(store)
	recent := time.Now().UTC().Add(-24 * time.Hour)

	seedItem(t, store, "alg-1", "algebra", 1)
	seedItem(t, store, "geo-1", "geometry", 1)
	seedItem(t, store, "his-1", "history", 1)

	seedAttempts(t, store, "u1", "alg-1", recent, false, false, false, true) // 0.75
	seedAttempts(t, store, "u1", "geo-1", recent, false, false, false, true, true) // 0.6
	seedAttempts(t, store, "u1", "his-1", recent, false, true, true, true, true) // 0.2

	topics, err := analyzer.TopWeakTopics("u1", 0)
	if err != nil {
		t.Fatalf("TopWeakTopics failed: %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(topics))
	}

	want := []string{"algebra", "geometry", "history"}
	for i, topic := range want {
		if topics[i].Topic != topic {
			t.Errorf("topics[%d] = %q, want %q", i, topics[i].Topic, topic)
		}
	}
	if topics[0].ErrorRate != 0.75 {
		t.Errorf("algebra error rate = %v, want 0.75", topics[0].ErrorRate)
	}
	if topics[0].AttemptsCount != 4 {
		t.Errorf("algebra attempts = %d, want 4", topics[0].AttemptsCount)
	}
}

func TestAnalyzer_TopWeakTopicsTiebreaks(t *testing.T) {
	store := newTestStore(t)
	analyzer := NewAnalyzer(store)
	recent := time.Now().UTC().Add(-24 * time.Hour)

	seedItem(t, store, "a-1", "alpha", 1)
	seedItem(t, store, "b-1", "beta", 1)

	// Both topics at a 0.5 error rate; beta has more attempts and wins.
	seedAttempts(t, store, "u1", "a-1", recent, false, true)
	seedAttempts(t, store, "u1", "b-1", recent, false, false, true, true)

	topics, err := analyzer.TopWeakTopics("u1", 0)
	if err != nil {
		t.Fatalf("TopWeakTopics failed: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Topic != "beta" || topics[1].Topic != "alpha" {
		t.Errorf("order = [%s, %s], want [beta, alpha]", topics[0].Topic, topics[1].Topic)
	}
}

func TestAnalyzer_TopWeakTopicsIgnoresOtherUsers(t *testing.T) {
	store := newTestStore(t)
	analyzer := NewAnalyzer(store)
	recent := time.Now().UTC().Add(-24 * time.Hour)

	seedItem(t, store, "a-1", "alpha", 1)
	seedAttempts(t, store, "u2", "a-1", recent, false, false)

	topics, err := analyzer.TopWeakTopics("u1", 0)
	if err != nil {
		t.Fatalf("TopWeakTopics failed: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("expected no topics for u1, got %d", len(topics))
	}
}

func TestAnalyzer_RepresentativeItems(t *testing.T) {
	store := newTestStore(t)
	analyzer := NewAnalyzer(store)
	recent := time.Now().UTC().Add(-24 * time.Hour)

	seedItem(t, store, "hard-missed", "algebra", 3)
	seedItem(t, store, "easy-missed", "algebra", 1)
	seedItem(t, store, "never-tried", "algebra", 2)
	seedItem(t, store, "mastered", "algebra", 1)
	seedItem(t, store, "other-topic", "geometry", 1)

	seedAttempts(t, store, "u1", "hard-missed", recent, false, true)
	seedAttempts(t, store, "u1", "easy-missed", recent, false)
	seedAttempts(t, store, "u1", "mastered", recent, true, true)

	items, err := analyzer.RepresentativeItems("u1", "algebra", 0)
	if err != nil {
		t.Fatalf("RepresentativeItems failed: %v", err)
	}

	// Missed or never-attempted items only, easiest first.
	want := []string{"easy-missed", "never-tried", "hard-missed"}
	if len(items) != len(want) {
		t.Fatalf("items = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, items[i], want[i])
		}
	}
}

func TestWeakTopicSchedule(t *testing.T) {
	tests := []struct {
		errorRate    float64
		wantPriority int
		wantDays     int
	}{
		{0.9, 5, 1},
		{0.71, 5, 1},
		{0.7, 4, 2},
		{0.6, 4, 2},
		{0.5, 3, 3},
		{0.2, 3, 3},
	}

	for _, tt := range tests {
		priority, days := weakTopicSchedule(tt.errorRate)
		if priority != tt.wantPriority || days != tt.wantDays {
			t.Errorf("weakTopicSchedule(%v) = (%d, %d), want (%d, %d)",
				tt.errorRate, priority, days, tt.wantPriority, tt.wantDays)
		}
	}
}
