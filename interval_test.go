package revise

import (
	"math"
	"testing"
)

func TestNextInterval_FirstReview(t *testing.T) {
	for _, easiness := range []float64{1.3, 1.8, 2.5, 3.0} {
		for rating := 3; rating <= 5; rating++ {
			interval, _, reps := NextInterval(0, easiness, 1, rating)
			if interval != 1 {
				t.Errorf("NextInterval(0, %.1f, 1, %d) interval = %d, want 1", easiness, rating, interval)
			}
			if reps != 1 {
				t.Errorf("NextInterval(0, %.1f, 1, %d) repetitions = %d, want 1", easiness, rating, reps)
			}
		}
	}
}

func TestNextInterval_SecondReview(t *testing.T) {
	for rating := 3; rating <= 5; rating++ {
		interval, _, reps := NextInterval(1, 2.5, 1, rating)
		if interval != 6 {
			t.Errorf("NextInterval(1, 2.5, 1, %d) interval = %d, want 6", rating, interval)
		}
		if reps != 2 {
			t.Errorf("NextInterval(1, 2.5, 1, %d) repetitions = %d, want 2", rating, reps)
		}
	}
}

func TestNextInterval_LapseResets(t *testing.T) {
	for _, tc := range []struct {
		reps     int
		easiness float64
		interval int
		rating   int
	}{
		{0, 2.5, 1, 1},
		{1, 2.5, 6, 2},
		{5, 2.0, 40, 1},
		{12, 1.3, 200, 2},
	} {
		interval, _, reps := NextInterval(tc.reps, tc.easiness, tc.interval, tc.rating)
		if interval != 1 {
			t.Errorf("lapse from reps=%d rating=%d: interval = %d, want 1", tc.reps, tc.rating, interval)
		}
		if reps != 0 {
			t.Errorf("lapse from reps=%d rating=%d: repetitions = %d, want 0", tc.reps, tc.rating, reps)
		}
	}
}

func TestNextInterval_CompoundsStoredInterval(t *testing.T) {
	// repetitionCount=2, EF=2.5, interval=6, rating=5:
	// EF becomes 2.6, interval = ceil(6 * 2.6) = 16.
	interval, easiness, reps := NextInterval(2, 2.5, 6, 5)
	if interval != 16 {
		t.Errorf("interval = %d, want 16", interval)
	}
	if math.Abs(easiness-2.6) > 1e-9 {
		t.Errorf("easiness = %v, want 2.6", easiness)
	}
	if reps != 3 {
		t.Errorf("repetitions = %d, want 3", reps)
	}

	// Growth compounds from the carried interval, not the repetition count.
	interval, _, _ = NextInterval(3, 2.5, 16, 4)
	if interval != 40 { // ceil(16 * 2.5)
		t.Errorf("third interval = %d, want 40", interval)
	}
}

func TestNextInterval_SaturatesOnLongStreak(t *testing.T) {
	reps, easiness, interval := 0, InitialEasiness, 1
	for i := 0; i < 25; i++ {
		interval, easiness, reps = NextInterval(reps, easiness, interval, 5)
		if interval > MaxIntervalDays {
			t.Fatalf("review %d: interval = %d, exceeds %d", i+1, interval, MaxIntervalDays)
		}
	}
	if interval != MaxIntervalDays {
		t.Errorf("interval after streak = %d, want %d", interval, MaxIntervalDays)
	}

	// A saturated pair still resets cleanly on a lapse.
	interval, _, reps = NextInterval(reps, easiness, interval, 1)
	if interval != 1 || reps != 0 {
		t.Errorf("lapse after streak: interval=%d reps=%d, want interval=1 reps=0", interval, reps)
	}
}

func TestNextEasiness_NeverBelowMinimum(t *testing.T) {
	for _, easiness := range []float64{1.3, 1.5, 2.0, 2.5} {
		for rating := 1; rating <= 5; rating++ {
			if got := NextEasiness(easiness, rating); got < MinEasiness {
				t.Errorf("NextEasiness(%.1f, %d) = %v, below %v", easiness, rating, got, MinEasiness)
			}
		}
	}
}

func TestNextEasiness_RatingAdjustments(t *testing.T) {
	// Rating 4 leaves the factor unchanged; 5 raises it; 3 lowers it.
	if got := NextEasiness(2.5, 4); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("rating 4: easiness = %v, want 2.5", got)
	}
	if got := NextEasiness(2.5, 5); math.Abs(got-2.6) > 1e-9 {
		t.Errorf("rating 5: easiness = %v, want 2.6", got)
	}
	if got := NextEasiness(2.5, 3); math.Abs(got-2.36) > 1e-9 {
		t.Errorf("rating 3: easiness = %v, want 2.36", got)
	}
}

func TestLadderInterval(t *testing.T) {
	for _, tc := range []struct {
		correct int
		want    int
	}{
		{1, 1},
		{2, 3},
		{3, 7},
		{4, 14},
		{5, 30},
		{9, 30}, // saturates at the last rung
		{0, 1},
	} {
		if got := LadderInterval(tc.correct); got != tc.want {
			t.Errorf("LadderInterval(%d) = %d, want %d", tc.correct, got, tc.want)
		}
	}
}
