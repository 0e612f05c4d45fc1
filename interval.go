package revise

import "math"

// SM-2 style spacing constants.
const (
	// MinEasiness is the lower bound for the easiness factor.
	MinEasiness = 1.3
	// InitialEasiness is the easiness factor assigned before any review.
	InitialEasiness = 2.5

	firstInterval  = 1
	secondInterval = 6

	// MaxIntervalDays caps compounding growth (~100 years) so stored review
	// dates always stay inside the representable timestamp range.
	MaxIntervalDays = 36500
)

// reviewLadder is the fixed due-date ladder used by the batch
// spaced-repetition pass, indexed by min(correctCount-1, 4).
var reviewLadder = [...]int{1, 3, 7, 14, 30}

// NextEasiness returns the updated easiness factor after a review with the
// given rating. The result is clamped below at MinEasiness; there is no
// upper clamp.
func NextEasiness(easiness float64, rating int) float64 {
	q := float64(5 - rating)
	next := easiness + (0.1 - q*(0.08+q*0.02))
	return math.Max(MinEasiness, next)
}

// NextInterval computes the next review step from the current one.
//
// intervalDays is the interval produced by the previous step and must be
// carried forward from stored state; interval growth compounds from it
// rather than being re-derived from the repetition count alone, saturating
// at MaxIntervalDays. A rating below 3 is a lapse: the interval and
// repetition count reset to the beginning regardless of history, while the
// easiness factor still takes the (penalized) update.
//
// Pure function of its inputs; rating is assumed to be in 1..5.
func NextInterval(repetitionCount int, easiness float64, intervalDays, rating int) (newInterval int, newEasiness float64, newRepetitions int) {
	newEasiness = NextEasiness(easiness, rating)

	if rating < 3 {
		return firstInterval, newEasiness, 0
	}

	switch {
	case repetitionCount == 0:
		newInterval = firstInterval
	case repetitionCount == 1:
		newInterval = secondInterval
	default:
		if intervalDays < firstInterval {
			intervalDays = firstInterval
		}
		newInterval = int(math.Ceil(float64(intervalDays) * newEasiness))
		if newInterval > MaxIntervalDays {
			newInterval = MaxIntervalDays
		}
	}
	return newInterval, newEasiness, repetitionCount + 1
}

// LadderInterval returns the review ladder interval in days for an item the
// user has answered correctly correctCount times. Counts beyond the ladder
// saturate at its last rung.
func LadderInterval(correctCount int) int {
	idx := correctCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(reviewLadder) {
		idx = len(reviewLadder) - 1
	}
	return reviewLadder[idx]
}
