package revise

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperengineering/revise/internal/retry"
)

// spacedLookahead is how far ahead of now the spaced-repetition pass will
// schedule a ladder review.
const spacedLookahead = 48 * time.Hour

const (
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// Scheduler merges the weak-topic and spaced-repetition signals into the
// recommendation queue, and is the single mutation path for review states.
type Scheduler struct {
	store    *Store
	queue    *Queue
	analyzer *Analyzer
	logger   *slog.Logger

	windowDays     int
	batchSize      int
	workers        int
	weakTopicLimit int
	itemsPerTopic  int

	now func() time.Time // swapped in tests
}

// NewScheduler creates a scheduling orchestrator over the given components.
func NewScheduler(store *Store, queue *Queue, analyzer *Analyzer, cfg Config) *Scheduler {
	cfg = cfg.WithDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:          store,
		queue:          queue,
		analyzer:       analyzer,
		logger:         logger,
		windowDays:     cfg.ActiveWindowDays,
		batchSize:      cfg.BatchSize,
		workers:        cfg.Workers,
		weakTopicLimit: cfg.WeakTopicLimit,
		itemsPerTopic:  cfg.ItemsPerTopic,
		now:            time.Now,
	}
}

// RecordOutcome records a finished review rated 1..5 and advances the
// item's spacing state. A pair with no prior state is treated as a first
// review. The read-modify-write is serialized per (user, item) key by the
// store; a caller retrying a transient failure can safely call again since
// current state is re-read inside the transaction.
func (s *Scheduler) RecordOutcome(ctx context.Context, userID, itemID string, rating int) (*ReviewState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, &ValidationError{Field: "UserID", Message: "required"}
	}
	if itemID == "" {
		return nil, &ValidationError{Field: "ItemID", Message: "required"}
	}
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "Rating", Message: ErrInvalidRating.Error()}
	}

	return s.store.ApplyOutcome(userID, itemID, rating, s.now())
}

// RunBatch executes one scheduling cycle over every user active within the
// window, fanning out across a bounded worker pool. One user's failure is
// logged and counted, never aborting the batch; only context cancellation
// stops the run early. The user set is capped at the configured batch size,
// so an oversized backlog is drained across successive ticks.
func (s *Scheduler) RunBatch(ctx context.Context) (*BatchResult, error) {
	now := s.now().UTC().Truncate(time.Second)
	since := now.AddDate(0, 0, -s.windowDays)

	users, err := s.store.ActiveUsers(since, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("scheduler: list active users: %w", err)
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, userID := range users {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			enqueued, err := s.processUser(ctx, userID, now, since)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.UsersFailed++
				s.logger.Error("scheduling user failed", "user", userID, "error", err)
				return nil
			}
			result.UsersProcessed++
			result.Enqueued += enqueued
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &result, err
	}

	s.logger.Info("scheduling batch complete",
		"processed", result.UsersProcessed,
		"failed", result.UsersFailed,
		"enqueued", result.Enqueued)
	return &result, nil
}

// processUser runs the three scheduling passes for one user. The passes
// write disjoint-or-deduplicated recommendation keys, so order between them
// does not matter for correctness.
func (s *Scheduler) processUser(ctx context.Context, userID string, now, since time.Time) (int, error) {
	enqueued, err := s.weakTopicPass(ctx, userID, now)
	if err != nil {
		return enqueued, fmt.Errorf("weak-topic pass: %w", err)
	}

	n, err := s.spacedRepetitionPass(ctx, userID, now, since)
	enqueued += n
	if err != nil {
		return enqueued, fmt.Errorf("spaced-repetition pass: %w", err)
	}

	n, err = s.dueScanPass(ctx, userID, now)
	enqueued += n
	if err != nil {
		return enqueued, fmt.Errorf("due-scan pass: %w", err)
	}

	return enqueued, nil
}

// weakTopicPass schedules representative items for each of the user's weak
// topics, more urgent and sooner the weaker the topic.
func (s *Scheduler) weakTopicPass(ctx context.Context, userID string, now time.Time) (int, error) {
	topics, err := s.analyzer.TopWeakTopics(userID, s.weakTopicLimit)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, wt := range topics {
		items, err := s.analyzer.RepresentativeItems(userID, wt.Topic, s.itemsPerTopic)
		if err != nil {
			return enqueued, err
		}

		priority, days := weakTopicSchedule(wt.ErrorRate)
		for _, itemID := range items {
			inserted, err := s.enqueue(ctx, Recommendation{
				UserID:       userID,
				ItemID:       itemID,
				Reason:       ReasonWeakTopic,
				Priority:     priority,
				NextReviewAt: now.AddDate(0, 0, days),
				CreatedAt:    now,
			})
			if err != nil {
				return enqueued, err
			}
			if inserted {
				enqueued++
			}
		}
	}
	return enqueued, nil
}

// spacedRepetitionPass schedules ladder reviews for items the user answered
// correctly at least twice in the window, whenever the ladder due date lands
// within the lookahead (overdue dates included).
func (s *Scheduler) spacedRepetitionPass(ctx context.Context, userID string, now, since time.Time) (int, error) {
	runs, err := s.store.CorrectRuns(userID, since)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, run := range runs {
		due := run.LastCorrectAt.AddDate(0, 0, LadderInterval(run.CorrectCount))
		if due.After(now.Add(spacedLookahead)) {
			continue
		}

		inserted, err := s.enqueue(ctx, Recommendation{
			UserID:       userID,
			ItemID:       run.ItemID,
			Reason:       ReasonSpacedRepetition,
			Priority:     2,
			NextReviewAt: due,
			CreatedAt:    now,
		})
		if err != nil {
			return enqueued, err
		}
		if inserted {
			enqueued++
		}
	}
	return enqueued, nil
}

// dueScanPass re-surfaces review states whose next review date has passed,
// due immediately: urgent when the last outcome was a lapse.
func (s *Scheduler) dueScanPass(ctx context.Context, userID string, now time.Time) (int, error) {
	states, err := s.store.DueStatesForUser(userID, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, st := range states {
		priority := 3
		if st.LastRating < 3 {
			priority = 5
		}

		inserted, err := s.enqueue(ctx, Recommendation{
			UserID:       userID,
			ItemID:       st.ItemID,
			Reason:       ReasonSpacedRepetition,
			Priority:     priority,
			NextReviewAt: now,
			CreatedAt:    now,
		})
		if err != nil {
			return enqueued, err
		}
		if inserted {
			enqueued++
		}
	}
	return enqueued, nil
}

// enqueue inserts through the queue's dedup rule, retrying transient store
// failures with exponential backoff. Enqueue is idempotent, so a retry after
// an ambiguous failure cannot create duplicates.
func (s *Scheduler) enqueue(ctx context.Context, rec Recommendation) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		inserted, err := s.queue.Enqueue(rec)
		if err == nil {
			return inserted, nil
		}
		if !IsTransient(err) {
			return false, err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retry.ExponentialDelay(retryBaseDelay, retryMaxDelay, attempt)):
		}
	}
	return false, lastErr
}
