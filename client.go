package revise

import (
	"context"
	"fmt"
)

// Client is the main interface to the review scheduling engine. It wires
// the store, the recommendation queue, the weakness analyzer, the batch
// scheduler, and the stats reporter together over one database handle.
type Client struct {
	store     *Store
	queue     *Queue
	analyzer  *Analyzer
	scheduler *Scheduler
	reporter  *Reporter
	config    Config
}

// New creates a new Revise client.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	queue := NewQueue(st, cfg.RecommendationTTL)
	analyzer := NewAnalyzer(st)

	return &Client{
		store:     st,
		queue:     queue,
		analyzer:  analyzer,
		scheduler: NewScheduler(st, queue, analyzer, cfg),
		reporter:  NewReporter(st),
		config:    cfg,
	}, nil
}

// RecordOutcome records a finished review rated 1..5 and schedules the next
// one. Invoked synchronously after the learner finishes an item.
func (c *Client) RecordOutcome(ctx context.Context, userID, itemID string, rating int) (*ReviewState, error) {
	return c.scheduler.RecordOutcome(ctx, userID, itemID, rating)
}

// RunBatch executes one scheduling cycle over all recently active users.
// Intended to be driven by a periodic job runner, which owns timeouts and
// cancellation via ctx.
func (c *Client) RunBatch(ctx context.Context) (*BatchResult, error) {
	return c.scheduler.RunBatch(ctx)
}

// DueFor returns the user's due recommendations, earliest first.
func (c *Client) DueFor(userID string, limit int) ([]Recommendation, error) {
	return c.queue.DueFor(userID, limit)
}

// UserStats returns the user's review statistics.
func (c *Client) UserStats(userID string) (*UserStats, error) {
	return c.reporter.UserStats(userID)
}

// ReviewState loads the spacing state for a (user, item) pair.
// Returns ErrNotFound before the first recorded outcome.
func (c *Client) ReviewState(userID, itemID string) (*ReviewState, error) {
	return c.store.GetReviewState(userID, itemID)
}

// TopWeakTopics surfaces the user's current weak topics.
func (c *Client) TopWeakTopics(userID string, limit int) ([]WeakTopic, error) {
	return c.analyzer.TopWeakTopics(userID, limit)
}

// RecordAttempt appends to the attempt log on behalf of the attempt-logging
// subsystem.
func (c *Client) RecordAttempt(a AttemptRecord) error {
	return c.store.RecordAttempt(a)
}

// PutItem writes item metadata on behalf of the content subsystem.
func (c *Client) PutItem(it Item) error {
	return c.store.PutItem(it)
}

// Store exposes the underlying store for export/import and advanced use.
func (c *Client) Store() *Store {
	return c.store
}

// Close releases the database handle.
func (c *Client) Close() error {
	return c.store.Close()
}
