package revise

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/hyperengineering/revise/internal/store"
)

// Defaults for the batch scheduling cycle.
const (
	// DefaultActiveWindowDays bounds the attempt window used to find active
	// users and weakness signals.
	DefaultActiveWindowDays = 30
	// DefaultBatchSize caps how many users one batch run processes; the
	// remainder is picked up on the next scheduled tick.
	DefaultBatchSize = 100
	// DefaultWorkers bounds the batch worker pool.
	DefaultWorkers = 4
)

// Config configures the Revise engine.
type Config struct {
	// DBPath is the path to the SQLite review database.
	// Defaults to ~/.revise/reviews.db.
	DBPath string

	// ActiveWindowDays is the recent-attempt window, in days, used by the
	// batch cycle. Defaults to 30.
	ActiveWindowDays int

	// BatchSize caps users per batch run and due-state rows per user pass.
	// Defaults to 100.
	BatchSize int

	// Workers bounds the per-user fan-out of a batch run. Defaults to 4.
	Workers int

	// WeakTopicLimit is how many weak topics are scheduled per user.
	// Defaults to 5.
	WeakTopicLimit int

	// ItemsPerTopic is how many representative items are scheduled per weak
	// topic. Defaults to 3.
	ItemsPerTopic int

	// RecommendationTTL is how long a recommendation blocks rescheduling of
	// its (user, item) pair. Defaults to 7 days.
	RecommendationTTL time.Duration

	// Logger receives batch progress and per-user failures.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBPath:            store.DefaultDBPath(),
		ActiveWindowDays:  DefaultActiveWindowDays,
		BatchSize:         DefaultBatchSize,
		Workers:           DefaultWorkers,
		WeakTopicLimit:    DefaultWeakTopicLimit,
		ItemsPerTopic:     DefaultItemsPerTopic,
		RecommendationTTL: DefaultRecommendationTTL,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	REVISE_DB_PATH      → DBPath
//	REVISE_WINDOW_DAYS  → ActiveWindowDays
//	REVISE_BATCH_SIZE   → BatchSize
//	REVISE_WORKERS      → Workers
//
// Unset or malformed numeric values are left at zero and filled by
// WithDefaults.
func ConfigFromEnv() Config {
	return Config{
		DBPath:           os.Getenv("REVISE_DB_PATH"),
		ActiveWindowDays: envInt("REVISE_WINDOW_DAYS"),
		BatchSize:        envInt("REVISE_BATCH_SIZE"),
		Workers:          envInt("REVISE_WORKERS"),
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return &ValidationError{Field: "DBPath", Message: "required: path to SQLite database"}
	}
	if c.ActiveWindowDays < 0 {
		return &ValidationError{Field: "ActiveWindowDays", Message: "must be non-negative"}
	}
	if c.BatchSize < 0 {
		return &ValidationError{Field: "BatchSize", Message: "must be non-negative"}
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "Workers", Message: "must be non-negative"}
	}
	if c.RecommendationTTL < 0 {
		return &ValidationError{Field: "RecommendationTTL", Message: "must be non-negative"}
	}
	return nil
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	if c.DBPath == "" {
		c.DBPath = store.DefaultDBPath()
	}
	if c.ActiveWindowDays == 0 {
		c.ActiveWindowDays = DefaultActiveWindowDays
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.WeakTopicLimit == 0 {
		c.WeakTopicLimit = DefaultWeakTopicLimit
	}
	if c.ItemsPerTopic == 0 {
		c.ItemsPerTopic = DefaultItemsPerTopic
	}
	if c.RecommendationTTL == 0 {
		c.RecommendationTTL = DefaultRecommendationTTL
	}
	return c
}
