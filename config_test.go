package revise

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DBPath == "" {
		t.Error("expected default DBPath")
	}
	if cfg.ActiveWindowDays != DefaultActiveWindowDays {
		t.Errorf("ActiveWindowDays = %d, want %d", cfg.ActiveWindowDays, DefaultActiveWindowDays)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.RecommendationTTL != DefaultRecommendationTTL {
		t.Errorf("RecommendationTTL = %v, want %v", cfg.RecommendationTTL, DefaultRecommendationTTL)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_WithDefaultsFillsZeroFields(t *testing.T) {
	cfg := Config{DBPath: "/tmp/custom.db", Workers: 8}.WithDefaults()

	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q, want explicit value kept", cfg.DBPath)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want explicit value kept", cfg.Workers)
	}
	if cfg.ActiveWindowDays != DefaultActiveWindowDays {
		t.Errorf("ActiveWindowDays = %d, want default", cfg.ActiveWindowDays)
	}
	if cfg.WeakTopicLimit != DefaultWeakTopicLimit {
		t.Errorf("WeakTopicLimit = %d, want default", cfg.WeakTopicLimit)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"missing db path", func(c *Config) { c.DBPath = "" }, "DBPath"},
		{"negative window", func(c *Config) { c.ActiveWindowDays = -1 }, "ActiveWindowDays"},
		{"negative batch size", func(c *Config) { c.BatchSize = -1 }, "BatchSize"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "Workers"},
		{"negative ttl", func(c *Config) { c.RecommendationTTL = -1 }, "RecommendationTTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("REVISE_DB_PATH", "/data/reviews.db")
	t.Setenv("REVISE_WINDOW_DAYS", "14")
	t.Setenv("REVISE_BATCH_SIZE", "50")
	t.Setenv("REVISE_WORKERS", "not-a-number")

	cfg := ConfigFromEnv()
	if cfg.DBPath != "/data/reviews.db" {
		t.Errorf("DBPath = %q, want /data/reviews.db", cfg.DBPath)
	}
	if cfg.ActiveWindowDays != 14 {
		t.Errorf("ActiveWindowDays = %d, want 14", cfg.ActiveWindowDays)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.BatchSize)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0 for malformed value", cfg.Workers)
	}

	cfg = cfg.WithDefaults()
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers after defaults = %d, want %d", cfg.Workers, DefaultWorkers)
	}
}
