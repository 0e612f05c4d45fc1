package revise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportFormat is the top-level structure for JSON exports: the full set of
// review states plus the recommendation queue, for backup or transfer to
// another engine instance.
type ExportFormat struct {
	Version         string           `json:"version"`
	ExportedAt      time.Time        `json:"exported_at"`
	ReviewStates    []ReviewState    `json:"review_states"`
	Recommendations []Recommendation `json:"recommendations"`
}

// MergeStrategy defines how to handle conflicts during import.
type MergeStrategy string

const (
	// MergeStrategySkip skips entries that already exist.
	MergeStrategySkip MergeStrategy = "skip"
	// MergeStrategyReplace overwrites existing entries with imported versions.
	MergeStrategyReplace MergeStrategy = "replace"
)

// ImportResult summarizes an import operation.
type ImportResult struct {
	States          int      `json:"states"`
	Recommendations int      `json:"recommendations"`
	Skipped         int      `json:"skipped"`
	Errors          []string `json:"errors,omitempty"`
}

// ExportJSON streams store data as JSON to the writer using cursor-based
// iteration, so a large store is never loaded into memory at once.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	header := fmt.Sprintf(`{"version":%q,"exported_at":%q,"review_states":[`,
		ExportVersion, time.Now().UTC().Format(time.RFC3339))
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := s.exportReviewStates(ctx, w); err != nil {
		return err
	}

	if _, err := io.WriteString(w, `],"recommendations":[`); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	if err := s.exportRecommendations(ctx, w); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "]}"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}
	return nil
}

func (s *Store) exportReviewStates(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, item_id, repetition_count, easiness_factor, interval_days,
		       next_review_at, last_review_at, last_rating
		FROM review_states
		ORDER BY user_id, item_id
	`)
	if err != nil {
		return fmt.Errorf("query review states: %w", err)
	}
	defer rows.Close()

	enc := json.NewEncoder(w)
	first := true

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		st, err := scanReviewState(rows)
		if err != nil {
			return fmt.Errorf("scan review state: %w", err)
		}

		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}
		first = false

		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("encode review state: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate review states: %w", err)
	}
	return nil
}

func (s *Store) exportRecommendations(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, item_id, reason, priority, next_review_at, expires_at, created_at
		FROM recommendations
		ORDER BY created_at, id
	`)
	if err != nil {
		return fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	enc := json.NewEncoder(w)
	first := true

	for rows.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := scanRecommendation(rows)
		if err != nil {
			return fmt.Errorf("scan recommendation: %w", err)
		}

		if !first {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("write separator: %w", err)
			}
		}
		first = false

		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode recommendation: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate recommendations: %w", err)
	}
	return nil
}
