package revise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ImportJSON imports review states and recommendations from a JSON export,
// streaming so large files are never fully buffered.
//
// With MergeStrategySkip, an entry that already exists (a review state by
// its (user, item) key, a recommendation by ID) is left untouched; with
// MergeStrategyReplace it is overwritten. Entries that fail validation are
// collected in the result, never aborting the rest of the import.
//
// The import holds the store's write lock for its whole duration; prefer
// dryRun=true first to preview its scope against a live store.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, strategy MergeStrategy, dryRun bool) (*ImportResult, error) {
	if strategy != MergeStrategySkip && strategy != MergeStrategyReplace {
		return nil, &ValidationError{Field: "strategy", Message: fmt.Sprintf("unknown merge strategy %q", strategy)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	dec := json.NewDecoder(r)
	result := &ImportResult{}

	token, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening token: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected opening brace, got %v", token)
	}

	var version string
	for dec.More() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		token, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		fieldName, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected field name, got %v", token)
		}

		switch fieldName {
		case "version":
			if err := dec.Decode(&version); err != nil {
				return nil, fmt.Errorf("decode version: %w", err)
			}
			if version != ExportVersion {
				return nil, fmt.Errorf("unsupported export version %q (expected %q)", version, ExportVersion)
			}

		case "review_states":
			if err := s.importStatesArray(ctx, dec, strategy, dryRun, result); err != nil {
				return result, fmt.Errorf("import review states: %w", err)
			}

		case "recommendations":
			if err := s.importRecommendationsArray(ctx, dec, strategy, dryRun, result); err != nil {
				return result, fmt.Errorf("import recommendations: %w", err)
			}

		default:
			var discard any
			if err := dec.Decode(&discard); err != nil {
				return nil, fmt.Errorf("decode field %s: %w", fieldName, err)
			}
		}
	}

	if version == "" {
		return nil, fmt.Errorf("missing version field in export file")
	}
	return result, nil
}

func expectArrayStart(dec *json.Decoder, field string) error {
	token, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read %s array start: %w", field, err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected %s array, got %v", field, token)
	}
	return nil
}

func expectArrayEnd(dec *json.Decoder, field string) error {
	token, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read %s array end: %w", field, err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != ']' {
		return fmt.Errorf("expected %s array end, got %v", field, token)
	}
	return nil
}

func (s *Store) importStatesArray(ctx context.Context, dec *json.Decoder, strategy MergeStrategy, dryRun bool, result *ImportResult) error {
	if err := expectArrayStart(dec, "review_states"); err != nil {
		return err
	}

	for dec.More() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var st ReviewState
		if err := dec.Decode(&st); err != nil {
			return fmt.Errorf("decode review state: %w", err)
		}
		if err := validateState(&st); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("state %s/%s: %v", st.UserID, st.ItemID, err))
			continue
		}

		if strategy == MergeStrategySkip {
			_, err := scanReviewState(s.db.QueryRow(`
				SELECT user_id, item_id, repetition_count, easiness_factor, interval_days,
				       next_review_at, last_review_at, last_rating
				FROM review_states WHERE user_id = ? AND item_id = ?
			`, st.UserID, st.ItemID))
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		if !dryRun {
			if err := upsertReviewState(s.db, &st); err != nil {
				return err
			}
		}
		result.States++
	}

	return expectArrayEnd(dec, "review_states")
}

func (s *Store) importRecommendationsArray(ctx context.Context, dec *json.Decoder, strategy MergeStrategy, dryRun bool, result *ImportResult) error {
	if err := expectArrayStart(dec, "recommendations"); err != nil {
		return err
	}

	for dec.More() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var rec Recommendation
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode recommendation: %w", err)
		}
		if rec.ID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("recommendation %s/%s: missing id", rec.UserID, rec.ItemID))
			continue
		}
		if err := validateRecommendation(&rec); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("recommendation %s: %v", rec.ID, err))
			continue
		}

		var existing int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM recommendations WHERE id = ?`, rec.ID).Scan(&existing); err != nil {
			return storeErr("check recommendation", err)
		}
		if existing > 0 && strategy == MergeStrategySkip {
			result.Skipped++
			continue
		}

		if !dryRun {
			_, err := s.db.Exec(`
				INSERT INTO recommendations (id, user_id, item_id, reason, priority,
				                             next_review_at, expires_at, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					user_id = excluded.user_id,
					item_id = excluded.item_id,
					reason = excluded.reason,
					priority = excluded.priority,
					next_review_at = excluded.next_review_at,
					expires_at = excluded.expires_at,
					created_at = excluded.created_at
			`,
				rec.ID, rec.UserID, rec.ItemID, string(rec.Reason), rec.Priority,
				fmtTime(rec.NextReviewAt), fmtTime(rec.ExpiresAt), fmtTime(rec.CreatedAt),
			)
			if err != nil {
				return storeErr("import recommendation", err)
			}
		}
		result.Recommendations++
	}

	return expectArrayEnd(dec, "recommendations")
}
