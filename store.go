package revise

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/revise/internal/store/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store owns the SQLite review database: review states, the recommendation
// queue, and read access to the attempt log and item metadata written by
// external subsystems.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewStore opens or creates the review database at path.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, schemaVersion)
	return err
}

// Close closes the store. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// storeErr wraps a database failure, flagging busy/locked conditions as
// transient so idempotent callers can retry with backoff.
func storeErr(op string, err error) error {
	msg := err.Error()
	transient := strings.Contains(msg, "busy") || strings.Contains(msg, "locked") || strings.Contains(msg, "interrupted")
	return &StoreError{Op: op, Transient: transient, Err: err}
}

// Timestamps are stored as RFC 3339 UTC strings so lexicographic comparison
// in SQL matches chronological order.
func fmtTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func validateState(st *ReviewState) error {
	switch {
	case st == nil:
		return &ValidationError{Field: "state", Message: "required"}
	case st.UserID == "":
		return &ValidationError{Field: "UserID", Message: "required"}
	case st.ItemID == "":
		return &ValidationError{Field: "ItemID", Message: "required"}
	case st.RepetitionCount < 0:
		return &ValidationError{Field: "RepetitionCount", Message: "must be non-negative"}
	case st.EasinessFactor < MinEasiness:
		return &ValidationError{Field: "EasinessFactor", Message: fmt.Sprintf("must be at least %.1f", MinEasiness)}
	case st.IntervalDays < 1:
		return &ValidationError{Field: "IntervalDays", Message: "must be at least 1"}
	case st.IntervalDays > MaxIntervalDays:
		return &ValidationError{Field: "IntervalDays", Message: fmt.Sprintf("must be at most %d", MaxIntervalDays)}
	case st.LastRating < 1 || st.LastRating > 5:
		return &ValidationError{Field: "LastRating", Message: "must be between 1 and 5"}
	}
	want := st.LastReviewAt.AddDate(0, 0, st.IntervalDays)
	if !st.NextReviewAt.UTC().Truncate(time.Second).Equal(want.UTC().Truncate(time.Second)) {
		return &ValidationError{Field: "NextReviewAt", Message: "must equal LastReviewAt plus IntervalDays"}
	}
	return nil
}

// GetReviewState loads the review state for a (user, item) pair.
// Returns ErrNotFound when the pair has never been reviewed.
func (s *Store) GetReviewState(userID, itemID string) (*ReviewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return scanReviewState(s.db.QueryRow(`
		SELECT user_id, item_id, repetition_count, easiness_factor, interval_days,
		       next_review_at, last_review_at, last_rating
		FROM review_states
		WHERE user_id = ? AND item_id = ?
	`, userID, itemID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewState(row rowScanner) (*ReviewState, error) {
	var st ReviewState
	var nextAt, lastAt string
	err := row.Scan(&st.UserID, &st.ItemID, &st.RepetitionCount, &st.EasinessFactor,
		&st.IntervalDays, &nextAt, &lastAt, &st.LastRating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get review state", err)
	}
	if st.NextReviewAt, err = parseTime(nextAt); err != nil {
		return nil, fmt.Errorf("store: parse next_review_at: %w", err)
	}
	if st.LastReviewAt, err = parseTime(lastAt); err != nil {
		return nil, fmt.Errorf("store: parse last_review_at: %w", err)
	}
	return &st, nil
}

// PutReviewState writes a review state by its (user, item) primary key,
// overwriting any existing row.
func (s *Store) PutReviewState(st *ReviewState) error {
	if err := validateState(st); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	return upsertReviewState(s.db, st)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertReviewState(e execer, st *ReviewState) error {
	_, err := e.Exec(`
		INSERT INTO review_states (user_id, item_id, repetition_count, easiness_factor,
		                           interval_days, next_review_at, last_review_at, last_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			repetition_count = excluded.repetition_count,
			easiness_factor  = excluded.easiness_factor,
			interval_days    = excluded.interval_days,
			next_review_at   = excluded.next_review_at,
			last_review_at   = excluded.last_review_at,
			last_rating      = excluded.last_rating
	`,
		st.UserID, st.ItemID, st.RepetitionCount, st.EasinessFactor,
		st.IntervalDays, fmtTime(st.NextReviewAt), fmtTime(st.LastReviewAt), st.LastRating,
	)
	if err != nil {
		return storeErr("upsert review state", err)
	}
	return nil
}

// ApplyOutcome advances the review state for a (user, item) pair after a
// review rated 1..5. The read-modify-write runs inside one transaction under
// the store lock, so concurrent calls for the same key are serialized and a
// retried call always re-reads current state. A pair with no prior state
// starts from repetition 0 and the initial easiness factor.
func (s *Store) ApplyOutcome(userID, itemID string, rating int, now time.Time) (*ReviewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, storeErr("begin outcome", err)
	}
	defer tx.Rollback() // no-op if committed

	cur, err := scanReviewState(tx.QueryRow(`
		SELECT user_id, item_id, repetition_count, easiness_factor, interval_days,
		       next_review_at, last_review_at, last_rating
		FROM review_states
		WHERE user_id = ? AND item_id = ?
	`, userID, itemID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	reps, easiness, interval := 0, InitialEasiness, firstInterval
	if cur != nil {
		reps, easiness, interval = cur.RepetitionCount, cur.EasinessFactor, cur.IntervalDays
	}

	newInterval, newEasiness, newReps := NextInterval(reps, easiness, interval, rating)

	now = now.UTC().Truncate(time.Second)
	st := &ReviewState{
		UserID:          userID,
		ItemID:          itemID,
		RepetitionCount: newReps,
		EasinessFactor:  newEasiness,
		IntervalDays:    newInterval,
		NextReviewAt:    now.AddDate(0, 0, newInterval),
		LastReviewAt:    now,
		LastRating:      rating,
	}
	if err := upsertReviewState(tx, st); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit outcome", err)
	}
	return st, nil
}

// DueStatesForUser returns the user's review states whose next review date
// has passed, earliest first, capped at limit.
func (s *Store) DueStatesForUser(userID string, now time.Time, limit int) ([]ReviewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT user_id, item_id, repetition_count, easiness_factor, interval_days,
		       next_review_at, last_review_at, last_rating
		FROM review_states
		WHERE user_id = ? AND next_review_at <= ?
		ORDER BY next_review_at ASC
		LIMIT ?
	`, userID, fmtTime(now), limit)
	if err != nil {
		return nil, storeErr("due states", err)
	}
	defer rows.Close()

	var states []ReviewState
	for rows.Next() {
		st, err := scanReviewState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *st)
	}
	return states, rows.Err()
}

// EnqueueRecommendation conditionally inserts a recommendation. If an active
// (unexpired) entry already exists for the (user, item) pair, the existing
// entry wins and the call reports inserted=false. The check and insert run
// in one transaction under the store lock.
func (s *Store) EnqueueRecommendation(rec *Recommendation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, storeErr("begin enqueue", err)
	}
	defer tx.Rollback()

	var active int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM recommendations
		WHERE user_id = ? AND item_id = ? AND expires_at > ?
	`, rec.UserID, rec.ItemID, fmtTime(rec.CreatedAt)).Scan(&active)
	if err != nil {
		return false, storeErr("check active recommendation", err)
	}
	if active > 0 {
		return false, nil
	}

	_, err = tx.Exec(`
		INSERT INTO recommendations (id, user_id, item_id, reason, priority,
		                             next_review_at, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.UserID, rec.ItemID, string(rec.Reason), rec.Priority,
		fmtTime(rec.NextReviewAt), fmtTime(rec.ExpiresAt), fmtTime(rec.CreatedAt),
	)
	if err != nil {
		return false, storeErr("insert recommendation", err)
	}
	if err := tx.Commit(); err != nil {
		return false, storeErr("commit enqueue", err)
	}
	return true, nil
}

// DueRecommendations returns active recommendations whose review date has
// passed: earliest due first, higher priority breaking ties.
func (s *Store) DueRecommendations(userID string, now time.Time, limit int) ([]Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, item_id, reason, priority, next_review_at, expires_at, created_at
		FROM recommendations
		WHERE user_id = ? AND next_review_at <= ? AND expires_at > ?
		ORDER BY next_review_at ASC, priority DESC
		LIMIT ?
	`, userID, fmtTime(now), fmtTime(now), limit)
	if err != nil {
		return nil, storeErr("due recommendations", err)
	}
	defer rows.Close()

	var recs []Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func scanRecommendation(row rowScanner) (*Recommendation, error) {
	var rec Recommendation
	var reason, nextAt, expiresAt, createdAt string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.ItemID, &reason, &rec.Priority,
		&nextAt, &expiresAt, &createdAt)
	if err != nil {
		return nil, storeErr("scan recommendation", err)
	}
	rec.Reason = Reason(reason)
	if rec.NextReviewAt, err = parseTime(nextAt); err != nil {
		return nil, fmt.Errorf("store: parse next_review_at: %w", err)
	}
	if rec.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("store: parse expires_at: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("store: parse created_at: %w", err)
	}
	return &rec, nil
}

// RecordAttempt appends an attempt to the attempt log. The log is owned by
// the attempt-logging subsystem; this entry point exists for collaborators
// embedding the engine and for tests.
func (s *Store) RecordAttempt(a AttemptRecord) error {
	if a.UserID == "" {
		return &ValidationError{Field: "UserID", Message: "required"}
	}
	if a.ItemID == "" {
		return &ValidationError{Field: "ItemID", Message: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	correct := 0
	if a.IsCorrect {
		correct = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO attempts (user_id, item_id, attempted_at, is_correct)
		VALUES (?, ?, ?, ?)
	`, a.UserID, a.ItemID, fmtTime(a.AttemptedAt), correct)
	if err != nil {
		return storeErr("record attempt", err)
	}
	return nil
}

// PutItem writes item metadata (topic, difficulty) by item ID. Metadata is
// owned by the content subsystem; the engine only reads it.
func (s *Store) PutItem(it Item) error {
	if it.ItemID == "" {
		return &ValidationError{Field: "ItemID", Message: "required"}
	}
	if it.Topic == "" {
		return &ValidationError{Field: "Topic", Message: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO items (item_id, topic, difficulty)
		VALUES (?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET topic = excluded.topic, difficulty = excluded.difficulty
	`, it.ItemID, it.Topic, it.Difficulty)
	if err != nil {
		return storeErr("put item", err)
	}
	return nil
}

// ActiveUsers returns user IDs with at least one attempt since the cutoff,
// in stable order, capped at limit so one batch run stays bounded.
func (s *Store) ActiveUsers(since time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT user_id FROM attempts
		WHERE attempted_at >= ?
		ORDER BY user_id
		LIMIT ?
	`, fmtTime(since), limit)
	if err != nil {
		return nil, storeErr("active users", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan active user", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// CorrectRun aggregates a user's correct attempts on one item within the
// recent window.
type CorrectRun struct {
	ItemID        string
	CorrectCount  int
	LastCorrectAt time.Time
}

// CorrectRuns returns, per item, the number of correct attempts since the
// cutoff and the most recent correct timestamp, for items answered correctly
// at least twice.
func (s *Store) CorrectRuns(userID string, since time.Time) ([]CorrectRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT item_id, COUNT(*), MAX(attempted_at)
		FROM attempts
		WHERE user_id = ? AND is_correct = 1 AND attempted_at >= ?
		GROUP BY item_id
		HAVING COUNT(*) >= 2
		ORDER BY item_id
	`, userID, fmtTime(since))
	if err != nil {
		return nil, storeErr("correct runs", err)
	}
	defer rows.Close()

	var runs []CorrectRun
	for rows.Next() {
		var run CorrectRun
		var last string
		if err := rows.Scan(&run.ItemID, &run.CorrectCount, &last); err != nil {
			return nil, storeErr("scan correct run", err)
		}
		if run.LastCorrectAt, err = parseTime(last); err != nil {
			return nil, fmt.Errorf("store: parse attempted_at: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// WeakTopics reads the per-user weakness aggregation view: highest error
// rate first, more attempts breaking ties, then topic name for determinism.
func (s *Store) WeakTopics(userID string, limit int) ([]WeakTopic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT user_id, topic, error_rate, attempts_count
		FROM weak_topics
		WHERE user_id = ?
		ORDER BY error_rate DESC, attempts_count DESC, topic ASC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, storeErr("weak topics", err)
	}
	defer rows.Close()

	var topics []WeakTopic
	for rows.Next() {
		var wt WeakTopic
		if err := rows.Scan(&wt.UserID, &wt.Topic, &wt.ErrorRate, &wt.AttemptsCount); err != nil {
			return nil, storeErr("scan weak topic", err)
		}
		topics = append(topics, wt)
	}
	return topics, rows.Err()
}

// RepresentativeItems selects items in a topic the user answered incorrectly
// at least once or never attempted, easiest first.
func (s *Store) RepresentativeItems(userID, topic string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT i.item_id
		FROM items i
		WHERE i.topic = ?
		  AND (
		    NOT EXISTS (SELECT 1 FROM attempts a WHERE a.user_id = ? AND a.item_id = i.item_id)
		    OR EXISTS (SELECT 1 FROM attempts a WHERE a.user_id = ? AND a.item_id = i.item_id AND a.is_correct = 0)
		  )
		ORDER BY i.difficulty ASC, i.item_id ASC
		LIMIT ?
	`, topic, userID, userID, limit)
	if err != nil {
		return nil, storeErr("representative items", err)
	}
	defer rows.Close()

	var itemIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan representative item", err)
		}
		itemIDs = append(itemIDs, id)
	}
	return itemIDs, rows.Err()
}

// UserStats aggregates review statistics for one user. Missing data yields
// zero values, never an error.
func (s *Store) UserStats(userID string, now time.Time) (*UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var stats UserStats
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM review_states WHERE user_id = ?
	`, userID).Scan(&stats.TotalReviews)
	if err != nil {
		return nil, storeErr("count reviews", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM review_states WHERE user_id = ? AND next_review_at <= ?
	`, userID, fmtTime(now)).Scan(&stats.DueReviews)
	if err != nil {
		return nil, storeErr("count due reviews", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRow(`
		SELECT AVG(last_rating) FROM review_states WHERE user_id = ?
	`, userID).Scan(&avg)
	if err != nil {
		return nil, storeErr("average performance", err)
	}
	if avg.Valid {
		stats.AveragePerformance = avg.Float64
	}

	// Retention: share of states updated in the last 30 days whose latest
	// rating counts as recalled (>= 3), as a percentage.
	cutoff := now.AddDate(0, 0, -30)
	var recent, retained int
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN last_rating >= 3 THEN 1 ELSE 0 END), 0)
		FROM review_states
		WHERE user_id = ? AND last_review_at >= ?
	`, userID, fmtTime(cutoff)).Scan(&recent, &retained)
	if err != nil {
		return nil, storeErr("retention rate", err)
	}
	if recent > 0 {
		stats.RetentionRate = float64(retained) / float64(recent) * 100
	}

	return &stats, nil
}
